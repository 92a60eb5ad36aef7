package handler

import (
	"log/slog"
	"net/http"

	"concierge/internal/delivery/http/response"
	"concierge/internal/domain/entity"
	domainerrors "concierge/internal/domain/errors"
	"concierge/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// FlowHandler exposes manual call triggering and the call-result webhook.
type FlowHandler struct {
	uc     usecase.FlowUsecase
	logger *slog.Logger
}

// NewFlowHandler is the constructor for FlowHandler, injected by Fx.
func NewFlowHandler(uc usecase.FlowUsecase, logger *slog.Logger) *FlowHandler {
	return &FlowHandler{
		uc:     uc,
		logger: logger,
	}
}

type triggerCallRequest struct {
	Flow string `json:"flow"`
}

// TriggerCall places a call for the customer. The flow is optional; when
// omitted the engine picks the flow matching the customer's state.
func (h *FlowHandler) TriggerCall(c echo.Context) error {
	var req triggerCallRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid trigger input")
	}

	flow := entity.FlowKind(req.Flow)
	if flow != "" && !flow.Valid() {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("unknown call flow"))
	}

	callID, err := h.uc.TriggerFlow(c.Request().Context(), c.Param("id"), flow)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{"call_id": callID}, "Call triggered successfully")
}

type callResultRequest struct {
	CustomerID string         `json:"customer_id" validate:"required"`
	Flow       string         `json:"flow" validate:"required"`
	Result     map[string]any `json:"result"`
}

// CallResult receives the provider's push of a finished call's outcome.
func (h *FlowHandler) CallResult(c echo.Context) error {
	var req callResultRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid call result payload")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	flow := entity.FlowKind(req.Flow)
	if !flow.Valid() {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("unknown call flow"))
	}

	if err := h.uc.ApplyOutcome(c.Request().Context(), req.CustomerID, flow, req.Result); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Call result processed")
}
