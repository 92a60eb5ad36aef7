package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"concierge/internal/delivery/http/response"
	"concierge/internal/domain/entity"
	domainerrors "concierge/internal/domain/errors"
	"concierge/internal/domain/service"
	"concierge/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PhoneCallHandler proxies call-provider operations.
type PhoneCallHandler struct {
	uc     usecase.PhoneCallUsecase
	logger *slog.Logger
}

// NewPhoneCallHandler is the constructor for PhoneCallHandler, injected by Fx.
func NewPhoneCallHandler(uc usecase.PhoneCallUsecase, logger *slog.Logger) *PhoneCallHandler {
	return &PhoneCallHandler{
		uc:     uc,
		logger: logger,
	}
}

type makeCallRequest struct {
	PhoneNumber   string            `json:"phone_number" validate:"required"`
	CustomerID    string            `json:"customer_id"`
	CallFlow      string            `json:"call_flow"`
	Prompt        string            `json:"prompt"`
	Context       map[string]string `json:"context"`
	CaptureFields []string          `json:"capture_fields"`
}

// MakeCall places a raw call through the provider.
func (h *PhoneCallHandler) MakeCall(c echo.Context) error {
	var req makeCallRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid call input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	flow := entity.FlowKind(req.CallFlow)
	if flow != "" && !flow.Valid() {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("unknown call flow"))
	}

	callID, err := h.uc.MakeCall(c.Request().Context(), &service.CallRequest{
		PhoneNumber:   req.PhoneNumber,
		CustomerID:    req.CustomerID,
		CallFlow:      flow,
		Prompt:        req.Prompt,
		Context:       req.Context,
		CaptureFields: req.CaptureFields,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{"call_id": callID}, "Call placed successfully")
}

// ListCalls returns a page of recent calls.
func (h *PhoneCallHandler) ListCalls(c echo.Context) error {
	params := service.ListCallsParams{Page: 1, Limit: 20}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		params.Limit = limit
	}

	calls, err := h.uc.ListCalls(c.Request().Context(), params)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, calls, "Calls retrieved successfully")
}

// CallDetail returns the provider's detail payload for one call.
func (h *PhoneCallHandler) CallDetail(c echo.Context) error {
	callID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Call id must be numeric")
	}

	detail, err := h.uc.CallDetail(c.Request().Context(), callID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, detail, "Call detail retrieved successfully")
}

// RecordingURL returns the recording location for one call.
func (h *PhoneCallHandler) RecordingURL(c echo.Context) error {
	callID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Call id must be numeric")
	}

	url, err := h.uc.RecordingURL(c.Request().Context(), callID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"url": url}, "Recording URL retrieved successfully")
}
