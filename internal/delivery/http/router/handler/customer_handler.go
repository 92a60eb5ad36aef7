// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"concierge/internal/delivery/http/response"
	"concierge/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CustomerHandler holds dependencies for customer-related handlers.
type CustomerHandler struct {
	uc     usecase.CustomerUsecase
	logger *slog.Logger
}

// NewCustomerHandler is the constructor for CustomerHandler, injected by Fx.
func NewCustomerHandler(uc usecase.CustomerUsecase, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		uc:     uc,
		logger: logger,
	}
}

type registerCustomerRequest struct {
	Name       string `json:"name" validate:"required"`
	Mobile     string `json:"mobile" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	CustomerID string `json:"customer_id"`
	AdminToken string `json:"admin_token"`
	Timestamp  string `json:"timestamp"`
}

// Register handles the customer registration request.
func (h *CustomerHandler) Register(c echo.Context) error {
	var req registerCustomerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	input := &usecase.RegisterCustomerInput{
		Name:       req.Name,
		Mobile:     req.Mobile,
		Email:      req.Email,
		CustomerID: req.CustomerID,
		AdminToken: req.AdminToken,
	}
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid timestamp format")
		}

		input.Timestamp = &parsed
	}

	customer, err := h.uc.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, customer, "Customer registered successfully")
}

// List handles the request to list all customers.
func (h *CustomerHandler) List(c echo.Context) error {
	customers, err := h.uc.List(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, customers, "Customers retrieved successfully")
}

// GetByID handles the request to fetch a single customer.
func (h *CustomerHandler) GetByID(c echo.Context) error {
	customer, err := h.uc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, customer, "Customer retrieved successfully")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
