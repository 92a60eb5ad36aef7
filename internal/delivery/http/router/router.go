// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"concierge/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	CustomerHandler  *handler.CustomerHandler
	FlowHandler      *handler.FlowHandler
	PhoneCallHandler *handler.PhoneCallHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	customerHandler  *handler.CustomerHandler
	flowHandler      *handler.FlowHandler
	phoneCallHandler *handler.PhoneCallHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		customerHandler:  params.CustomerHandler,
		flowHandler:      params.FlowHandler,
		phoneCallHandler: params.PhoneCallHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Customer intake and lookup
	e.POST("/customer", r.customerHandler.Register)
	e.GET("/customers", r.customerHandler.List)
	e.GET("/customer/:id", r.customerHandler.GetByID)

	// Flow engine entry points
	e.POST("/trigger-call/:id", r.flowHandler.TriggerCall)
	e.POST("/webhook/call-result", r.flowHandler.CallResult)

	// Call provider proxy
	callGroup := e.Group("/api/phone-calls")
	{
		callGroup.POST("/make-call", r.phoneCallHandler.MakeCall)
		callGroup.GET("/list", r.phoneCallHandler.ListCalls)
		callGroup.GET("/:id/detail", r.phoneCallHandler.CallDetail)
		callGroup.GET("/:id/recording-url", r.phoneCallHandler.RecordingURL)
	}
}
