// Package usecase defines the application use case interfaces.
package usecase

import (
	"context"
	"time"

	"concierge/internal/domain/entity"
)

// RegisterCustomerInput carries customer registration data.
type RegisterCustomerInput struct {
	Name       string
	Mobile     string
	Email      string
	CustomerID string // Optional; generated when empty.
	AdminToken string
	Timestamp  *time.Time // Optional expected arrival time supplied at registration.
}

// CustomerUsecase manages customer records.
type CustomerUsecase interface {
	// Register creates a customer with status new. The customer id is
	// assigned exactly once; a provided id is honored only if unused.
	Register(ctx context.Context, input *RegisterCustomerInput) (*entity.Customer, error)

	// GetByID retrieves one customer.
	GetByID(ctx context.Context, customerID string) (*entity.Customer, error)

	// List retrieves all customers.
	List(ctx context.Context) ([]*entity.Customer, error)
}
