// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"
	"time"

	"concierge/internal/domain/entity"
)

// ErrCustomerNotFound is returned when a customer is not found.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepository defines keyed access to customer records. The store
// is read-modify-write without locking; concurrent updates to the same
// customer can lose a write, which is accepted at the current scale.
type CustomerRepository interface {
	// Create persists a new customer. The customer id must be unused.
	Create(ctx context.Context, customer *entity.Customer) error

	// FindByID retrieves a customer by its unique id.
	FindByID(ctx context.Context, customerID string) (*entity.Customer, error)

	// FindByMobile retrieves a customer by normalized mobile number.
	FindByMobile(ctx context.Context, mobile string) (*entity.Customer, error)

	// FindAll retrieves every customer record.
	FindAll(ctx context.Context) ([]*entity.Customer, error)

	// FindByStatus retrieves all customers in the given status.
	FindByStatus(ctx context.Context, status entity.Status) ([]*entity.Customer, error)

	// FindDueArrivalChecks retrieves customers whose expected arrival
	// time has passed without a confirmed arrival and whose status still
	// expects one (order_confirmed or called).
	FindDueArrivalChecks(ctx context.Context, now time.Time) ([]*entity.Customer, error)

	// Update persists the full customer record.
	Update(ctx context.Context, customer *entity.Customer) error
}
