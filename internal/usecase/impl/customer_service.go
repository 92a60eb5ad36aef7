// Package impl contains the use case implementations.
package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concierge/internal/domain/entity"
	domainerrors "concierge/internal/domain/errors"
	"concierge/internal/domain/repository"
	"concierge/internal/usecase"

	"github.com/google/uuid"
)

type customerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service instance
func NewCustomerService(customerRepo repository.CustomerRepository) usecase.CustomerUsecase {
	return &customerService{
		customerRepo: customerRepo,
	}
}

// Register creates a customer with status new.
func (s *customerService) Register(ctx context.Context, input *usecase.RegisterCustomerInput) (*entity.Customer, error) {
	mobile := entity.NormalizeMobile(input.Mobile)
	if mobile == "" {
		return nil, domainerrors.ErrMissingMobile
	}

	customerID := input.CustomerID
	if customerID != "" {
		// A caller-supplied id is honored only when unused; the id must
		// be assigned exactly once and never reused.
		_, err := s.customerRepo.FindByID(ctx, customerID)
		switch {
		case err == nil:
			customerID = ""
		case !errors.Is(err, repository.ErrCustomerNotFound):
			return nil, fmt.Errorf("failed to check customer id: %w", err)
		}
	}
	if customerID == "" {
		customerID = uuid.New().String()
	}

	customer := &entity.Customer{
		CustomerID:          customerID,
		Name:                input.Name,
		Mobile:              mobile,
		Email:               input.Email,
		Status:              entity.StatusNew,
		ExpectedArrivalTime: input.Timestamp,
		AdminToken:          input.AdminToken,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

// GetByID retrieves one customer.
func (s *customerService) GetByID(ctx context.Context, customerID string) (*entity.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, domainerrors.ErrCustomerNotFound
		}

		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return customer, nil
}

// List retrieves all customers.
func (s *customerService) List(ctx context.Context) ([]*entity.Customer, error) {
	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return customers, nil
}
