// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"concierge/internal/domain/entity"
)

// CustomerRepository is a mock of repository.CustomerRepository.
type CustomerRepository struct {
	mock.Mock
}

func (m *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	args := m.Called(ctx, customer)

	return args.Error(0)
}

func (m *CustomerRepository) FindByID(ctx context.Context, customerID string) (*entity.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *CustomerRepository) FindByMobile(ctx context.Context, mobile string) (*entity.Customer, error) {
	args := m.Called(ctx, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *CustomerRepository) FindAll(ctx context.Context) ([]*entity.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Customer), args.Error(1)
}

func (m *CustomerRepository) FindByStatus(ctx context.Context, status entity.Status) ([]*entity.Customer, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Customer), args.Error(1)
}

func (m *CustomerRepository) FindDueArrivalChecks(ctx context.Context, now time.Time) ([]*entity.Customer, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Customer), args.Error(1)
}

func (m *CustomerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	args := m.Called(ctx, customer)

	return args.Error(0)
}
