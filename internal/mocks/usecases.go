package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"concierge/internal/domain/entity"
	"concierge/internal/domain/service"
	"concierge/internal/usecase"
)

// CustomerUsecase is a mock of usecase.CustomerUsecase.
type CustomerUsecase struct {
	mock.Mock
}

func (m *CustomerUsecase) Register(ctx context.Context, input *usecase.RegisterCustomerInput) (*entity.Customer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *CustomerUsecase) GetByID(ctx context.Context, customerID string) (*entity.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *CustomerUsecase) List(ctx context.Context) ([]*entity.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.Customer), args.Error(1)
}

// FlowUsecase is a mock of usecase.FlowUsecase.
type FlowUsecase struct {
	mock.Mock
}

func (m *FlowUsecase) DecideFlow(customer *entity.Customer) (entity.FlowKind, bool) {
	args := m.Called(customer)

	return args.Get(0).(entity.FlowKind), args.Bool(1)
}

func (m *FlowUsecase) TriggerFlow(ctx context.Context, customerID string, flow entity.FlowKind) (int64, error) {
	args := m.Called(ctx, customerID, flow)

	return args.Get(0).(int64), args.Error(1)
}

func (m *FlowUsecase) ApplyOutcome(ctx context.Context, customerID string, flow entity.FlowKind, result map[string]any) error {
	args := m.Called(ctx, customerID, flow, result)

	return args.Error(0)
}

// PhoneCallUsecase is a mock of usecase.PhoneCallUsecase.
type PhoneCallUsecase struct {
	mock.Mock
}

func (m *PhoneCallUsecase) MakeCall(ctx context.Context, req *service.CallRequest) (int64, error) {
	args := m.Called(ctx, req)

	return args.Get(0).(int64), args.Error(1)
}

func (m *PhoneCallUsecase) ListCalls(ctx context.Context, params service.ListCallsParams) ([]entity.CallSummary, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]entity.CallSummary), args.Error(1)
}

func (m *PhoneCallUsecase) CallDetail(ctx context.Context, callID int64) (*entity.CallDetail, error) {
	args := m.Called(ctx, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.CallDetail), args.Error(1)
}

func (m *PhoneCallUsecase) RecordingURL(ctx context.Context, callID int64) (string, error) {
	args := m.Called(ctx, callID)

	return args.String(0), args.Error(1)
}

func (m *PhoneCallUsecase) AwaitCompletion(ctx context.Context, callID int64, credential string, timeout, pollInterval time.Duration) (bool, *entity.CallDetail) {
	args := m.Called(ctx, callID, credential, timeout, pollInterval)
	if args.Get(1) == nil {
		return args.Bool(0), nil
	}

	return args.Bool(0), args.Get(1).(*entity.CallDetail)
}

// OutcomeExtractor is a mock of usecase.OutcomeExtractor.
type OutcomeExtractor struct {
	mock.Mock
}

func (m *OutcomeExtractor) Extract(ctx context.Context, rawPayload map[string]any) (*entity.ReservationDetails, bool, error) {
	args := m.Called(ctx, rawPayload)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}

	return args.Get(0).(*entity.ReservationDetails), args.Bool(1), args.Error(2)
}

// NotificationUsecase is a mock of usecase.NotificationUsecase.
type NotificationUsecase struct {
	mock.Mock
}

func (m *NotificationUsecase) ProcessCompletedCalls(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
