package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"concierge/internal/domain/entity"
	"concierge/internal/domain/service"
)

// CallProvider is a mock of service.CallProvider.
type CallProvider struct {
	mock.Mock
}

func (m *CallProvider) MakeCall(ctx context.Context, req *service.CallRequest, credential string) (int64, error) {
	args := m.Called(ctx, req, credential)

	return args.Get(0).(int64), args.Error(1)
}

func (m *CallProvider) ListCalls(ctx context.Context, params service.ListCallsParams, credential string) ([]entity.CallSummary, error) {
	args := m.Called(ctx, params, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]entity.CallSummary), args.Error(1)
}

func (m *CallProvider) CallDetail(ctx context.Context, callID int64, credential string) (*entity.CallDetail, error) {
	args := m.Called(ctx, callID, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.CallDetail), args.Error(1)
}

func (m *CallProvider) RecordingURL(ctx context.Context, callID int64, credential string) (string, error) {
	args := m.Called(ctx, callID, credential)

	return args.String(0), args.Error(1)
}

// EmailSender is a mock of service.EmailSender.
type EmailSender struct {
	mock.Mock
}

func (m *EmailSender) SendReservationEmail(ctx context.Context, email *service.ReservationEmail) error {
	args := m.Called(ctx, email)

	return args.Error(0)
}

// TranscriptExtractor is a mock of service.TranscriptExtractor.
type TranscriptExtractor struct {
	mock.Mock
}

func (m *TranscriptExtractor) ExtractReservation(ctx context.Context, rawPayload map[string]any) (*entity.ReservationDetails, bool, error) {
	args := m.Called(ctx, rawPayload)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}

	return args.Get(0).(*entity.ReservationDetails), args.Bool(1), args.Error(2)
}
