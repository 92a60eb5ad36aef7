package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"concierge/config"
	"concierge/internal/domain/entity"
	domainerrors "concierge/internal/domain/errors"
	"concierge/internal/domain/service"
	"concierge/internal/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Restaurant: config.RestaurantConfig{Name: "Golden Wok"},
		CompletionWait: config.CompletionWaitConfig{
			Timeout:      time.Second,
			PollInterval: time.Millisecond,
		},
	}
}

func newTestFlowService(repo *mocks.CustomerRepository, provider *mocks.CallProvider, phoneCalls *mocks.PhoneCallUsecase) *flowService {
	extractor := &mocks.OutcomeExtractor{}

	return NewFlowService(repo, provider, phoneCalls, extractor, testConfig(), testLogger()).(*flowService)
}

func TestFlowService_DecideFlow(t *testing.T) {
	svc := newTestFlowService(&mocks.CustomerRepository{}, &mocks.CallProvider{}, &mocks.PhoneCallUsecase{})

	tests := []struct {
		name     string
		customer *entity.Customer
		want     entity.FlowKind
		eligible bool
	}{
		{"new customer", &entity.Customer{Status: entity.StatusNew}, entity.FlowOrderBooking, true},
		{"confirmed awaiting arrival", &entity.Customer{Status: entity.StatusOrderConfirmed}, entity.FlowArrivalConfirmation, true},
		{"called awaiting arrival", &entity.Customer{Status: entity.StatusCalled}, entity.FlowArrivalConfirmation, true},
		{"confirmed and arrived", &entity.Customer{Status: entity.StatusOrderConfirmed, ArrivalConfirmed: true}, "", false},
		{"no show", &entity.Customer{Status: entity.StatusNoShow}, entity.FlowMissedCustomerRecovery, true},
		{"arrived", &entity.Customer{Status: entity.StatusArrived}, "", false},
		{"resolved", &entity.Customer{Status: entity.StatusResolved}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, eligible := svc.DecideFlow(tt.customer)
			assert.Equal(t, tt.eligible, eligible)
			assert.Equal(t, tt.want, flow)
		})
	}
}

func TestFlowService_TriggerFlow_Success(t *testing.T) {
	repo := &mocks.CustomerRepository{}
	provider := &mocks.CallProvider{}
	phoneCalls := &mocks.PhoneCallUsecase{}
	svc := newTestFlowService(repo, provider, phoneCalls)

	ctx := context.Background()
	customer := &entity.Customer{
		CustomerID: "cust-1",
		Name:       "Ada",
		Mobile:     "15551234567",
		Status:     entity.StatusNew,
		AdminToken: "admin-token",
	}

	repo.On("FindByID", ctx, "cust-1").Return(customer, nil)
	provider.On("MakeCall", ctx, mock.MatchedBy(func(req *service.CallRequest) bool {
		return req.PhoneNumber == "15551234567" &&
			req.CallFlow == entity.FlowOrderBooking &&
			req.Context["restaurant_name"] == "Golden Wok"
	}), "admin-token").Return(int64(42), nil)
	repo.On("Update", ctx, mock.AnythingOfType("*entity.Customer")).Return(nil)
	phoneCalls.On("AwaitCompletion", mock.Anything, int64(42), "admin-token", mock.Anything, mock.Anything).
		Return(false, nil).Maybe()

	callID, err := svc.TriggerFlow(ctx, "cust-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), callID)

	assert.Equal(t, entity.StatusCalled, customer.Status)
	require.NotNil(t, customer.LastCallTime)
	assert.WithinDuration(t, time.Now(), *customer.LastCallTime, time.Minute)

	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestFlowService_TriggerFlow_FlowMismatch(t *testing.T) {
	repo := &mocks.CustomerRepository{}
	provider := &mocks.CallProvider{}
	svc := newTestFlowService(repo, provider, &mocks.PhoneCallUsecase{})

	ctx := context.Background()
	repo.On("FindByID", ctx, "cust-1").
		Return(&entity.Customer{CustomerID: "cust-1", Mobile: "123", Status: entity.StatusNew}, nil)

	_, err := svc.TriggerFlow(ctx, "cust-1", entity.FlowMissedCustomerRecovery)
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_FLOW_STATE", appErr.ErrorCode())

	provider.AssertNotCalled(t, "MakeCall", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlowService_TriggerFlow_MissingMobile(t *testing.T) {
	repo := &mocks.CustomerRepository{}
	svc := newTestFlowService(repo, &mocks.CallProvider{}, &mocks.PhoneCallUsecase{})

	ctx := context.Background()
	repo.On("FindByID", ctx, "cust-1").
		Return(&entity.Customer{CustomerID: "cust-1", Status: entity.StatusNew}, nil)

	_, err := svc.TriggerFlow(ctx, "cust-1", "")

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "MISSING_MOBILE", appErr.ErrorCode())
}

func TestFlowService_ApplyOutcome_OrderBooking(t *testing.T) {
	repo := &mocks.CustomerRepository{}
	svc := newTestFlowService(repo, &mocks.CallProvider{}, &mocks.PhoneCallUsecase{})

	ctx := context.Background()
	customer := &entity.Customer{CustomerID: "cust-1", Status: entity.StatusCalled}
	repo.On("FindByID", ctx, "cust-1").Return(customer, nil)
	repo.On("Update", ctx, customer).Return(nil)

	err := svc.ApplyOutcome(ctx, "cust-1", entity.FlowOrderBooking, map[string]any{
		"order_details":         "2x dumplings",
		"expected_arrival_time": "2026-08-29T19:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusOrderConfirmed, customer.Status)
	assert.Equal(t, "2x dumplings", customer.OrderDetails)
	require.NotNil(t, customer.ExpectedArrivalTime)
	assert.Equal(t, 19, customer.ExpectedArrivalTime.Hour())
}

func TestFlowService_ApplyOutcome_ArrivalStatuses(t *testing.T) {
	tests := []struct {
		name       string
		arrival    string
		wantStatus entity.Status
		wantUpdate bool
	}{
		{"arrived", "Arrived", entity.StatusArrived, true},
		{"still on the way", "on the way", entity.StatusOrderConfirmed, false},
		{"not coming", "not coming", entity.StatusNoShow, true},
		{"cancelled", "cancel", entity.StatusNoShow, true},
		{"missing discriminator", "", entity.StatusOrderConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.CustomerRepository{}
			svc := newTestFlowService(repo, &mocks.CallProvider{}, &mocks.PhoneCallUsecase{})

			ctx := context.Background()
			customer := &entity.Customer{CustomerID: "cust-1", Status: entity.StatusOrderConfirmed}
			repo.On("FindByID", ctx, "cust-1").Return(customer, nil)
			repo.On("Update", ctx, customer).Return(nil).Maybe()

			result := map[string]any{}
			if tt.arrival != "" {
				result["arrival_status"] = tt.arrival
			}

			err := svc.ApplyOutcome(ctx, "cust-1", entity.FlowArrivalConfirmation, result)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, customer.Status)

			if tt.wantUpdate {
				repo.AssertCalled(t, "Update", ctx, customer)
			} else {
				repo.AssertNotCalled(t, "Update", ctx, customer)
			}
		})
	}
}

func TestFlowService_ApplyOutcome_Recovery(t *testing.T) {
	repo := &mocks.CustomerRepository{}
	svc := newTestFlowService(repo, &mocks.CallProvider{}, &mocks.PhoneCallUsecase{})

	ctx := context.Background()
	customer := &entity.Customer{CustomerID: "cust-1", Status: entity.StatusNoShow}
	repo.On("FindByID", ctx, "cust-1").Return(customer, nil)
	repo.On("Update", ctx, customer).Return(nil)

	err := svc.ApplyOutcome(ctx, "cust-1", entity.FlowMissedCustomerRecovery, map[string]any{
		"action":         "takeaway",
		"takeaway_order": "1x fried rice",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusResolved, customer.Status)
	assert.Equal(t, "1x fried rice", customer.OrderDetails)
}

func TestParseArrivalTime(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	full := parseArrivalTime("2026-08-29T19:30:00Z", now)
	require.NotNil(t, full)
	assert.Equal(t, 19, full.Hour())

	timeOnly := parseArrivalTime("19:30", now)
	require.NotNil(t, timeOnly)
	assert.Equal(t, now.Day(), timeOnly.Day())
	assert.Equal(t, 19, timeOnly.Hour())
	assert.Equal(t, 30, timeOnly.Minute())

	assert.Nil(t, parseArrivalTime("around seven", now))
}

func TestFlowService_ApplyOutcome_RejectsIllegalTransition(t *testing.T) {
	repo := &mocks.CustomerRepository{}
	svc := newTestFlowService(repo, &mocks.CallProvider{}, &mocks.PhoneCallUsecase{})

	ctx := context.Background()
	customer := &entity.Customer{CustomerID: "cust-1", Status: entity.StatusResolved}
	repo.On("FindByID", ctx, "cust-1").Return(customer, nil)

	// A stale booking result arriving after the visit was resolved must
	// not move the customer back to order_confirmed.
	err := svc.ApplyOutcome(ctx, "cust-1", entity.FlowOrderBooking, map[string]any{
		"order_details": "1x noodles",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusResolved, customer.Status)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
