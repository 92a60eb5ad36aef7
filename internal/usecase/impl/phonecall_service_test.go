package impl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge/internal/domain/entity"
	"concierge/internal/mocks"
)

func TestPhoneCallService_AwaitCompletion_CompletesAfterPolls(t *testing.T) {
	provider := &mocks.CallProvider{}
	svc := NewPhoneCallService(provider, testLogger()).(*phoneCallService)

	ctx := context.Background()
	inProgress := &entity.CallDetail{ID: 7, Status: entity.CallStatusInProgress}
	done := &entity.CallDetail{ID: 7, Status: entity.CallStatusCompleted}

	provider.On("CallDetail", ctx, int64(7), "tok").Return(inProgress, nil).Twice()
	provider.On("CallDetail", ctx, int64(7), "tok").Return(done, nil).Once()

	completed, detail := svc.AwaitCompletion(ctx, 7, "tok", time.Second, 0)
	assert.True(t, completed)
	require.NotNil(t, detail)
	assert.Equal(t, entity.CallStatusCompleted, detail.Status)

	provider.AssertExpectations(t)
}

func TestPhoneCallService_AwaitCompletion_Timeout(t *testing.T) {
	provider := &mocks.CallProvider{}
	svc := NewPhoneCallService(provider, testLogger()).(*phoneCallService)

	ctx := context.Background()
	inProgress := &entity.CallDetail{ID: 9, Status: entity.CallStatusInProgress}

	provider.On("CallDetail", ctx, int64(9), "").Return(inProgress, nil)

	completed, detail := svc.AwaitCompletion(ctx, 9, "", 0, 0)
	assert.False(t, completed)
	require.NotNil(t, detail, "last known detail is returned on timeout")
	assert.Equal(t, entity.CallStatusInProgress, detail.Status)
}

func TestPhoneCallService_AwaitCompletion_TransientErrorsAreMisses(t *testing.T) {
	provider := &mocks.CallProvider{}
	svc := NewPhoneCallService(provider, testLogger()).(*phoneCallService)

	ctx := context.Background()
	done := &entity.CallDetail{ID: 3, Status: entity.CallStatusCompleted}

	provider.On("CallDetail", ctx, int64(3), "").Return(nil, assert.AnError).Once()
	provider.On("CallDetail", ctx, int64(3), "").Return(done, nil).Once()

	completed, detail := svc.AwaitCompletion(ctx, 3, "", time.Second, 0)
	assert.True(t, completed)
	assert.Equal(t, done, detail)
}
