package usecase

import (
	"context"
	"time"

	"concierge/internal/domain/entity"
	"concierge/internal/domain/service"
)

// PhoneCallUsecase exposes the call provider operations plus the
// completion wait loop.
type PhoneCallUsecase interface {
	// MakeCall places a call with the service credential.
	MakeCall(ctx context.Context, req *service.CallRequest) (int64, error)

	// ListCalls lists recent calls.
	ListCalls(ctx context.Context, params service.ListCallsParams) ([]entity.CallSummary, error)

	// CallDetail fetches one call's raw detail payload.
	CallDetail(ctx context.Context, callID int64) (*entity.CallDetail, error)

	// RecordingURL fetches one call's recording URL.
	RecordingURL(ctx context.Context, callID int64) (string, error)

	// AwaitCompletion polls the call until it reaches the terminal state
	// or the timeout elapses. Transport errors during a poll are logged
	// transient misses, never an early abort. Returns completed=true with
	// the terminal detail, or completed=false with the last detail seen
	// (possibly nil).
	AwaitCompletion(ctx context.Context, callID int64, credential string, timeout, pollInterval time.Duration) (completed bool, detail *entity.CallDetail)
}

// OutcomeExtractor turns a raw call payload into a reservation outcome.
// found=false is the NotFound result: nothing to notify, not an error.
type OutcomeExtractor interface {
	Extract(ctx context.Context, rawPayload map[string]any) (outcome *entity.ReservationDetails, found bool, err error)
}

// NotificationUsecase drives the reservation email path over recently
// completed calls.
type NotificationUsecase interface {
	// ProcessCompletedCalls scans the provider's completed calls and
	// sends a reservation email for each actionable, not-yet-handled one.
	ProcessCompletedCalls(ctx context.Context) error
}
