package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"concierge/internal/domain/entity"
	"concierge/internal/domain/service"
	"concierge/internal/usecase"
)

type phoneCallService struct {
	provider service.CallProvider
	logger   *slog.Logger
}

// NewPhoneCallService creates a new phone call usecase instance.
func NewPhoneCallService(provider service.CallProvider, logger *slog.Logger) usecase.PhoneCallUsecase {
	return &phoneCallService{
		provider: provider,
		logger:   logger,
	}
}

func (s *phoneCallService) MakeCall(ctx context.Context, req *service.CallRequest) (int64, error) {
	callID, err := s.provider.MakeCall(ctx, req, "")
	if err != nil {
		return 0, fmt.Errorf("failed to place call: %w", err)
	}

	return callID, nil
}

func (s *phoneCallService) ListCalls(ctx context.Context, params service.ListCallsParams) ([]entity.CallSummary, error) {
	calls, err := s.provider.ListCalls(ctx, params, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}

	return calls, nil
}

func (s *phoneCallService) CallDetail(ctx context.Context, callID int64) (*entity.CallDetail, error) {
	detail, err := s.provider.CallDetail(ctx, callID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch call detail: %w", err)
	}

	return detail, nil
}

func (s *phoneCallService) RecordingURL(ctx context.Context, callID int64) (string, error) {
	url, err := s.provider.RecordingURL(ctx, callID, "")
	if err != nil {
		return "", fmt.Errorf("failed to fetch recording url: %w", err)
	}

	return url, nil
}

// AwaitCompletion polls the provider until the call reaches its terminal
// state or the wait budget runs out. Transport errors count as transient
// misses, not failures. Returns the last detail seen either way.
func (s *phoneCallService) AwaitCompletion(ctx context.Context, callID int64, credential string, timeout, pollInterval time.Duration) (bool, *entity.CallDetail) {
	deadline := time.Now().Add(timeout)

	var lastKnown *entity.CallDetail

	for {
		detail, err := s.provider.CallDetail(ctx, callID, credential)
		if err != nil {
			s.logger.Debug("Call detail poll failed",
				slog.Int64("call_id", callID),
				slog.String("error", err.Error()),
			)
		} else {
			lastKnown = detail
			if detail.Completed() {
				return true, detail
			}
		}

		if time.Now().After(deadline) {
			return false, lastKnown
		}

		select {
		case <-ctx.Done():
			return false, lastKnown
		case <-time.After(pollInterval):
		}
	}
}
