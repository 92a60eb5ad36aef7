package impl

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"concierge/config"
	"concierge/internal/domain/entity"
	"concierge/internal/domain/service"
	"concierge/internal/usecase"
)

type outcomeExtractor struct {
	transcripts service.TranscriptExtractor
	sem         *semaphore.Weighted
	logger      *slog.Logger
}

// NewOutcomeExtractor creates an extractor that prefers the structured
// payload and falls back to transcript inference, with the fallback
// bounded to the configured concurrency.
func NewOutcomeExtractor(
	transcripts service.TranscriptExtractor,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.OutcomeExtractor {
	return &outcomeExtractor{
		transcripts: transcripts,
		sem:         semaphore.NewWeighted(cfg.Inference.MaxConcurrent),
		logger:      logger,
	}
}

func (e *outcomeExtractor) Extract(ctx context.Context, rawPayload map[string]any) (*entity.ReservationDetails, bool, error) {
	if details := structuredReservation(rawPayload); details != nil {
		return details, details.Actionable(), nil
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, false, fmt.Errorf("failed to acquire inference slot: %w", err)
	}
	defer e.sem.Release(1)

	details, found, err := e.transcripts.ExtractReservation(ctx, rawPayload)
	if err != nil {
		return nil, false, fmt.Errorf("transcript extraction failed: %w", err)
	}
	if !found || details == nil {
		return nil, false, nil
	}

	return details, details.Actionable(), nil
}

// structuredReservation looks for a reservation_details object anywhere in
// the provider payload and decodes it without touching the model.
func structuredReservation(payload map[string]any) *entity.ReservationDetails {
	raw := searchNestedMap(payload, "reservation_details")
	if raw == nil {
		return nil
	}

	details := &entity.ReservationDetails{
		Date:           stringField(raw, "date"),
		Time:           stringField(raw, "time"),
		NumberOfPeople: stringField(raw, "number_of_people"),
		Status:         stringField(raw, "status"),
	}
	if details.Date == "" && details.Time == "" && details.NumberOfPeople == "" && details.Status == "" {
		return nil
	}

	return details
}

// searchNestedMap walks maps and slices depth-first and returns the first
// map value stored under the given key.
func searchNestedMap(payload map[string]any, key string) map[string]any {
	if payload == nil {
		return nil
	}

	if value, ok := payload[key]; ok {
		if m, ok := value.(map[string]any); ok {
			return m
		}
	}

	for _, value := range payload {
		if found := searchNestedValue(value, key); found != nil {
			return found
		}
	}

	return nil
}

func searchNestedValue(value any, key string) map[string]any {
	switch typed := value.(type) {
	case map[string]any:
		return searchNestedMap(typed, key)
	case []any:
		for _, item := range typed {
			if found := searchNestedValue(item, key); found != nil {
				return found
			}
		}
	}

	return nil
}

// searchNestedString walks maps and slices depth-first and returns the
// first non-empty string stored under key.
func searchNestedString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}

	if str := stringField(payload, key); str != "" {
		return str
	}

	for _, value := range payload {
		if found := searchNestedStringValue(value, key); found != "" {
			return found
		}
	}

	return ""
}

func searchNestedStringValue(value any, key string) string {
	switch typed := value.(type) {
	case map[string]any:
		return searchNestedString(typed, key)
	case []any:
		for _, item := range typed {
			if found := searchNestedStringValue(item, key); found != "" {
				return found
			}
		}
	}

	return ""
}
