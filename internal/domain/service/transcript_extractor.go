package service

import (
	"context"

	"concierge/internal/domain/entity"
)

// TranscriptExtractor is the natural-language fallback that maps a raw
// call payload to a structured reservation outcome when the structural
// search finds nothing. found=false means "no reservation in this call",
// which is not an error.
type TranscriptExtractor interface {
	ExtractReservation(ctx context.Context, rawPayload map[string]any) (outcome *entity.ReservationDetails, found bool, err error)
}
