package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"concierge/config"
	"concierge/internal/domain/entity"
	"concierge/internal/mocks"
)

func newTestExtractor(transcripts *mocks.TranscriptExtractor) *outcomeExtractor {
	cfg := &config.Config{
		Inference: config.InferenceConfig{MaxConcurrent: 2},
	}

	return NewOutcomeExtractor(transcripts, cfg, testLogger()).(*outcomeExtractor)
}

func TestOutcomeExtractor_StructuredPayloadSkipsInference(t *testing.T) {
	transcripts := &mocks.TranscriptExtractor{}
	extractor := newTestExtractor(transcripts)

	payload := map[string]any{
		"id":     float64(7),
		"status": "completed",
		"result": map[string]any{
			"reservation_details": map[string]any{
				"date":             "2026-08-29",
				"time":             "19:00",
				"number_of_people": "4",
				"status":           "confirmed",
			},
		},
	}

	details, found, err := extractor.Extract(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, found)
	require.NotNil(t, details)
	assert.Equal(t, "2026-08-29", details.Date)
	assert.Equal(t, "4", details.NumberOfPeople)

	transcripts.AssertNotCalled(t, "ExtractReservation", mock.Anything, mock.Anything)
}

func TestOutcomeExtractor_StructuredButUnconfirmed(t *testing.T) {
	transcripts := &mocks.TranscriptExtractor{}
	extractor := newTestExtractor(transcripts)

	payload := map[string]any{
		"reservation_details": map[string]any{
			"date":   "2026-08-29",
			"status": "pending",
		},
	}

	details, found, err := extractor.Extract(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, found, "incomplete reservation is not actionable")
	assert.NotNil(t, details)
}

func TestOutcomeExtractor_FallsBackToTranscripts(t *testing.T) {
	transcripts := &mocks.TranscriptExtractor{}
	extractor := newTestExtractor(transcripts)

	payload := map[string]any{"transcript": "customer asked about opening hours"}

	transcripts.On("ExtractReservation", mock.Anything, payload).
		Return(nil, false, nil)

	details, found, err := extractor.Extract(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, details)

	transcripts.AssertExpectations(t)
}

func TestOutcomeExtractor_FallbackHit(t *testing.T) {
	transcripts := &mocks.TranscriptExtractor{}
	extractor := newTestExtractor(transcripts)

	payload := map[string]any{"transcript": "table for two at eight"}
	expected := &entity.ReservationDetails{
		Date: "2026-08-29", Time: "20:00", NumberOfPeople: "2", Status: "confirmed",
	}

	transcripts.On("ExtractReservation", mock.Anything, payload).
		Return(expected, true, nil)

	details, found, err := extractor.Extract(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, expected, details)
}

func TestSearchNestedMap(t *testing.T) {
	payload := map[string]any{
		"data": []any{
			map[string]any{
				"inner": map[string]any{
					"result": map[string]any{"key": "value"},
				},
			},
		},
	}

	found := searchNestedMap(payload, "result")
	require.NotNil(t, found)
	assert.Equal(t, "value", found["key"])

	assert.Nil(t, searchNestedMap(payload, "missing"))
	assert.Nil(t, searchNestedMap(nil, "result"))
}

func TestSearchNestedString(t *testing.T) {
	payload := map[string]any{
		"call": map[string]any{
			"legs": []any{
				map[string]any{"to_number": " +1 555-000-3333 "},
			},
		},
	}

	assert.Equal(t, "+1 555-000-3333", searchNestedString(payload, "to_number"))
	assert.Equal(t, "", searchNestedString(payload, "from_number"))
	assert.Equal(t, "", searchNestedString(nil, "to_number"))
}
