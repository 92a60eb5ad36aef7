// Package inference implements the transcript-extraction fallback against
// an OpenAI-compatible chat completions endpoint.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"concierge/config"
	"concierge/internal/domain/entity"
	"concierge/internal/domain/service"

	"github.com/pkg/errors"
)

// systemPrompt pins the model to a machine-readable contract: exactly the
// four reservation fields, or the null sentinel. No free text.
const systemPrompt = `You extract reservation details from phone call transcripts.
Respond with ONLY a JSON object of this exact shape:
{"date": "...", "time": "...", "number_of_people": "...", "status": "confirmed"}
If the call contains no confirmed reservation, respond with the literal string: null
Do not add any other text.`

// Client implements service.TranscriptExtractor.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an inference client from config.
func NewClient(cfg *config.Config, logger *slog.Logger) service.TranscriptExtractor {
	return &Client{
		baseURL: strings.TrimRight(cfg.Inference.BaseURL, "/"),
		apiKey:  cfg.Inference.APIKey,
		model:   cfg.Inference.Model,
		httpClient: &http.Client{
			Timeout: cfg.Inference.Timeout,
		},
		logger: logger,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ExtractReservation sends the raw call payload to the model and parses
// the response defensively: empty output, unparsable output, the null
// sentinel and missing required keys all mean "nothing found", never an
// application error.
func (c *Client) ExtractReservation(ctx context.Context, rawPayload map[string]any) (*entity.ReservationDetails, bool, error) {
	payloadJSON, err := json.Marshal(rawPayload)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payloadJSON)},
		},
	})
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, errors.Wrap(err, "inference request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, false, errors.Errorf("inference http error: %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, false, errors.Wrap(err, "decode inference response")
	}
	if len(chatResp.Choices) == 0 {
		return nil, false, nil
	}

	details := parseModelOutput(chatResp.Choices[0].Message.Content, c.logger)
	if details == nil {
		return nil, false, nil
	}

	return details, true, nil
}

// parseModelOutput decodes the model's answer into reservation details,
// returning nil for every shape that isn't the expected object.
func parseModelOutput(content string, logger *slog.Logger) *entity.ReservationDetails {
	content = sanitizeModelOutput(content)
	if content == "" || content == "null" {
		return nil
	}

	var details entity.ReservationDetails
	if err := json.Unmarshal([]byte(content), &details); err != nil {
		if logger != nil {
			logger.Debug("Inference output was not valid JSON", slog.String("output", content))
		}

		return nil
	}

	if details.Date == "" && details.Time == "" && details.NumberOfPeople == "" {
		return nil
	}

	return &details
}

// sanitizeModelOutput strips whitespace and markdown fencing the model
// sometimes adds despite the instruction.
func sanitizeModelOutput(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	return strings.TrimSpace(content)
}
