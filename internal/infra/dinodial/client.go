// Package dinodial implements the outbound voice call provider boundary
// against the Dinodial proxy API.
package dinodial

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"concierge/config"
	"concierge/internal/domain/entity"
	"concierge/internal/domain/service"

	"github.com/pkg/errors"
)

// Client talks to the Dinodial proxy. Every endpoint wraps its result in
// the envelope {status, data, message, status_code}; a non-"success"
// status and a transport error are both surfaced as a plain error.
type Client struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	logger      *slog.Logger
}

// envelope is the provider's uniform response wrapper.
type envelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
}

// NewClient creates a Dinodial client from config.
func NewClient(cfg *config.Config, logger *slog.Logger) service.CallProvider {
	return &Client{
		baseURL:     strings.TrimRight(cfg.Dinodial.BaseURL, "/"),
		bearerToken: cfg.Dinodial.BearerToken,
		httpClient: &http.Client{
			Timeout: cfg.Dinodial.Timeout,
		},
		logger: logger,
	}
}

// MakeCall places an outbound call and returns the provider call id.
func (c *Client) MakeCall(ctx context.Context, req *service.CallRequest, credential string) (int64, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	data, err := c.do(ctx, http.MethodPost, "/make-call/", nil, bytes.NewReader(body), credential)
	if err != nil {
		return 0, err
	}

	var result struct {
		ID     int64  `json:"id"`
		CallID int64  `json:"call_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, errors.Wrap(err, "decode make-call response")
	}

	// Older proxy deployments report the id as call_id.
	id := result.ID
	if id == 0 {
		id = result.CallID
	}
	if id == 0 {
		return 0, errors.New("make-call response carried no call id")
	}

	return id, nil
}

// ListCalls returns recent calls, most recent first.
func (c *Client) ListCalls(ctx context.Context, params service.ListCallsParams, credential string) ([]entity.CallSummary, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	data, err := c.do(ctx, http.MethodGet, "/calls/list/", query, nil, credential)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []entity.CallSummary `json:"results"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, "decode calls list response")
	}

	return result.Results, nil
}

// CallDetail fetches the raw detail payload for one call. The payload
// shape varies with call state, so everything beyond id and status is
// kept as an opaque map.
func (c *Client) CallDetail(ctx context.Context, callID int64, credential string) (*entity.CallDetail, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/call/detail/%d/", callID), nil, nil, credential)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode call detail response")
	}

	detail := &entity.CallDetail{
		ID:  callID,
		Raw: raw,
	}
	if status, ok := raw["status"].(string); ok {
		detail.Status = status
	}

	return detail, nil
}

// RecordingURL fetches the recording URL for one call.
func (c *Client) RecordingURL(ctx context.Context, callID int64, credential string) (string, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/recording-url/%d/", callID), nil, nil, credential)
	if err != nil {
		return "", err
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", errors.Wrap(err, "decode recording url response")
	}
	if result.URL == "" {
		return "", errors.New("recording url not found")
	}

	return result.URL, nil
}

// do runs one request against the proxy and unwraps the envelope.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, credential string) (json.RawMessage, error) {
	token := credential
	if token == "" {
		token = c.bearerToken
	}
	if token == "" {
		return nil, errors.New("bearer token not configured")
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "dinodial request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read dinodial response")
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, errors.New("call not found")
	case http.StatusBadRequest:
		if strings.Contains(path, "/recording-url/") {
			return nil, errors.New("recording url not found")
		}
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("Dinodial request rejected",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return nil, errors.Errorf("dinodial http error: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, errors.Wrap(err, "decode dinodial envelope")
	}

	if env.Status != "success" {
		if env.Message != "" {
			return nil, errors.Errorf("dinodial error: %s", env.Message)
		}

		return nil, errors.New("dinodial request unsuccessful")
	}

	return env.Data, nil
}
