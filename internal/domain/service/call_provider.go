// Package service defines interfaces for external collaborators the core
// depends on. Implementations live under internal/infra.
package service

import (
	"context"

	"concierge/internal/domain/entity"
)

// CallRequest is the payload handed to the provider when placing a call.
type CallRequest struct {
	PhoneNumber   string            `json:"phone_number"`
	CustomerID    string            `json:"customer_id,omitempty"`
	CallFlow      entity.FlowKind   `json:"call_flow,omitempty"`
	Prompt        string            `json:"prompt,omitempty"`
	Context       map[string]string `json:"context,omitempty"`
	CaptureFields []string          `json:"capture_fields,omitempty"`
}

// ListCallsParams are the provider's paging parameters.
type ListCallsParams struct {
	Page  int
	Limit int
}

// CallProvider is the outbound voice call provider boundary. Every method
// accepts a credential; an empty credential means the configured service
// token. Transport errors and application-level failure envelopes are both
// reported as a plain error; callers treat them identically.
type CallProvider interface {
	// MakeCall places an outbound call and returns the provider call id.
	MakeCall(ctx context.Context, req *CallRequest, credential string) (int64, error)

	// ListCalls returns recent calls, most recent first.
	ListCalls(ctx context.Context, params ListCallsParams, credential string) ([]entity.CallSummary, error)

	// CallDetail fetches the raw detail payload for one call.
	CallDetail(ctx context.Context, callID int64, credential string) (*entity.CallDetail, error)

	// RecordingURL fetches the recording URL for one call.
	RecordingURL(ctx context.Context, callID int64, credential string) (string, error)
}
