package usecase

import (
	"context"

	"concierge/internal/domain/entity"
)

// FlowUsecase is the per-customer state machine: it decides which call
// flow a customer is due for and applies call outcomes to the record.
type FlowUsecase interface {
	// DecideFlow returns the flow the customer is eligible for. ok=false
	// means no call should be placed for the current status.
	DecideFlow(customer *entity.Customer) (flow entity.FlowKind, ok bool)

	// TriggerFlow places the call for the given flow. An empty flow means
	// "whatever DecideFlow chooses"; a mismatched flow is rejected as an
	// invalid state. On success the customer's last call time is stamped
	// and the provider call id returned.
	TriggerFlow(ctx context.Context, customerID string, flow entity.FlowKind) (int64, error)

	// ApplyOutcome maps a flow result onto the customer record. Unknown
	// or missing outcome fields are a no-op, never an error. Safe to run
	// redundantly against unchanged state.
	ApplyOutcome(ctx context.Context, customerID string, flow entity.FlowKind, result map[string]any) error
}
