package entity

// Provider-defined call status values. Anything else is carried through
// opaquely; only the terminal state matters to the core.
const (
	// CallStatusCompleted is the terminal call state after which no
	// further status change is expected.
	CallStatusCompleted = "completed"
	// CallStatusInProgress marks a call that has not reached a terminal state.
	CallStatusInProgress = "in_progress"
)

// CallSummary is one entry of the provider's call listing.
type CallSummary struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Completed reports whether the call reached its terminal state.
func (s CallSummary) Completed() bool {
	return s.Status == CallStatusCompleted
}

// CallDetail is the raw detail payload for a single call. The provider
// owns the shape; the nesting depth varies across call states, so the
// payload is kept opaque and searched structurally by the extractor.
type CallDetail struct {
	ID     int64          `json:"id"`
	Status string         `json:"status"`
	Raw    map[string]any `json:"-"`
}

// Completed reports whether the call reached its terminal state.
func (d *CallDetail) Completed() bool {
	return d.Status == CallStatusCompleted
}
