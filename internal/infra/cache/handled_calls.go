// Package cache holds process-local state shared across scheduler ticks.
package cache

import "sync"

// HandledCalls is the notification dedup set: call ids whose email
// decision has been resolved (sent, or determined not applicable).
// Entries are never removed; the set lives for the process lifetime, so a
// restart may re-send an email for an already-handled call. That is an
// accepted limitation.
type HandledCalls struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

// NewHandledCalls creates an empty dedup set.
func NewHandledCalls() *HandledCalls {
	return &HandledCalls{
		ids: make(map[int64]struct{}),
	}
}

// Contains reports whether the call id has already been handled.
func (h *HandledCalls) Contains(callID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.ids[callID]

	return ok
}

// Mark records the call id as handled.
func (h *HandledCalls) Mark(callID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ids[callID] = struct{}{}
}

// Len returns the number of handled call ids.
func (h *HandledCalls) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.ids)
}
