// Package delivery defines the contract shared by everything that serves
// traffic or runs background work for the process lifetime.
package delivery

import "context"

// Delivery is a long-running process component (HTTP server, scheduler).
// Serve blocks until the delivery stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
