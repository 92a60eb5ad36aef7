// Package entity contains the core business objects of the project.
package entity

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a customer's reservation.
type Status string

const (
	// StatusNew marks a freshly registered customer who has not been called yet.
	StatusNew Status = "new"
	// StatusCalled marks a customer whose order booking call has been placed
	// but whose outcome has not arrived yet.
	StatusCalled Status = "called"
	// StatusOrderConfirmed marks a customer with a confirmed order.
	StatusOrderConfirmed Status = "order_confirmed"
	// StatusArrived marks a customer who confirmed arrival at the restaurant.
	StatusArrived Status = "arrived"
	// StatusNoShow marks a customer whose expected arrival time passed without arrival.
	StatusNoShow Status = "no_show"
	// StatusResolved is terminal: the visit was rebooked as takeaway or cancelled.
	StatusResolved Status = "resolved"
)

// transitions is the exhaustive table of allowed status changes.
// Transitions are one-directional except no_show -> order_confirmed
// (reschedule) and no_show -> resolved (cancel/takeaway).
var transitions = map[Status][]Status{
	StatusNew:            {StatusCalled, StatusOrderConfirmed},
	StatusCalled:         {StatusOrderConfirmed, StatusArrived, StatusNoShow},
	StatusOrderConfirmed: {StatusArrived, StatusNoShow},
	StatusNoShow:         {StatusOrderConfirmed, StatusResolved},
	StatusArrived:        {StatusResolved},
	StatusResolved:       {},
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]

	return ok
}

// Customer represents a restaurant customer tracked through the
// reservation lifecycle.
type Customer struct {
	CustomerID          string     `json:"customer_id"` // Unique, assigned exactly once at creation.
	Name                string     `json:"name"`
	Mobile              string     `json:"mobile"` // Normalized phone number, see NormalizeMobile.
	Email               string     `json:"email"`
	Status              Status     `json:"status"`
	OrderDetails        string     `json:"order_details"`
	ExpectedArrivalTime *time.Time `json:"expected_arrival_time,omitempty"`
	ArrivalConfirmed    bool       `json:"arrival_confirmed"`
	LastCallTime        *time.Time `json:"last_call_time,omitempty"`
	AdminToken          string     `json:"-"` // Per-customer credential for calls placed on their behalf.
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

var mobileNormalizer = strings.NewReplacer("+", "", "-", "", "(", "", ")", "", " ", "")

// NormalizeMobile strips formatting characters from a phone number so
// numbers compare equal regardless of how the caller wrote them.
func NormalizeMobile(mobile string) string {
	return mobileNormalizer.Replace(strings.TrimSpace(mobile))
}

// ArrivalOverdue reports whether the customer's expected arrival time has
// passed without a confirmed arrival.
func (c *Customer) ArrivalOverdue(now time.Time) bool {
	if c.ArrivalConfirmed || c.ExpectedArrivalTime == nil {
		return false
	}

	return c.ExpectedArrivalTime.Before(now)
}

// CalledWithin reports whether the customer received a call within the
// given window ending at now.
func (c *Customer) CalledWithin(window time.Duration, now time.Time) bool {
	if c.LastCallTime == nil {
		return false
	}

	return now.Sub(*c.LastCallTime) < window
}
