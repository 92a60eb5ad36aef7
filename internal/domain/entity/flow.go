package entity

// FlowKind identifies one of the fixed call scripts.
type FlowKind string

const (
	// FlowOrderBooking confirms a new customer's order and arrival time.
	FlowOrderBooking FlowKind = "order_booking"
	// FlowArrivalConfirmation checks whether a confirmed customer has
	// reached the restaurant.
	FlowArrivalConfirmation FlowKind = "arrival_confirmation"
	// FlowMissedCustomerRecovery offers a no-show customer a reschedule,
	// takeaway or cancellation.
	FlowMissedCustomerRecovery FlowKind = "missed_customer_recovery"
)

// Valid reports whether f is one of the known flows.
func (f FlowKind) Valid() bool {
	switch f {
	case FlowOrderBooking, FlowArrivalConfirmation, FlowMissedCustomerRecovery:
		return true
	}

	return false
}

// ReservationDetails is the structured outcome extracted from a completed
// call's payload.
type ReservationDetails struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	NumberOfPeople string `json:"number_of_people"`
	Status         string `json:"status"`
}

// Actionable reports whether the outcome is complete enough to drive a
// notification or a state transition: status confirmed and all three
// reservation fields present.
func (r *ReservationDetails) Actionable() bool {
	return r != nil &&
		r.Status == "confirmed" &&
		r.Date != "" &&
		r.Time != "" &&
		r.NumberOfPeople != ""
}
