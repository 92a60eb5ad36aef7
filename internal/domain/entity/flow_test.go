package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowKind_Valid(t *testing.T) {
	assert.True(t, FlowOrderBooking.Valid())
	assert.True(t, FlowArrivalConfirmation.Valid())
	assert.True(t, FlowMissedCustomerRecovery.Valid())
	assert.False(t, FlowKind("cold_call").Valid())
}

func TestReservationDetails_Actionable(t *testing.T) {
	full := &ReservationDetails{Date: "2026-08-29", Time: "19:00", NumberOfPeople: "4", Status: "confirmed"}
	assert.True(t, full.Actionable())

	pending := &ReservationDetails{Date: "2026-08-29", Time: "19:00", NumberOfPeople: "4", Status: "pending"}
	assert.False(t, pending.Actionable())

	partial := &ReservationDetails{Date: "2026-08-29", Status: "confirmed"}
	assert.False(t, partial.Actionable())
}
