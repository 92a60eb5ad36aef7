package service

import "context"

// ReservationEmail carries the fields rendered into the confirmation email.
type ReservationEmail struct {
	To             string
	CustomerName   string
	Date           string
	Time           string
	NumberOfPeople string
}

// EmailSender delivers reservation confirmation emails. Delivery is
// best-effort; failures are logged and retried by the next scheduler tick.
type EmailSender interface {
	SendReservationEmail(ctx context.Context, email *ReservationEmail) error
}
