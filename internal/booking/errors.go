package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy for the reservation lifecycle. Controllers map these to HTTP
// status codes; services wrap them with context via fmt.Errorf("%w").
var (
	// ErrInvalidTicketSplit is returned when normal+reduced counts do not sum
	// to the booking's seat count. The booking is left unchanged.
	ErrInvalidTicketSplit = errors.New("ticket counts do not match seat count")

	// ErrInvalidState is returned for operations called out of lifecycle
	// order, including any mutation of a PAID or CANCELED booking.
	ErrInvalidState = errors.New("operation not allowed in current booking state")

	// ErrUnauthorized covers both a missing booking and a token mismatch so
	// callers cannot probe for booking existence.
	ErrUnauthorized = errors.New("booking not found or invalid guest token")

	// ErrInvalidSeatSelection is returned when the requested seat set is
	// empty, contains duplicates or unknown seats, or splits a wide-seat pair.
	ErrInvalidSeatSelection = errors.New("invalid seat selection")

	// ErrLockTimeout is returned after the per-showing lock could not be
	// acquired within the timeout, including one internal retry.
	ErrLockTimeout = errors.New("timed out acquiring showing lock")

	// ErrShowingNotFound is returned when a booking targets an unknown
	// showing.
	ErrShowingNotFound = errors.New("showing not found")

	// ErrPaymentNotFound is returned for a gateway callback carrying an
	// unknown payment reference.
	ErrPaymentNotFound = errors.New("payment reference not found")
)

// SeatUnavailableError reports which requested seats are held by another
// active booking. Surfaced immediately, never retried automatically.
type SeatUnavailableError struct {
	SeatIDs []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatIDs, ", "))
}
