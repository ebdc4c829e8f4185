package booking

type Status string

const (
	// StatusReserved: seats are held, ticket split and personal data pending.
	StatusReserved Status = "RESERVED"
	// StatusFilled: ticket split assigned, at least ready for personal data.
	StatusFilled Status = "FILLED"
	// StatusPaid: payment confirmed, terminal.
	StatusPaid Status = "PAID"
	// StatusCanceled: aborted by the customer, a failed payment, or the
	// expiry reaper. Terminal. Expiry is CANCELED with reason "timeout".
	StatusCanceled Status = "CANCELED"
)

// Cancellation reasons
const (
	CancelReasonCustomer      = "customer"
	CancelReasonTimeout       = "timeout"
	CancelReasonPaymentFailed = "payment_failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusReserved, StatusFilled, StatusPaid, StatusCanceled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further mutation is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCanceled
}

// IsActive reports whether the booking still holds its seats against a TTL.
func (s Status) IsActive() bool {
	return s == StatusReserved || s == StatusFilled
}

// CanTransitionTo encodes the lifecycle state machine. Re-entering RESERVED
// from FILLED happens when the customer changes seats, which clears the
// ticket assignment.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusReserved:
		return next == StatusReserved || next == StatusFilled || next == StatusCanceled
	case StatusFilled:
		return next == StatusReserved || next == StatusFilled || next == StatusPaid || next == StatusCanceled
	default:
		return false
	}
}
