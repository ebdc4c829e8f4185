package notifications

import "time"

// TicketSeat is one issued ticket line.
type TicketSeat struct {
	SeatID     string  `json:"seat_id"`
	TicketType string  `json:"ticket_type"`
	UnitPrice  float64 `json:"unit_price"`
}

// TicketIssuedEvent is published once per paid booking. Downstream
// consumers render and deliver the actual tickets (email, PDF); none of
// that happens in this service.
type TicketIssuedEvent struct {
	BookingID  string       `json:"booking_id"`
	ShowingID  string       `json:"showing_id"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	Email      string       `json:"email"`
	Seats      []TicketSeat `json:"seats"`
	TotalPrice float64      `json:"total_price"`
	PaidAt     time.Time    `json:"paid_at"`
}
