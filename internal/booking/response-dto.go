package booking

import "time"

type SeatResponse struct {
	SeatID     string  `json:"seat_id"`
	Position   int     `json:"position"`
	TicketType string  `json:"ticket_type,omitempty"`
	UnitPrice  float64 `json:"unit_price,omitempty"`
}

type BookingResponse struct {
	ID           string         `json:"id"`
	ShowingID    string         `json:"showing_id"`
	Status       string         `json:"status"`
	CancelReason string         `json:"cancel_reason,omitempty"`
	Seats        []SeatResponse `json:"seats"`
	FirstName    string         `json:"first_name,omitempty"`
	LastName     string         `json:"last_name,omitempty"`
	Email        string         `json:"email,omitempty"`
	NormalCount  int            `json:"normal_count"`
	ReducedCount int            `json:"reduced_count"`
	TotalPrice   float64        `json:"total_price"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// ExpiresAt is advisory display data; the server re-checks the TTL on
	// every mutating call regardless of what the client shows.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// GuestToken is present only in the create response.
	GuestToken string `json:"guest_token,omitempty"`
}

type PaymentResponse struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

// ToBookingResponse shapes the aggregate for the API. includeToken must be
// true only on the create path.
func ToBookingResponse(b *Booking, ttl time.Duration, includeToken bool) BookingResponse {
	seats := make([]SeatResponse, len(b.Seats))
	for i, seat := range b.Seats {
		seats[i] = SeatResponse{
			SeatID:     seat.SeatID.String(),
			Position:   seat.Position,
			TicketType: seat.TicketType,
			UnitPrice:  seat.UnitPrice,
		}
	}

	resp := BookingResponse{
		ID:           b.ID.String(),
		ShowingID:    b.ShowingID.String(),
		Status:       b.Status.String(),
		CancelReason: b.CancelReason,
		Seats:        seats,
		FirstName:    b.FirstName,
		LastName:     b.LastName,
		Email:        b.Email,
		NormalCount:  b.NormalCount,
		ReducedCount: b.ReducedCount,
		TotalPrice:   b.TotalPrice,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.Status.IsActive() {
		expiresAt := b.ExpiresAt(ttl)
		resp.ExpiresAt = &expiresAt
	}
	if includeToken {
		resp.GuestToken = b.GuestToken
	}
	return resp
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID.String(),
		BookingID: p.BookingID.String(),
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    p.Status,
		Reference: p.Reference,
		CreatedAt: p.CreatedAt,
	}
}
