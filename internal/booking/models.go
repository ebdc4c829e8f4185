package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Booking is a guest customer's claim on a seat set for one showing. It is
// the aggregate the state machine operates on; UpdatedAt is the sole TTL
// anchor and is bumped by every mutating operation.
type Booking struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShowingID    uuid.UUID `gorm:"type:uuid;index;not null" json:"showing_id"`
	Status       Status    `gorm:"type:varchar(20);check:status IN ('RESERVED', 'FILLED', 'PAID', 'CANCELED');default:'RESERVED'" json:"status"`
	CancelReason string    `gorm:"type:varchar(20)" json:"cancel_reason,omitempty"`
	GuestToken   string    `gorm:"not null" json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	NormalCount  int       `json:"normal_count"`
	ReducedCount int       `json:"reduced_count"`
	TotalPrice   float64   `json:"total_price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Seats    []BookingSeat `json:"seats,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
	Payments []Payment     `json:"payments,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT;"`
}

// BookingSeat attaches one seat unit to a booking. Position preserves the
// customer's selection order, which drives deterministic ticket-type pricing.
// ReleasedAt is set when the booking is cancelled or expired; an unreleased
// row is what makes a seat "held".
type BookingSeat struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"booking_id"`
	ShowingID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"showing_id"`
	SeatID     uuid.UUID  `gorm:"type:uuid;not null" json:"seat_id"`
	Position   int        `gorm:"not null" json:"position"`
	TicketType string     `gorm:"type:varchar(10)" json:"ticket_type,omitempty"`
	UnitPrice  float64    `json:"unit_price"`
	ReleasedAt *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`

	// Relationships
	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// Payment tracks one payment attempt against a booking
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"booking_id"`
	Amount        float64    `gorm:"not null" json:"amount"`
	Currency      string     `gorm:"type:varchar(3);default:'EUR'" json:"currency"`
	Status        string     `gorm:"type:varchar(20);check:status IN ('PENDING', 'COMPLETED', 'FAILED');default:'PENDING'" json:"status"`
	Reference     string     `gorm:"unique;not null" json:"reference"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relationships
	Booking *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// Payment statuses
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for BookingSeat
func (BookingSeat) TableName() string {
	return "booking_seats"
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// TicketsAssigned reports whether setTickets has run since the last seat
// change.
func (b *Booking) TicketsAssigned() bool {
	return b.NormalCount+b.ReducedCount == len(b.Seats) && len(b.Seats) > 0 && b.Seats[0].TicketType != ""
}

// HasPersonalData reports whether the contact fields have been filled.
func (b *Booking) HasPersonalData() bool {
	return b.FirstName != "" && b.LastName != "" && b.Email != ""
}

// SeatIDs returns the booked seat IDs in selection order.
func (b *Booking) SeatIDs() []uuid.UUID {
	return lo.Map(b.Seats, func(s BookingSeat, _ int) uuid.UUID {
		return s.SeatID
	})
}

// ExpiresAt returns the moment the hold lapses, given the configured TTL.
// Meaningful only while the booking is RESERVED or FILLED.
func (b *Booking) ExpiresAt(ttl time.Duration) time.Time {
	return b.UpdatedAt.Add(ttl)
}
