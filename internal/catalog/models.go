package catalog

import (
	"time"

	"github.com/google/uuid"
)

// SeatKind classifies the physical seat units in a hall. A physically wide
// seat is sold as two adjacent units (left/right half) that are always held
// and released together.
type SeatKind string

const (
	SeatKindNormal        SeatKind = "NORMAL"
	SeatKindWideLeftHalf  SeatKind = "WIDE_LEFT_HALF"
	SeatKindWideRightHalf SeatKind = "WIDE_RIGHT_HALF"
	SeatKindAccessible    SeatKind = "ACCESSIBLE"
)

// TicketType is the fare category a seat is sold under.
type TicketType string

const (
	TicketTypeNormal  TicketType = "NORMAL"
	TicketTypeReduced TicketType = "REDUCED"
)

// Hall defines a screening room and its seat layout
type Hall struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Seats []Seat `json:"seats,omitempty" gorm:"foreignKey:HallID;constraint:OnDelete:CASCADE;"`
}

// Seat defines one sellable seat unit. PairedSeatID links the two halves of a
// wide seat explicitly; selection logic never infers pairing from position.
type Seat struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HallID       uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:idx_hall_seat" json:"hall_id"`
	Row          int        `gorm:"not null;uniqueIndex:idx_hall_seat" json:"row"`
	Column       int        `gorm:"not null;uniqueIndex:idx_hall_seat;column:col" json:"column"`
	Number       int        `gorm:"not null" json:"number"`
	Kind         SeatKind   `gorm:"type:varchar(20);check:kind IN ('NORMAL', 'WIDE_LEFT_HALF', 'WIDE_RIGHT_HALF', 'ACCESSIBLE');default:'NORMAL'" json:"kind"`
	PairedSeatID *uuid.UUID `gorm:"type:uuid" json:"paired_seat_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	// Relationships
	Hall *Hall `json:"hall,omitempty" gorm:"foreignKey:HallID;constraint:OnDelete:CASCADE;"`
}

// Showing defines a scheduled screening. Immutable read model for the
// reservation core.
type Showing struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HallID     uuid.UUID `gorm:"type:uuid;index;not null" json:"hall_id"`
	MovieID    uuid.UUID `gorm:"type:uuid;index;not null" json:"movie_id"`
	MovieTitle string    `gorm:"not null" json:"movie_title"`
	StartTime  time.Time `gorm:"index;not null" json:"start_time"`
	EndTime    time.Time `gorm:"not null" json:"end_time"`
	Format     string    `gorm:"type:varchar(10)" json:"format"`
	Language   string    `gorm:"type:varchar(40)" json:"language"`
	Subtitles  string    `gorm:"type:varchar(40)" json:"subtitles"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Hall *Hall `json:"hall,omitempty" gorm:"foreignKey:HallID;constraint:OnDelete:RESTRICT;"`
}

// Price defines the fare bounds for one ticket type
type Price struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TicketType TicketType `gorm:"type:varchar(10);unique;not null;check:ticket_type IN ('NORMAL', 'REDUCED')" json:"ticket_type"`
	BasePrice  float64    `gorm:"not null" json:"base_price"`
	MinPrice   float64    `gorm:"not null" json:"min_price"`
	MaxPrice   float64    `gorm:"not null" json:"max_price"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName sets the table name for Hall
func (Hall) TableName() string {
	return "halls"
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// TableName sets the table name for Showing
func (Showing) TableName() string {
	return "showings"
}

// TableName sets the table name for Price
func (Price) TableName() string {
	return "prices"
}

// IsWideHalf reports whether the seat is one half of a wide seat.
func (s *Seat) IsWideHalf() bool {
	return s.Kind == SeatKindWideLeftHalf || s.Kind == SeatKindWideRightHalf
}
