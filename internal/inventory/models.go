package inventory

import (
	"time"

	"github.com/google/uuid"
)

// GridSeat is one seat of the picker grid with its point-in-time hold flag.
type GridSeat struct {
	SeatID       uuid.UUID  `json:"seat_id"`
	Row          int        `json:"row"`
	Column       int        `json:"column"`
	Number       int        `json:"number"`
	Kind         string     `json:"kind"`
	PairedSeatID *uuid.UUID `json:"paired_seat_id,omitempty"`
	Held         bool       `json:"held"`
}

// AvailabilityGrid is a rendering snapshot. It may be a few seconds stale;
// the booking service re-checks availability under the showing lock before
// committing anything.
type AvailabilityGrid struct {
	ShowingID   uuid.UUID  `json:"showing_id"`
	HallID      uuid.UUID  `json:"hall_id"`
	TotalSeats  int        `json:"total_seats"`
	HeldSeats   int        `json:"held_seats"`
	Seats       []GridSeat `json:"seats"`
	GeneratedAt time.Time  `json:"generated_at"`
}
