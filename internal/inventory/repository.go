package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads seat occupancy. It never mutates anything; holds are
// created and released exclusively by the booking side.
type Repository interface {
	// HeldSeats returns seatID -> holding bookingID for the showing. A seat
	// is held while its booking row is unreleased, which covers RESERVED,
	// FILLED and PAID bookings.
	HeldSeats(ctx context.Context, showingID uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type heldRow struct {
	SeatID    uuid.UUID
	BookingID uuid.UUID
}

func (r *repository) HeldSeats(ctx context.Context, showingID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	var rows []heldRow
	err := r.db.WithContext(ctx).
		Table("booking_seats").
		Select("seat_id, booking_id").
		Where("showing_id = ? AND released_at IS NULL", showingID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	held := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, row := range rows {
		held[row.SeatID] = row.BookingID
	}
	return held, nil
}
