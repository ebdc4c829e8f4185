package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository answers the occupancy question: how many seats of a showing
// are already sold.
type Repository interface {
	CountPaidSeats(ctx context.Context, showingID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountPaidSeats(ctx context.Context, showingID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("booking_seats").
		Joins("JOIN bookings ON bookings.id = booking_seats.booking_id").
		Where("booking_seats.showing_id = ? AND booking_seats.released_at IS NULL AND bookings.status = ?", showingID, "PAID").
		Count(&count).Error
	return count, err
}
