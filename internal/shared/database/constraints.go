package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	// Guard against double booking below the application lock: a seat may be
	// attached to at most one unreleased booking per showing. Rows are marked
	// released when their booking is cancelled or expired.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_active_seat_per_showing
		ON booking_seats (showing_id, seat_id)
		WHERE released_at IS NULL;
	`).Error
	if err != nil {
		return err
	}

	// Hot path: held-seat lookups during create/changeSeats re-validation
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_booking_seats_showing_active
		ON booking_seats (showing_id)
		WHERE released_at IS NULL;
	`).Error
	if err != nil {
		return err
	}

	// Reaper scan: stale non-terminal bookings by last mutation time
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status_updated_at
		ON bookings (status, updated_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
