package database

import (
	"cinebook/internal/booking"
	"cinebook/internal/catalog"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Hall{},
		&catalog.Seat{},
		&catalog.Showing{},
		&catalog.Price{},
		&booking.Booking{},
		&booking.BookingSeat{},
		&booking.Payment{},
	)
}
