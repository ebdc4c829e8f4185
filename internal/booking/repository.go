package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Booking aggregate
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ReplaceSeats(ctx context.Context, b *Booking, seats []BookingSeat) error
	UpdateTickets(ctx context.Context, b *Booking) error
	UpdateDetails(ctx context.Context, b *Booking) error
	Touch(ctx context.Context, b *Booking) error
	Finalize(ctx context.Context, b *Booking) error

	// Seat contention
	HeldSeatIDs(ctx context.Context, showingID, excludeBookingID uuid.UUID) (map[uuid.UUID]uuid.UUID, error)

	// Reaper scan
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error)

	// Payments
	CreatePayment(ctx context.Context, p *Payment) error
	UpdatePayment(ctx context.Context, p *Payment) error
	GetPaymentByReference(ctx context.Context, reference string) (*Payment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// BOOKING AGGREGATE

func (r *repository) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Payments").
		First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ReplaceSeats swaps the booking's seat set in one transaction. The old rows
// are removed entirely; ticket assignment and price are already cleared on
// the booking by the caller.
func (r *repository) ReplaceSeats(ctx context.Context, b *Booking, seats []BookingSeat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", b.ID).Delete(&BookingSeat{}).Error; err != nil {
			return err
		}
		if len(seats) > 0 {
			if err := tx.Create(&seats).Error; err != nil {
				return err
			}
		}
		if err := r.updateBookingRow(tx, b); err != nil {
			return err
		}
		b.Seats = seats
		return nil
	})
}

// UpdateTickets persists the ticket-type/price assignment on the seat rows
// together with the recomputed totals.
func (r *repository) UpdateTickets(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range b.Seats {
			err := tx.Model(&BookingSeat{}).
				Where("id = ?", b.Seats[i].ID).
				UpdateColumns(map[string]interface{}{
					"ticket_type": b.Seats[i].TicketType,
					"unit_price":  b.Seats[i].UnitPrice,
				}).Error
			if err != nil {
				return err
			}
		}
		return r.updateBookingRow(tx, b)
	})
}

func (r *repository) UpdateDetails(ctx context.Context, b *Booking) error {
	return r.updateBookingRow(r.db.WithContext(ctx), b)
}

// Touch bumps the TTL anchor without touching anything else.
func (r *repository) Touch(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ?", b.ID).
		UpdateColumn("updated_at", b.UpdatedAt).Error
}

// Finalize applies a terminal (or reset) status transition. When the booking
// leaves the active statuses its seat rows are marked released, which is what
// frees the seats for other customers.
func (r *repository) Finalize(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateBookingRow(tx, b); err != nil {
			return err
		}
		if b.Status == StatusCanceled {
			err := tx.Model(&BookingSeat{}).
				Where("booking_id = ? AND released_at IS NULL", b.ID).
				UpdateColumn("released_at", b.UpdatedAt).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// updateBookingRow writes the mutable booking columns. updated_at is set
// explicitly from the aggregate: it is the TTL anchor and must reflect the
// service's clock, not gorm's.
func (r *repository) updateBookingRow(tx *gorm.DB, b *Booking) error {
	return tx.Model(&Booking{}).
		Where("id = ?", b.ID).
		UpdateColumns(map[string]interface{}{
			"status":        b.Status,
			"cancel_reason": b.CancelReason,
			"first_name":    b.FirstName,
			"last_name":     b.LastName,
			"email":         b.Email,
			"normal_count":  b.NormalCount,
			"reduced_count": b.ReducedCount,
			"total_price":   b.TotalPrice,
			"updated_at":    b.UpdatedAt,
		}).Error
}

// SEAT CONTENTION

// HeldSeatIDs returns seatID -> bookingID for every seat of the showing that
// is attached to an unreleased booking row. Callers must hold the showing
// lock when using this for a commit decision.
func (r *repository) HeldSeatIDs(ctx context.Context, showingID, excludeBookingID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	var rows []BookingSeat
	q := r.db.WithContext(ctx).
		Select("seat_id, booking_id").
		Where("showing_id = ? AND released_at IS NULL", showingID)
	if excludeBookingID != uuid.Nil {
		q = q.Where("booking_id != ?", excludeBookingID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	held := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, row := range rows {
		held[row.SeatID] = row.BookingID
	}
	return held, nil
}

// REAPER SCAN

func (r *repository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []Status{StatusReserved, StatusFilled}, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// PAYMENTS

func (r *repository) CreatePayment(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) UpdatePayment(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *repository) GetPaymentByReference(ctx context.Context, reference string) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).First(&p, "reference = ?", reference).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
