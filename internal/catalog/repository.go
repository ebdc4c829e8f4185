package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the read-only access path to the catalog. The reservation
// core never writes to it; halls, showings and prices are maintained by the
// back office (out of scope here, seeded via cmd/seed).
type Repository interface {
	GetShowingByID(ctx context.Context, id uuid.UUID) (*Showing, error)
	ListShowings(ctx context.Context, from time.Time, limit, offset int) ([]Showing, error)
	GetHallByID(ctx context.Context, id uuid.UUID) (*Hall, error)
	GetSeatsByHallID(ctx context.Context, hallID uuid.UUID) ([]Seat, error)
	CountSeatsByHallID(ctx context.Context, hallID uuid.UUID) (int64, error)
	GetPriceByTicketType(ctx context.Context, ticketType TicketType) (*Price, error)
	ListPrices(ctx context.Context) ([]Price, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetShowingByID(ctx context.Context, id uuid.UUID) (*Showing, error) {
	var showing Showing
	err := r.db.WithContext(ctx).First(&showing, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &showing, nil
}

func (r *repository) ListShowings(ctx context.Context, from time.Time, limit, offset int) ([]Showing, error) {
	var showings []Showing
	err := r.db.WithContext(ctx).
		Where("start_time >= ?", from).
		Order("start_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&showings).Error
	return showings, err
}

func (r *repository) GetHallByID(ctx context.Context, id uuid.UUID) (*Hall, error) {
	var hall Hall
	err := r.db.WithContext(ctx).
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("row ASC, col ASC")
		}).
		First(&hall, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &hall, nil
}

func (r *repository) GetSeatsByHallID(ctx context.Context, hallID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("hall_id = ?", hallID).
		Order("row ASC, col ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) CountSeatsByHallID(ctx context.Context, hallID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("hall_id = ?", hallID).
		Count(&count).Error
	return count, err
}

func (r *repository) GetPriceByTicketType(ctx context.Context, ticketType TicketType) (*Price, error) {
	var price Price
	err := r.db.WithContext(ctx).First(&price, "ticket_type = ?", ticketType).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repository) ListPrices(ctx context.Context) ([]Price, error) {
	var prices []Price
	err := r.db.WithContext(ctx).Order("ticket_type ASC").Find(&prices).Error
	return prices, err
}
