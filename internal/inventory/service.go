package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinebook/internal/catalog"
	"cinebook/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrShowingNotFound = errors.New("showing not found")

type CatalogReader interface {
	GetShowingByID(ctx context.Context, id uuid.UUID) (*catalog.Showing, error)
	GetSeatsByHallID(ctx context.Context, hallID uuid.UUID) ([]catalog.Seat, error)
}

type Service interface {
	// IsHeld reports whether another booking currently holds the seat.
	IsHeld(ctx context.Context, showingID, seatID, excludeBookingID uuid.UUID) (bool, error)

	// AvailabilityGrid returns the picker snapshot for a showing. Served
	// from a short-lived cache; see AvailabilityGrid's doc for staleness.
	AvailabilityGrid(ctx context.Context, showingID uuid.UUID) (*AvailabilityGrid, error)
}

type service struct {
	repo     Repository
	catalog  CatalogReader
	cache    cache.Service
	cacheTTL time.Duration
	now      func() time.Time
}

func NewService(repo Repository, catalogReader CatalogReader, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{
		repo:     repo,
		catalog:  catalogReader,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

func gridCacheKey(showingID uuid.UUID) string {
	return "cinebook:grid:" + showingID.String()
}

func (s *service) IsHeld(ctx context.Context, showingID, seatID, excludeBookingID uuid.UUID) (bool, error) {
	held, err := s.repo.HeldSeats(ctx, showingID)
	if err != nil {
		return false, fmt.Errorf("failed to load held seats: %w", err)
	}
	holder, ok := held[seatID]
	return ok && holder != excludeBookingID, nil
}

func (s *service) AvailabilityGrid(ctx context.Context, showingID uuid.UUID) (*AvailabilityGrid, error) {
	var grid AvailabilityGrid
	err := s.cache.GetOrSet(ctx, gridCacheKey(showingID), s.cacheTTL, func() (interface{}, error) {
		return s.buildGrid(ctx, showingID)
	}, &grid)
	if err != nil {
		return nil, err
	}
	return &grid, nil
}

func (s *service) buildGrid(ctx context.Context, showingID uuid.UUID) (*AvailabilityGrid, error) {
	showing, err := s.catalog.GetShowingByID(ctx, showingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowingNotFound
		}
		return nil, fmt.Errorf("failed to load showing: %w", err)
	}

	seats, err := s.catalog.GetSeatsByHallID(ctx, showing.HallID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hall seats: %w", err)
	}
	held, err := s.repo.HeldSeats(ctx, showingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load held seats: %w", err)
	}

	grid := &AvailabilityGrid{
		ShowingID:   showingID,
		HallID:      showing.HallID,
		TotalSeats:  len(seats),
		HeldSeats:   len(held),
		Seats:       make([]GridSeat, len(seats)),
		GeneratedAt: s.now().UTC(),
	}
	for i, seat := range seats {
		_, isHeld := held[seat.ID]
		grid.Seats[i] = GridSeat{
			SeatID:       seat.ID,
			Row:          seat.Row,
			Column:       seat.Column,
			Number:       seat.Number,
			Kind:         string(seat.Kind),
			PairedSeatID: seat.PairedSeatID,
			Held:         isHeld,
		}
	}
	return grid, nil
}
