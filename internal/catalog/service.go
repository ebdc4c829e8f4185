package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	GetShowing(ctx context.Context, id string) (*Showing, error)
	ListUpcomingShowings(ctx context.Context, limit, offset int) ([]Showing, error)
	GetHall(ctx context.Context, id string) (*Hall, error)
	GetHallSeats(ctx context.Context, hallID uuid.UUID) ([]Seat, error)
	CountHallSeats(ctx context.Context, hallID uuid.UUID) (int64, error)
	GetPrice(ctx context.Context, ticketType TicketType) (*Price, error)
	ListPrices(ctx context.Context) ([]Price, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetShowing(ctx context.Context, id string) (*Showing, error) {
	showingID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid showing ID: %w", err)
	}

	showing, err := s.repo.GetShowingByID(ctx, showingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("showing not found")
		}
		return nil, fmt.Errorf("failed to get showing: %w", err)
	}

	return showing, nil
}

func (s *service) ListUpcomingShowings(ctx context.Context, limit, offset int) ([]Showing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListShowings(ctx, time.Now(), limit, offset)
}

func (s *service) GetHall(ctx context.Context, id string) (*Hall, error) {
	hallID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid hall ID: %w", err)
	}

	hall, err := s.repo.GetHallByID(ctx, hallID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("hall not found")
		}
		return nil, fmt.Errorf("failed to get hall: %w", err)
	}

	return hall, nil
}

func (s *service) GetHallSeats(ctx context.Context, hallID uuid.UUID) ([]Seat, error) {
	return s.repo.GetSeatsByHallID(ctx, hallID)
}

func (s *service) CountHallSeats(ctx context.Context, hallID uuid.UUID) (int64, error) {
	return s.repo.CountSeatsByHallID(ctx, hallID)
}

func (s *service) GetPrice(ctx context.Context, ticketType TicketType) (*Price, error) {
	price, err := s.repo.GetPriceByTicketType(ctx, ticketType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no price configured for ticket type %s", ticketType)
		}
		return nil, fmt.Errorf("failed to get price: %w", err)
	}
	return price, nil
}

func (s *service) ListPrices(ctx context.Context) ([]Price, error) {
	return s.repo.ListPrices(ctx)
}
