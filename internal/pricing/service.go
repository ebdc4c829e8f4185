package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinebook/internal/catalog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrShowingNotFound = errors.New("showing not found")

// CatalogReader is the slice of the catalog pricing reads: price bands and
// hall capacity.
type CatalogReader interface {
	GetShowingByID(ctx context.Context, id uuid.UUID) (*catalog.Showing, error)
	CountSeatsByHallID(ctx context.Context, hallID uuid.UUID) (int64, error)
	GetPriceByTicketType(ctx context.Context, ticketType catalog.TicketType) (*catalog.Price, error)
	ListPrices(ctx context.Context) ([]catalog.Price, error)
}

type Service interface {
	// Quote computes the current price of one ticket type for a showing.
	Quote(ctx context.Context, showing *catalog.Showing, ticketType catalog.TicketType, now time.Time) (float64, error)

	// QuoteAll computes current prices for every ticket type, for display.
	QuoteAll(ctx context.Context, showingID uuid.UUID) (*QuoteResponse, error)
}

type service struct {
	repo    Repository
	catalog CatalogReader
	engine  *Engine
	now     func() time.Time
}

func NewService(repo Repository, catalogReader CatalogReader, engine *Engine) Service {
	return &service{
		repo:    repo,
		catalog: catalogReader,
		engine:  engine,
		now:     time.Now,
	}
}

func (s *service) Quote(ctx context.Context, showing *catalog.Showing, ticketType catalog.TicketType, now time.Time) (float64, error) {
	price, err := s.catalog.GetPriceByTicketType(ctx, ticketType)
	if err != nil {
		return 0, fmt.Errorf("failed to load price for %s: %w", ticketType, err)
	}

	occupancy, err := s.occupancy(ctx, showing)
	if err != nil {
		return 0, err
	}

	return s.engine.Compute(Inputs{
		BasePrice:  price.BasePrice,
		MinPrice:   price.MinPrice,
		MaxPrice:   price.MaxPrice,
		Occupancy:  occupancy,
		UntilStart: showing.StartTime.Sub(now),
	}), nil
}

func (s *service) QuoteAll(ctx context.Context, showingID uuid.UUID) (*QuoteResponse, error) {
	showing, err := s.catalog.GetShowingByID(ctx, showingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowingNotFound
		}
		return nil, fmt.Errorf("failed to load showing: %w", err)
	}

	occupancy, err := s.occupancy(ctx, showing)
	if err != nil {
		return nil, err
	}

	prices, err := s.catalog.ListPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	now := s.now().UTC()
	resp := &QuoteResponse{
		ShowingID: showing.ID.String(),
		StartTime: showing.StartTime,
		Occupancy: occupancy,
		Quotes:    make([]TicketQuote, 0, len(prices)),
	}
	for _, price := range prices {
		resp.Quotes = append(resp.Quotes, TicketQuote{
			TicketType: string(price.TicketType),
			BasePrice:  price.BasePrice,
			MinPrice:   price.MinPrice,
			MaxPrice:   price.MaxPrice,
			CurrentPrice: s.engine.Compute(Inputs{
				BasePrice:  price.BasePrice,
				MinPrice:   price.MinPrice,
				MaxPrice:   price.MaxPrice,
				Occupancy:  occupancy,
				UntilStart: showing.StartTime.Sub(now),
			}),
		})
	}
	return resp, nil
}

// occupancy is the paid fraction of the hall. A hall without seats counts
// as empty rather than dividing by zero.
func (s *service) occupancy(ctx context.Context, showing *catalog.Showing) (float64, error) {
	total, err := s.catalog.CountSeatsByHallID(ctx, showing.HallID)
	if err != nil {
		return 0, fmt.Errorf("failed to count hall seats: %w", err)
	}
	if total == 0 {
		return 0, nil
	}

	paid, err := s.repo.CountPaidSeats(ctx, showing.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count paid seats: %w", err)
	}
	return float64(paid) / float64(total), nil
}
