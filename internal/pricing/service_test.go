package pricing

import (
	"context"
	"testing"
	"time"

	"cinebook/internal/catalog"
	"cinebook/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePricingRepo struct {
	paid int64
}

func (f *fakePricingRepo) CountPaidSeats(context.Context, uuid.UUID) (int64, error) {
	return f.paid, nil
}

type fakePricingCatalog struct {
	showing    *catalog.Showing
	totalSeats int64
	prices     []catalog.Price
}

func (f *fakePricingCatalog) GetShowingByID(_ context.Context, id uuid.UUID) (*catalog.Showing, error) {
	if f.showing == nil || f.showing.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.showing, nil
}

func (f *fakePricingCatalog) CountSeatsByHallID(context.Context, uuid.UUID) (int64, error) {
	return f.totalSeats, nil
}

func (f *fakePricingCatalog) GetPriceByTicketType(_ context.Context, ticketType catalog.TicketType) (*catalog.Price, error) {
	for i := range f.prices {
		if f.prices[i].TicketType == ticketType {
			return &f.prices[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePricingCatalog) ListPrices(context.Context) ([]catalog.Price, error) {
	return f.prices, nil
}

func newPricingFixture(paid, total int64, start time.Time) (*service, *fakePricingCatalog) {
	reader := &fakePricingCatalog{
		showing: &catalog.Showing{
			ID:        uuid.New(),
			HallID:    uuid.New(),
			StartTime: start,
			EndTime:   start.Add(2 * time.Hour),
		},
		totalSeats: total,
		prices: []catalog.Price{
			{TicketType: catalog.TicketTypeNormal, BasePrice: 30, MinPrice: 20, MaxPrice: 40},
			{TicketType: catalog.TicketTypeReduced, BasePrice: 22.50, MinPrice: 15, MaxPrice: 30},
		},
	}
	engine := NewEngine(config.PricingConfig{
		HighOccupancyThreshold: 0.7,
		LowOccupancyThreshold:  0.3,
		SoonWindow:             24 * time.Hour,
		OccupancyRate:          0.10,
		SoonRate:               0.10,
	})
	svc := NewService(&fakePricingRepo{paid: paid}, reader, engine).(*service)
	return svc, reader
}

func TestQuoteUsesPaidOccupancy(t *testing.T) {
	start := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	// 40 of 48 seats paid: high occupancy, far from the showing.
	svc, reader := newPricingFixture(40, 48, start)
	price, err := svc.Quote(context.Background(), reader.showing, catalog.TicketTypeNormal, start.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 33.00, price, 0.0001)

	// 2 of 48 paid: low occupancy discount.
	svc, reader = newPricingFixture(2, 48, start)
	price, err = svc.Quote(context.Background(), reader.showing, catalog.TicketTypeNormal, start.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 27.00, price, 0.0001)
}

func TestQuoteEmptyHallIsNotHighOccupancy(t *testing.T) {
	start := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	svc, reader := newPricingFixture(0, 0, start)

	// Zero seats must not divide by zero; it reads as an empty hall.
	price, err := svc.Quote(context.Background(), reader.showing, catalog.TicketTypeNormal, start.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 27.00, price, 0.0001)
}

func TestQuoteAllCoversEveryTicketType(t *testing.T) {
	start := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	svc, reader := newPricingFixture(24, 48, start)
	svc.now = func() time.Time { return start.Add(-10 * time.Hour) }

	quote, err := svc.QuoteAll(context.Background(), reader.showing.ID)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, quote.Occupancy, 0.0001)
	require.Len(t, quote.Quotes, 2)
	// Only the soon surcharge applies at mid occupancy.
	assert.Equal(t, string(catalog.TicketTypeNormal), quote.Quotes[0].TicketType)
	assert.InDelta(t, 33.00, quote.Quotes[0].CurrentPrice, 0.0001)
	assert.InDelta(t, 24.75, quote.Quotes[1].CurrentPrice, 0.0001)
}

func TestQuoteAllUnknownShowing(t *testing.T) {
	start := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	svc, _ := newPricingFixture(0, 48, start)

	_, err := svc.QuoteAll(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrShowingNotFound)
}
