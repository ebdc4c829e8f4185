package inventory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cinebook/internal/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeInventoryRepo struct {
	held map[uuid.UUID]uuid.UUID
}

func (f *fakeInventoryRepo) HeldSeats(context.Context, uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	return f.held, nil
}

type fakeCatalogReader struct {
	showing *catalog.Showing
	seats   []catalog.Seat
}

func (f *fakeCatalogReader) GetShowingByID(_ context.Context, id uuid.UUID) (*catalog.Showing, error) {
	if f.showing == nil || f.showing.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.showing, nil
}

func (f *fakeCatalogReader) GetSeatsByHallID(context.Context, uuid.UUID) ([]catalog.Seat, error) {
	return f.seats, nil
}

// passthroughCache calls the fetcher on every read and tracks how often,
// so tests can tell cached from fresh responses.
type passthroughCache struct {
	fetches int
}

func (c *passthroughCache) Get(context.Context, string, interface{}) error { return nil }
func (c *passthroughCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (c *passthroughCache) Delete(context.Context, string) error         { return nil }
func (c *passthroughCache) DeletePattern(context.Context, string) error  { return nil }
func (c *passthroughCache) Ping(context.Context) error                   { return nil }

func (c *passthroughCache) GetOrSet(_ context.Context, _ string, _ time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	c.fetches++
	value, err := fetcher()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func gridFixture() (*fakeCatalogReader, []uuid.UUID) {
	hallID := uuid.New()
	seatIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	seats := []catalog.Seat{
		{ID: seatIDs[0], HallID: hallID, Row: 1, Column: 1, Number: 1, Kind: catalog.SeatKindNormal},
		{ID: seatIDs[1], HallID: hallID, Row: 1, Column: 2, Number: 2, Kind: catalog.SeatKindNormal},
		{ID: seatIDs[2], HallID: hallID, Row: 1, Column: 3, Number: 3, Kind: catalog.SeatKindAccessible},
	}
	start := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	return &fakeCatalogReader{
		showing: &catalog.Showing{ID: uuid.New(), HallID: hallID, StartTime: start, EndTime: start.Add(2 * time.Hour)},
		seats:   seats,
	}, seatIDs
}

func TestAvailabilityGridFlagsHeldSeats(t *testing.T) {
	reader, seatIDs := gridFixture()
	holder := uuid.New()
	repo := &fakeInventoryRepo{held: map[uuid.UUID]uuid.UUID{seatIDs[1]: holder}}

	svc := NewService(repo, reader, &passthroughCache{}, time.Second)
	grid, err := svc.AvailabilityGrid(context.Background(), reader.showing.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, grid.TotalSeats)
	assert.Equal(t, 1, grid.HeldSeats)
	assert.False(t, grid.Seats[0].Held)
	assert.True(t, grid.Seats[1].Held)
	assert.False(t, grid.Seats[2].Held)
	assert.Equal(t, string(catalog.SeatKindAccessible), grid.Seats[2].Kind)
}

func TestAvailabilityGridUnknownShowing(t *testing.T) {
	reader, _ := gridFixture()
	svc := NewService(&fakeInventoryRepo{}, reader, &passthroughCache{}, time.Second)

	_, err := svc.AvailabilityGrid(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrShowingNotFound)
}

func TestIsHeldExcludesOwnBooking(t *testing.T) {
	reader, seatIDs := gridFixture()
	holder := uuid.New()
	repo := &fakeInventoryRepo{held: map[uuid.UUID]uuid.UUID{seatIDs[0]: holder}}
	svc := NewService(repo, reader, &passthroughCache{}, time.Second)
	ctx := context.Background()

	held, err := svc.IsHeld(ctx, reader.showing.ID, seatIDs[0], uuid.Nil)
	require.NoError(t, err)
	assert.True(t, held)

	// The holder itself does not conflict with its own seat.
	held, err = svc.IsHeld(ctx, reader.showing.ID, seatIDs[0], holder)
	require.NoError(t, err)
	assert.False(t, held)

	held, err = svc.IsHeld(ctx, reader.showing.ID, seatIDs[2], uuid.Nil)
	require.NoError(t, err)
	assert.False(t, held)
}
