package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"cinebook/internal/catalog"
	"cinebook/internal/shared/config"
	"cinebook/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// IN-MEMORY FAKES

type fakeRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
	payments map[uuid.UUID]*Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bookings: make(map[uuid.UUID]*Booking),
		payments: make(map[uuid.UUID]*Payment),
	}
}

func copyBooking(b *Booking) *Booking {
	dup := *b
	dup.Seats = make([]BookingSeat, len(b.Seats))
	copy(dup.Seats, b.Seats)
	dup.Payments = make([]Payment, len(b.Payments))
	copy(dup.Payments, b.Payments)
	return &dup
}

func (r *fakeRepo) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = copyBooking(b)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyBooking(b), nil
}

func (r *fakeRepo) ReplaceSeats(_ context.Context, b *Booking, seats []BookingSeat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Seats = seats
	r.bookings[b.ID] = copyBooking(b)
	return nil
}

func (r *fakeRepo) UpdateTickets(_ context.Context, b *Booking) error {
	return r.store(b)
}

func (r *fakeRepo) UpdateDetails(_ context.Context, b *Booking) error {
	return r.store(b)
}

func (r *fakeRepo) Touch(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.bookings[b.ID]; ok {
		stored.UpdatedAt = b.UpdatedAt
	}
	return nil
}

func (r *fakeRepo) Finalize(_ context.Context, b *Booking) error {
	if b.Status == StatusCanceled {
		for i := range b.Seats {
			released := b.UpdatedAt
			b.Seats[i].ReleasedAt = &released
		}
	}
	return r.store(b)
}

func (r *fakeRepo) store(b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = copyBooking(b)
	return nil
}

func (r *fakeRepo) HeldSeatIDs(_ context.Context, showingID, excludeBookingID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	held := make(map[uuid.UUID]uuid.UUID)
	for _, b := range r.bookings {
		if b.ShowingID != showingID || b.ID == excludeBookingID {
			continue
		}
		for _, seat := range b.Seats {
			if seat.ReleasedAt == nil {
				held[seat.SeatID] = b.ID
			}
		}
	}
	return held, nil
}

func (r *fakeRepo) ListStale(_ context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []Booking
	for _, b := range r.bookings {
		if b.Status.IsActive() && b.UpdatedAt.Before(cutoff) && len(stale) < limit {
			stale = append(stale, *copyBooking(b))
		}
	}
	return stale, nil
}

func (r *fakeRepo) CreatePayment(_ context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dup := *p
	r.payments[p.ID] = &dup
	return nil
}

func (r *fakeRepo) UpdatePayment(_ context.Context, p *Payment) error {
	return r.CreatePayment(context.Background(), p)
}

func (r *fakeRepo) GetPaymentByReference(_ context.Context, reference string) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.Reference == reference {
			dup := *p
			return &dup, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *fakeLocker) Acquire(_ context.Context, showingID uuid.UUID) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[showingID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[showingID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}

type fakeCatalog struct {
	showing *catalog.Showing
	seats   []catalog.Seat
}

func (f *fakeCatalog) GetShowingByID(_ context.Context, id uuid.UUID) (*catalog.Showing, error) {
	if f.showing == nil || f.showing.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.showing, nil
}

func (f *fakeCatalog) GetSeatsByHallID(_ context.Context, _ uuid.UUID) ([]catalog.Seat, error) {
	return f.seats, nil
}

type fakeQuoter struct {
	normal  float64
	reduced float64
}

func (q *fakeQuoter) Quote(_ context.Context, _ *catalog.Showing, ticketType catalog.TicketType, _ time.Time) (float64, error) {
	if ticketType == catalog.TicketTypeNormal {
		return q.normal, nil
	}
	return q.reduced, nil
}

type fakeGateway struct {
	mu      sync.Mutex
	charges int
}

func (g *fakeGateway) Charge(_ context.Context, _ uuid.UUID, _ float64, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges++
	return fmt.Sprintf("PAY-%04d", g.charges), nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	issued []uuid.UUID
}

func (n *fakeNotifier) TicketsIssued(_ context.Context, b *Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.issued = append(n.issued, b.ID)
	return nil
}

// FIXTURE

type testEnv struct {
	svc      *service
	repo     *fakeRepo
	notifier *fakeNotifier
	showing  *catalog.Showing
	seats    []catalog.Seat
	nowMu    sync.Mutex
	now      time.Time
}

func (e *testEnv) advance(d time.Duration) {
	e.nowMu.Lock()
	defer e.nowMu.Unlock()
	e.now = e.now.Add(d)
}

// newTestEnv builds a service over in-memory fakes. The hall has four
// normal seats followed by one wide pair (left half then right half).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hallID := uuid.New()
	seats := make([]catalog.Seat, 0, 6)
	for i := 0; i < 4; i++ {
		seats = append(seats, catalog.Seat{
			ID: uuid.New(), HallID: hallID, Row: 1, Column: i + 1, Number: i + 1,
			Kind: catalog.SeatKindNormal,
		})
	}
	left := catalog.Seat{ID: uuid.New(), HallID: hallID, Row: 2, Column: 1, Number: 5, Kind: catalog.SeatKindWideLeftHalf}
	right := catalog.Seat{ID: uuid.New(), HallID: hallID, Row: 2, Column: 2, Number: 6, Kind: catalog.SeatKindWideRightHalf}
	left.PairedSeatID = &right.ID
	right.PairedSeatID = &left.ID
	seats = append(seats, left, right)

	start := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	showing := &catalog.Showing{
		ID:        uuid.New(),
		HallID:    hallID,
		MovieID:   uuid.New(),
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	}

	env := &testEnv{
		repo:     newFakeRepo(),
		notifier: &fakeNotifier{},
		showing:  showing,
		seats:    seats,
		now:      start.Add(-48 * time.Hour),
	}

	cfg := config.BookingConfig{
		HoldTTL:         15 * time.Minute,
		ReaperInterval:  45 * time.Second,
		ReaperBatchSize: 100,
		LockTimeout:     250 * time.Millisecond,
		LockTTL:         3 * time.Second,
	}
	tokens := NewTokenManager(config.GuestTokenConfig{
		Secret:   "test-secret-not-for-production",
		Lifetime: 24 * time.Hour,
	})

	svc := NewService(
		env.repo,
		&fakeCatalog{showing: showing, seats: seats},
		&fakeQuoter{normal: 30.00, reduced: 22.50},
		newFakeLocker(),
		tokens,
		&fakeGateway{},
		env.notifier,
		logger.New(),
		cfg,
	).(*service)
	svc.now = func() time.Time {
		env.nowMu.Lock()
		defer env.nowMu.Unlock()
		return env.now
	}
	env.svc = svc
	return env
}

func (e *testEnv) seatIDs(indexes ...int) []uuid.UUID {
	ids := make([]uuid.UUID, len(indexes))
	for i, idx := range indexes {
		ids[i] = e.seats[idx].ID
	}
	return ids
}

func (e *testEnv) createBooking(t *testing.T, indexes ...int) *Booking {
	t.Helper()
	b, err := e.svc.Create(context.Background(), e.showing.ID, e.seatIDs(indexes...))
	require.NoError(t, err)
	return b
}

// TESTS

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)

	b := env.createBooking(t, 0, 1)

	assert.Equal(t, StatusReserved, b.Status)
	assert.NotEmpty(t, b.GuestToken)
	assert.Len(t, b.Seats, 2)
	assert.Equal(t, env.seats[0].ID, b.Seats[0].SeatID)
	assert.Equal(t, 0, b.Seats[0].Position)
	assert.Equal(t, 1, b.Seats[1].Position)

	held, err := env.repo.HeldSeatIDs(context.Background(), env.showing.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, held, 2)
}

func TestCreateRejectsHeldSeats(t *testing.T) {
	env := newTestEnv(t)
	env.createBooking(t, 0, 1)

	_, err := env.svc.Create(context.Background(), env.showing.ID, env.seatIDs(1, 2))

	var seatErr *SeatUnavailableError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, []string{env.seats[1].ID.String()}, seatErr.SeatIDs)
}

func TestCreateRejectsEmptyAndUnknownSeats(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.showing.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidSeatSelection)

	_, err = env.svc.Create(context.Background(), env.showing.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidSeatSelection)

	_, err = env.svc.Create(context.Background(), env.showing.ID, env.seatIDs(0, 0))
	assert.ErrorIs(t, err, ErrInvalidSeatSelection)
}

func TestCreateRejectsSplitWidePair(t *testing.T) {
	env := newTestEnv(t)

	// Seat 4 is the left half of the wide pair; selecting it alone is
	// invalid, selecting both halves works.
	_, err := env.svc.Create(context.Background(), env.showing.ID, env.seatIDs(4))
	assert.ErrorIs(t, err, ErrInvalidSeatSelection)

	b := env.createBooking(t, 4, 5)
	assert.Len(t, b.Seats, 2)
}

func TestConcurrentCreateOneWins(t *testing.T) {
	env := newTestEnv(t)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Create(context.Background(), env.showing.ID, env.seatIDs(0, 1))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var seatErr *SeatUnavailableError
		require.ErrorAs(t, err, &seatErr)
		conflicts++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestSetTicketsAssignsInSelectionOrder(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 2, 0, 1)

	updated, err := env.svc.SetTickets(context.Background(), b.ID, b.GuestToken, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, StatusFilled, updated.Status)
	assert.Equal(t, string(catalog.TicketTypeNormal), updated.Seats[0].TicketType)
	assert.Equal(t, string(catalog.TicketTypeNormal), updated.Seats[1].TicketType)
	assert.Equal(t, string(catalog.TicketTypeReduced), updated.Seats[2].TicketType)
	assert.Equal(t, env.seats[2].ID, updated.Seats[0].SeatID)
	assert.InDelta(t, 30.00+30.00+22.50, updated.TotalPrice, 0.001)
}

func TestSetTicketsRejectsBadSplit(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0, 1)

	_, err := env.svc.SetTickets(context.Background(), b.ID, b.GuestToken, 1, 2)
	assert.ErrorIs(t, err, ErrInvalidTicketSplit)

	_, err = env.svc.SetTickets(context.Background(), b.ID, b.GuestToken, -1, 3)
	assert.ErrorIs(t, err, ErrInvalidTicketSplit)

	stored, err := env.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReserved, stored.Status)
	assert.Zero(t, stored.TotalPrice)
	assert.Empty(t, stored.Seats[0].TicketType)
}

func TestChangeSeatsClearsTicketAssignment(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0, 1)
	_, err := env.svc.SetTickets(context.Background(), b.ID, b.GuestToken, 2, 0)
	require.NoError(t, err)

	env.advance(5 * time.Minute)
	updated, err := env.svc.ChangeSeats(context.Background(), b.ID, b.GuestToken, env.seatIDs(2, 3))
	require.NoError(t, err)

	assert.Equal(t, StatusReserved, updated.Status)
	assert.Zero(t, updated.NormalCount)
	assert.Zero(t, updated.TotalPrice)
	assert.Equal(t, env.seats[2].ID, updated.Seats[0].SeatID)

	// The old seats are free again, the new ones are held.
	held, err := env.repo.HeldSeatIDs(context.Background(), env.showing.ID, uuid.Nil)
	require.NoError(t, err)
	assert.NotContains(t, held, env.seats[0].ID)
	assert.Contains(t, held, env.seats[2].ID)
}

func TestChangeSeatsKeepsOverlappingOwnSeats(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0, 1)

	// Seat 0 stays in the selection; the booking's own hold on it must not
	// count as a conflict.
	updated, err := env.svc.ChangeSeats(context.Background(), b.ID, b.GuestToken, env.seatIDs(0, 2))
	require.NoError(t, err)

	assert.Equal(t, env.seats[0].ID, updated.Seats[0].SeatID)
	assert.Equal(t, env.seats[2].ID, updated.Seats[1].SeatID)

	held, err := env.repo.HeldSeatIDs(context.Background(), env.showing.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Contains(t, held, env.seats[0].ID)
	assert.Contains(t, held, env.seats[2].ID)
	assert.NotContains(t, held, env.seats[1].ID)
}

func TestMutationResetsHoldWindow(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0)
	createdAt := b.UpdatedAt

	env.advance(10 * time.Minute)
	updated, err := env.svc.SetTickets(context.Background(), b.ID, b.GuestToken, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, createdAt.Add(10*time.Minute), updated.UpdatedAt)

	// 10 + 12 minutes since creation, but only 12 since the last touch:
	// still alive.
	env.advance(12 * time.Minute)
	require.NoError(t, env.svc.Expire(context.Background(), b.ID))
	stored, err := env.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFilled, stored.Status)
}

func TestExpireReleasesStaleHold(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0, 1)

	env.advance(16 * time.Minute)
	require.NoError(t, env.svc.Expire(context.Background(), b.ID))

	stored, err := env.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, stored.Status)
	assert.Equal(t, CancelReasonTimeout, stored.CancelReason)

	held, err := env.repo.HeldSeatIDs(context.Background(), env.showing.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, held)

	// A second customer can take the same seats immediately.
	_, err = env.svc.Create(context.Background(), env.showing.ID, env.seatIDs(0, 1))
	assert.NoError(t, err)
}

func TestExpireIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0)

	env.advance(20 * time.Minute)
	require.NoError(t, env.svc.Expire(context.Background(), b.ID))
	first, err := env.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)

	require.NoError(t, env.svc.Expire(context.Background(), b.ID))
	second, err := env.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, env.svc.Expire(context.Background(), uuid.New()))
}

func TestStaleMutationExpiresInline(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0)

	env.advance(16 * time.Minute)
	_, err := env.svc.SetTickets(context.Background(), b.ID, b.GuestToken, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidState)

	stored, err := env.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, stored.Status)
	assert.Equal(t, CancelReasonTimeout, stored.CancelReason)
}

func TestTerminalBookingIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0, 1)
	_, err := env.svc.Cancel(context.Background(), b.ID, b.GuestToken)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = env.svc.ChangeSeats(ctx, b.ID, b.GuestToken, env.seatIDs(2))
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = env.svc.SetTickets(ctx, b.ID, b.GuestToken, 2, 0)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = env.svc.FillPersonalData(ctx, b.ID, b.GuestToken, "Ann", "Lee", "ann@example.com")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = env.svc.InitiatePayment(ctx, b.ID, b.GuestToken)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = env.svc.Cancel(ctx, b.ID, b.GuestToken)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGuestTokenIsRequired(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0)
	other := env.createBooking(t, 1)

	ctx := context.Background()
	_, err := env.svc.Get(ctx, b.ID, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Someone else's valid token must not open this booking.
	_, err = env.svc.Get(ctx, b.ID, other.GuestToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Unknown booking and bad token are indistinguishable.
	_, err = env.svc.Get(ctx, uuid.New(), b.GuestToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPaymentFlowMarksPaid(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0, 1)
	ctx := context.Background()

	_, err := env.svc.SetTickets(ctx, b.ID, b.GuestToken, 2, 0)
	require.NoError(t, err)
	_, err = env.svc.FillPersonalData(ctx, b.ID, b.GuestToken, "Ann", "Lee", "ann@example.com")
	require.NoError(t, err)

	payment, err := env.svc.InitiatePayment(ctx, b.ID, b.GuestToken)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPending, payment.Status)
	assert.InDelta(t, 60.00, payment.Amount, 0.001)

	require.NoError(t, env.svc.HandlePaymentOutcome(ctx, payment.Reference, true, ""))

	stored, err := env.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, stored.Status)
	assert.Equal(t, []uuid.UUID{b.ID}, env.notifier.issued)

	// Paid seats stay held forever.
	held, err := env.repo.HeldSeatIDs(ctx, env.showing.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, held, 2)

	// A replayed gateway callback is ignored.
	require.NoError(t, env.svc.HandlePaymentOutcome(ctx, payment.Reference, true, ""))
	assert.Len(t, env.notifier.issued, 1)
}

func TestPaymentFailureCancelsBooking(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0)
	ctx := context.Background()

	_, err := env.svc.SetTickets(ctx, b.ID, b.GuestToken, 1, 0)
	require.NoError(t, err)
	_, err = env.svc.FillPersonalData(ctx, b.ID, b.GuestToken, "Ann", "Lee", "ann@example.com")
	require.NoError(t, err)
	payment, err := env.svc.InitiatePayment(ctx, b.ID, b.GuestToken)
	require.NoError(t, err)

	require.NoError(t, env.svc.HandlePaymentOutcome(ctx, payment.Reference, false, "card declined"))

	stored, err := env.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, stored.Status)
	assert.Equal(t, CancelReasonPaymentFailed, stored.CancelReason)
	assert.Empty(t, env.notifier.issued)

	held, err := env.repo.HeldSeatIDs(ctx, env.showing.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestPaymentOutcomeUnknownReference(t *testing.T) {
	env := newTestEnv(t)
	err := env.svc.HandlePaymentOutcome(context.Background(), "PAY-9999", true, "")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestOutOfOrderCallsRejected(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t, 0)
	ctx := context.Background()

	// Personal data before ticket assignment.
	_, err := env.svc.FillPersonalData(ctx, b.ID, b.GuestToken, "Ann", "Lee", "ann@example.com")
	assert.ErrorIs(t, err, ErrInvalidState)

	// Payment before the booking is filled.
	_, err = env.svc.InitiatePayment(ctx, b.ID, b.GuestToken)
	assert.ErrorIs(t, err, ErrInvalidState)
}
