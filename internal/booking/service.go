package booking

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"cinebook/internal/catalog"
	"cinebook/internal/shared/config"
	"cinebook/pkg/logger"
	"cinebook/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogReader is the slice of the catalog the reservation core reads.
// It never writes back.
type CatalogReader interface {
	GetShowingByID(ctx context.Context, id uuid.UUID) (*catalog.Showing, error)
	GetSeatsByHallID(ctx context.Context, hallID uuid.UUID) ([]catalog.Seat, error)
}

// PriceQuoter computes the current per-ticket price for a showing.
type PriceQuoter interface {
	Quote(ctx context.Context, showing *catalog.Showing, ticketType catalog.TicketType, now time.Time) (float64, error)
}

// PaymentGateway initiates a charge and later reports its outcome through
// HandlePaymentOutcome.
type PaymentGateway interface {
	Charge(ctx context.Context, bookingID uuid.UUID, amount float64, currency string) (reference string, err error)
}

// Notifier is told exactly once about a paid booking so tickets can be
// issued. Delivery failures must not fail the payment.
type Notifier interface {
	TicketsIssued(ctx context.Context, b *Booking) error
}

type Service interface {
	Create(ctx context.Context, showingID uuid.UUID, seatIDs []uuid.UUID) (*Booking, error)
	Get(ctx context.Context, id uuid.UUID, token string) (*Booking, error)
	ChangeSeats(ctx context.Context, id uuid.UUID, token string, seatIDs []uuid.UUID) (*Booking, error)
	SetTickets(ctx context.Context, id uuid.UUID, token string, normalCount, reducedCount int) (*Booking, error)
	FillPersonalData(ctx context.Context, id uuid.UUID, token, firstName, lastName, email string) (*Booking, error)
	InitiatePayment(ctx context.Context, id uuid.UUID, token string) (*Payment, error)
	Cancel(ctx context.Context, id uuid.UUID, token string) (*Booking, error)
	HandlePaymentOutcome(ctx context.Context, reference string, success bool, failureReason string) error
	Expire(ctx context.Context, id uuid.UUID) error
	StaleBookings(ctx context.Context) ([]Booking, error)
	HoldTTL() time.Duration
}

type service struct {
	repo     Repository
	catalog  CatalogReader
	quoter   PriceQuoter
	locker   ShowingLocker
	tokens   *TokenManager
	gateway  PaymentGateway
	notifier Notifier
	log      *logger.Logger
	cfg      config.BookingConfig
	now      func() time.Time
}

func NewService(
	repo Repository,
	catalogReader CatalogReader,
	quoter PriceQuoter,
	locker ShowingLocker,
	tokens *TokenManager,
	gateway PaymentGateway,
	notifier Notifier,
	log *logger.Logger,
	cfg config.BookingConfig,
) Service {
	return &service{
		repo:     repo,
		catalog:  catalogReader,
		quoter:   quoter,
		locker:   locker,
		tokens:   tokens,
		gateway:  gateway,
		notifier: notifier,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *service) HoldTTL() time.Duration {
	return s.cfg.HoldTTL
}

// Create claims the seat set for a new booking. On success the returned
// booking carries a freshly minted guest token; it is shown to the customer
// exactly once.
func (s *service) Create(ctx context.Context, showingID uuid.UUID, seatIDs []uuid.UUID) (*Booking, error) {
	now := s.now().UTC()

	showing, err := s.catalog.GetShowingByID(ctx, showingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowingNotFound
		}
		return nil, fmt.Errorf("failed to load showing: %w", err)
	}
	if !showing.StartTime.After(now) {
		return nil, fmt.Errorf("%w: showing has already started", ErrInvalidState)
	}

	if err := s.validateSeatSelection(ctx, showing, seatIDs); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, showingID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Authoritative availability check happens here, under the lock. Any
	// grid the customer saw earlier is advisory only.
	if err := s.checkAvailability(ctx, showingID, uuid.Nil, seatIDs); err != nil {
		return nil, err
	}

	bookingID := uuid.New()
	token, err := s.tokens.Mint(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint guest token: %w", err)
	}

	b := &Booking{
		ID:         bookingID,
		ShowingID:  showingID,
		Status:     StatusReserved,
		GuestToken: token,
		CreatedAt:  now,
		UpdatedAt:  now,
		Seats:      newSeatRows(bookingID, showingID, seatIDs, now),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.BookingsCreated.Inc()
	s.log.LogBookingCreated(ctx, b.ID.String(), showingID.String(), len(seatIDs))
	return b, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, token string) (*Booking, error) {
	return s.fetchAuthorized(ctx, id, token)
}

// ChangeSeats swaps the held seat set. Ticket assignment and personal-data
// progress survive a seat change only partially: ticket counts and prices
// are cleared and the booking drops back to RESERVED.
func (s *service) ChangeSeats(ctx context.Context, id uuid.UUID, token string, seatIDs []uuid.UUID) (*Booking, error) {
	b, err := s.fetchAuthorized(ctx, id, token)
	if err != nil {
		return nil, err
	}

	showing, err := s.catalog.GetShowingByID(ctx, b.ShowingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load showing: %w", err)
	}
	if err := s.validateSeatSelection(ctx, showing, seatIDs); err != nil {
		return nil, err
	}

	fresh, release, err := s.lockAndReload(ctx, b)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	if err := s.ensureLive(ctx, fresh, now); err != nil {
		return nil, err
	}
	// The booking's own current seats do not count against it.
	if err := s.checkAvailability(ctx, fresh.ShowingID, fresh.ID, seatIDs); err != nil {
		return nil, err
	}

	fresh.Status = StatusReserved
	fresh.NormalCount = 0
	fresh.ReducedCount = 0
	fresh.TotalPrice = 0
	fresh.UpdatedAt = now
	seats := newSeatRows(fresh.ID, fresh.ShowingID, seatIDs, now)
	if err := s.repo.ReplaceSeats(ctx, fresh, seats); err != nil {
		return nil, fmt.Errorf("failed to replace seats: %w", err)
	}
	return fresh, nil
}

// SetTickets assigns ticket types to the held seats in selection order: the
// first normalCount seats become NORMAL, the rest REDUCED. Prices are quoted
// at call time, so recomputing with the same counts is stable until the
// pricing inputs move.
func (s *service) SetTickets(ctx context.Context, id uuid.UUID, token string, normalCount, reducedCount int) (*Booking, error) {
	if normalCount < 0 || reducedCount < 0 {
		return nil, ErrInvalidTicketSplit
	}

	b, err := s.fetchAuthorized(ctx, id, token)
	if err != nil {
		return nil, err
	}
	showing, err := s.catalog.GetShowingByID(ctx, b.ShowingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load showing: %w", err)
	}

	fresh, release, err := s.lockAndReload(ctx, b)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	if err := s.ensureLive(ctx, fresh, now); err != nil {
		return nil, err
	}
	if normalCount+reducedCount != len(fresh.Seats) {
		return nil, fmt.Errorf("%w: %d+%d tickets for %d seats",
			ErrInvalidTicketSplit, normalCount, reducedCount, len(fresh.Seats))
	}

	normalPrice, err := s.quoter.Quote(ctx, showing, catalog.TicketTypeNormal, now)
	if err != nil {
		return nil, fmt.Errorf("failed to quote normal price: %w", err)
	}
	reducedPrice, err := s.quoter.Quote(ctx, showing, catalog.TicketTypeReduced, now)
	if err != nil {
		return nil, fmt.Errorf("failed to quote reduced price: %w", err)
	}

	total := 0.0
	for i := range fresh.Seats {
		if i < normalCount {
			fresh.Seats[i].TicketType = string(catalog.TicketTypeNormal)
			fresh.Seats[i].UnitPrice = normalPrice
		} else {
			fresh.Seats[i].TicketType = string(catalog.TicketTypeReduced)
			fresh.Seats[i].UnitPrice = reducedPrice
		}
		total += fresh.Seats[i].UnitPrice
	}

	fresh.Status = StatusFilled
	fresh.NormalCount = normalCount
	fresh.ReducedCount = reducedCount
	fresh.TotalPrice = total
	fresh.UpdatedAt = now
	if err := s.repo.UpdateTickets(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to save ticket assignment: %w", err)
	}
	return fresh, nil
}

func (s *service) FillPersonalData(ctx context.Context, id uuid.UUID, token, firstName, lastName, email string) (*Booking, error) {
	b, err := s.fetchAuthorized(ctx, id, token)
	if err != nil {
		return nil, err
	}

	fresh, release, err := s.lockAndReload(ctx, b)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	if err := s.ensureLive(ctx, fresh, now); err != nil {
		return nil, err
	}
	if !fresh.TicketsAssigned() {
		return nil, fmt.Errorf("%w: ticket types not assigned yet", ErrInvalidState)
	}

	fresh.FirstName = firstName
	fresh.LastName = lastName
	fresh.Email = email
	fresh.Status = StatusFilled
	fresh.UpdatedAt = now
	if err := s.repo.UpdateDetails(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to save personal data: %w", err)
	}
	return fresh, nil
}

// InitiatePayment asks the gateway to charge the booking's total and records
// a PENDING payment attempt. The booking stays FILLED until the gateway
// reports the outcome.
func (s *service) InitiatePayment(ctx context.Context, id uuid.UUID, token string) (*Payment, error) {
	b, err := s.fetchAuthorized(ctx, id, token)
	if err != nil {
		return nil, err
	}

	fresh, release, err := s.lockAndReload(ctx, b)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	if err := s.ensureLive(ctx, fresh, now); err != nil {
		return nil, err
	}
	if fresh.Status != StatusFilled || !fresh.HasPersonalData() {
		return nil, fmt.Errorf("%w: booking is not ready for payment", ErrInvalidState)
	}

	reference, err := s.gateway.Charge(ctx, fresh.ID, fresh.TotalPrice, "EUR")
	if err != nil {
		return nil, fmt.Errorf("payment gateway rejected the charge: %w", err)
	}

	payment := &Payment{
		ID:        uuid.New(),
		BookingID: fresh.ID,
		Amount:    fresh.TotalPrice,
		Currency:  "EUR",
		Status:    PaymentStatusPending,
		Reference: reference,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	// Starting a payment is a customer action; it keeps the hold alive.
	fresh.UpdatedAt = now
	if err := s.repo.Touch(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to refresh hold: %w", err)
	}
	return payment, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, token string) (*Booking, error) {
	b, err := s.fetchAuthorized(ctx, id, token)
	if err != nil {
		return nil, err
	}

	fresh, release, err := s.lockAndReload(ctx, b)
	if err != nil {
		return nil, err
	}
	defer release()

	if !fresh.Status.CanTransitionTo(StatusCanceled) {
		return nil, fmt.Errorf("%w: booking is already %s", ErrInvalidState, fresh.Status)
	}

	now := s.now().UTC()
	fresh.Status = StatusCanceled
	fresh.CancelReason = CancelReasonCustomer
	fresh.UpdatedAt = now
	if err := s.repo.Finalize(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	metrics.BookingsCancelled.WithLabelValues(CancelReasonCustomer).Inc()
	s.log.LogBookingCancelled(ctx, fresh.ID.String(), CancelReasonCustomer)
	return fresh, nil
}

// HandlePaymentOutcome processes the gateway callback. A success is mapped
// to the PAID transition, a failure cancels the booking and releases its
// seats. Replayed callbacks for an already-settled payment are ignored.
func (s *service) HandlePaymentOutcome(ctx context.Context, reference string, success bool, failureReason string) error {
	payment, err := s.repo.GetPaymentByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if payment.Status != PaymentStatusPending {
		return nil
	}

	b, err := s.repo.GetByID(ctx, payment.BookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking for payment %s: %w", reference, err)
	}

	fresh, release, err := s.lockAndReload(ctx, b)
	if err != nil {
		return err
	}
	defer release()

	now := s.now().UTC()
	if !success {
		s.settlePayment(ctx, payment, PaymentStatusFailed, failureReason, now)
		if fresh.Status.IsTerminal() {
			return nil
		}
		fresh.Status = StatusCanceled
		fresh.CancelReason = CancelReasonPaymentFailed
		fresh.UpdatedAt = now
		if err := s.repo.Finalize(ctx, fresh); err != nil {
			return fmt.Errorf("failed to cancel booking after payment failure: %w", err)
		}
		metrics.BookingsCancelled.WithLabelValues(CancelReasonPaymentFailed).Inc()
		s.log.LogBookingCancelled(ctx, fresh.ID.String(), CancelReasonPaymentFailed)
		return nil
	}

	// The charge went through either way; record it even when the booking
	// can no longer be paid (expired while the gateway was processing).
	s.settlePayment(ctx, payment, PaymentStatusCompleted, "", now)
	if !fresh.Status.CanTransitionTo(StatusPaid) {
		s.log.ErrorWithContext(ctx, "payment completed for a booking that is no longer payable", ErrInvalidState, map[string]interface{}{
			"booking_id": fresh.ID.String(),
			"reference":  reference,
			"status":     fresh.Status.String(),
		})
		return fmt.Errorf("%w: booking is %s, not %s", ErrInvalidState, fresh.Status, StatusFilled)
	}

	fresh.Status = StatusPaid
	fresh.UpdatedAt = now
	if err := s.repo.Finalize(ctx, fresh); err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}

	metrics.BookingsPaid.Inc()
	s.log.LogBookingPaid(ctx, fresh.ID.String(), fresh.ShowingID.String(), fresh.TotalPrice)

	if s.notifier != nil {
		if err := s.notifier.TicketsIssued(ctx, fresh); err != nil {
			s.log.ErrorWithContext(ctx, "failed to publish ticket issue event", err, map[string]interface{}{
				"booking_id": fresh.ID.String(),
			})
		}
	}
	return nil
}

// Expire releases a stale hold. It takes the same lock path as customer
// mutations, so it can never race a payment confirmation for the same
// booking. Terminal or freshly-touched bookings are left alone.
func (s *service) Expire(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load booking: %w", err)
	}
	if b.Status.IsTerminal() {
		return nil
	}

	fresh, release, err := s.lockAndReload(ctx, b)
	if err != nil {
		return err
	}
	defer release()

	now := s.now().UTC()
	if fresh.Status.IsTerminal() || now.Sub(fresh.UpdatedAt) <= s.cfg.HoldTTL {
		return nil
	}

	fresh.Status = StatusCanceled
	fresh.CancelReason = CancelReasonTimeout
	fresh.UpdatedAt = now
	if err := s.repo.Finalize(ctx, fresh); err != nil {
		return fmt.Errorf("failed to expire booking: %w", err)
	}

	metrics.BookingsCancelled.WithLabelValues(CancelReasonTimeout).Inc()
	s.log.LogBookingExpired(ctx, fresh.ID.String(), now.Sub(fresh.CreatedAt))
	return nil
}

func (s *service) StaleBookings(ctx context.Context) ([]Booking, error) {
	cutoff := s.now().UTC().Add(-s.cfg.HoldTTL)
	return s.repo.ListStale(ctx, cutoff, s.cfg.ReaperBatchSize)
}

// HELPERS

// fetchAuthorized loads a booking and verifies the guest token against it.
// Lookup failures and token mismatches are indistinguishable to the caller.
func (s *service) fetchAuthorized(ctx context.Context, id uuid.UUID, token string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if token == "" || !s.tokens.Verify(token, b.ID) {
		return nil, ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(b.GuestToken)) != 1 {
		return nil, ErrUnauthorized
	}
	return b, nil
}

// lockAndReload serializes against other mutations of the same showing and
// rereads the booking so the decision below runs on fresh state.
func (s *service) lockAndReload(ctx context.Context, b *Booking) (*Booking, func(), error) {
	release, err := s.locker.Acquire(ctx, b.ShowingID)
	if err != nil {
		return nil, nil, err
	}
	fresh, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to reload booking: %w", err)
	}
	return fresh, release, nil
}

// ensureLive rejects mutations of terminal bookings and enforces the hold
// TTL inline. A booking found stale here is expired on the spot rather than
// waiting for the reaper's next pass.
func (s *service) ensureLive(ctx context.Context, b *Booking, now time.Time) error {
	if b.Status.IsTerminal() {
		return fmt.Errorf("%w: booking is %s", ErrInvalidState, b.Status)
	}
	if now.Sub(b.UpdatedAt) > s.cfg.HoldTTL {
		b.Status = StatusCanceled
		b.CancelReason = CancelReasonTimeout
		b.UpdatedAt = now
		if err := s.repo.Finalize(ctx, b); err != nil {
			return fmt.Errorf("failed to expire stale booking: %w", err)
		}
		metrics.BookingsCancelled.WithLabelValues(CancelReasonTimeout).Inc()
		s.log.LogBookingExpired(ctx, b.ID.String(), now.Sub(b.CreatedAt))
		return fmt.Errorf("%w: hold expired", ErrInvalidState)
	}
	return nil
}

// validateSeatSelection checks everything that does not need the showing
// lock: non-empty, no duplicates, seats exist in the showing's hall, and
// wide-seat halves come in complete pairs.
func (s *service) validateSeatSelection(ctx context.Context, showing *catalog.Showing, seatIDs []uuid.UUID) error {
	if len(seatIDs) == 0 {
		return fmt.Errorf("%w: no seats selected", ErrInvalidSeatSelection)
	}

	hallSeats, err := s.catalog.GetSeatsByHallID(ctx, showing.HallID)
	if err != nil {
		return fmt.Errorf("failed to load hall seats: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Seat, len(hallSeats))
	for i := range hallSeats {
		byID[hallSeats[i].ID] = &hallSeats[i]
	}

	selected := make(map[uuid.UUID]bool, len(seatIDs))
	for _, seatID := range seatIDs {
		if selected[seatID] {
			return fmt.Errorf("%w: seat %s selected twice", ErrInvalidSeatSelection, seatID)
		}
		if _, ok := byID[seatID]; !ok {
			return fmt.Errorf("%w: seat %s is not in this hall", ErrInvalidSeatSelection, seatID)
		}
		selected[seatID] = true
	}

	for _, seatID := range seatIDs {
		seat := byID[seatID]
		if !seat.IsWideHalf() {
			continue
		}
		if seat.PairedSeatID == nil {
			return fmt.Errorf("%w: seat %s has no paired half", ErrInvalidSeatSelection, seatID)
		}
		if !selected[*seat.PairedSeatID] {
			return fmt.Errorf("%w: wide seat halves must be selected together", ErrInvalidSeatSelection)
		}
	}
	return nil
}

// checkAvailability is the commit-time conflict check. Must be called with
// the showing lock held.
func (s *service) checkAvailability(ctx context.Context, showingID, excludeBookingID uuid.UUID, seatIDs []uuid.UUID) error {
	held, err := s.repo.HeldSeatIDs(ctx, showingID, excludeBookingID)
	if err != nil {
		return fmt.Errorf("failed to check seat availability: %w", err)
	}

	var conflicts []string
	for _, seatID := range seatIDs {
		if _, taken := held[seatID]; taken {
			conflicts = append(conflicts, seatID.String())
		}
	}
	if len(conflicts) > 0 {
		metrics.SeatConflicts.Inc()
		s.log.LogSeatConflict(ctx, showingID.String(), conflicts)
		return &SeatUnavailableError{SeatIDs: conflicts}
	}
	return nil
}

func newSeatRows(bookingID, showingID uuid.UUID, seatIDs []uuid.UUID, now time.Time) []BookingSeat {
	rows := make([]BookingSeat, len(seatIDs))
	for i, seatID := range seatIDs {
		rows[i] = BookingSeat{
			ID:        uuid.New(),
			BookingID: bookingID,
			ShowingID: showingID,
			SeatID:    seatID,
			Position:  i,
			CreatedAt: now,
		}
	}
	return rows
}

func (s *service) settlePayment(ctx context.Context, p *Payment, status, failureReason string, now time.Time) {
	p.Status = status
	p.FailureReason = failureReason
	p.ProcessedAt = &now
	p.UpdatedAt = now
	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		s.log.ErrorWithContext(ctx, "failed to update payment record", err, map[string]interface{}{
			"payment_id": p.ID.String(),
			"reference":  p.Reference,
		})
	}
}
