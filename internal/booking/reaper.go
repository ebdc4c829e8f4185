package booking

import (
	"context"
	"time"

	"cinebook/internal/shared/config"
	"cinebook/pkg/logger"
	"cinebook/pkg/metrics"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Expirer is the slice of the booking service the reaper drives.
type Expirer interface {
	StaleBookings(ctx context.Context) ([]Booking, error)
	Expire(ctx context.Context, id uuid.UUID) error
}

// Reaper periodically releases holds whose TTL has lapsed. Each booking is
// expired through the regular lock path, so a sweep can run concurrently
// with live customer traffic without racing it.
type Reaper struct {
	expirer   Expirer
	scheduler gocron.Scheduler
	log       *logger.Logger
	interval  time.Duration
}

func NewReaper(expirer Expirer, log *logger.Logger, cfg config.BookingConfig) (*Reaper, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &Reaper{
		expirer:   expirer,
		scheduler: scheduler,
		log:       log,
		interval:  cfg.ReaperInterval,
	}, nil
}

func (r *Reaper) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.Sweep),
	)
	if err != nil {
		return err
	}
	r.scheduler.Start()
	r.log.WithFields(map[string]interface{}{
		"interval": r.interval.String(),
	}).Info("expiry reaper started")
	return nil
}

func (r *Reaper) Stop() error {
	return r.scheduler.Shutdown()
}

// Sweep runs one reaper pass. Errors on individual bookings are logged and
// skipped; the next pass retries them.
func (r *Reaper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	metrics.ReaperRuns.Inc()

	stale, err := r.expirer.StaleBookings(ctx)
	if err != nil {
		r.log.ErrorWithContext(ctx, "reaper failed to scan for stale bookings", err, nil)
		return
	}
	if len(stale) == 0 {
		return
	}

	expired := 0
	for _, b := range stale {
		if err := r.expirer.Expire(ctx, b.ID); err != nil {
			r.log.ErrorWithContext(ctx, "reaper failed to expire booking", err, map[string]interface{}{
				"booking_id": b.ID.String(),
			})
			continue
		}
		expired++
	}

	r.log.InfoWithContext(ctx, "reaper sweep finished", map[string]interface{}{
		"scanned": len(stale),
		"expired": expired,
	})
}
