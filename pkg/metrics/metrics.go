package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the reservation lifecycle. Registered on the default registry
// and exposed on /metrics.
var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinebook_bookings_created_total",
		Help: "Seat holds created.",
	})

	BookingsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinebook_bookings_paid_total",
		Help: "Bookings that reached the terminal PAID state.",
	})

	BookingsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinebook_bookings_cancelled_total",
		Help: "Bookings cancelled, by reason.",
	}, []string{"reason"})

	SeatConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinebook_seat_conflicts_total",
		Help: "Seat-contention races lost by a caller.",
	})

	LockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinebook_lock_timeouts_total",
		Help: "Per-showing lock acquisitions that timed out after retry.",
	})

	ReaperRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinebook_reaper_runs_total",
		Help: "Expiry reaper scan cycles.",
	})
)
