package pricing

import (
	"math"
	"time"

	"cinebook/internal/shared/config"
)

// Inputs are the facts one price computation depends on. Occupancy is the
// fraction of the hall already sold (paid), UntilStart the remaining time
// before the showing begins.
type Inputs struct {
	BasePrice  float64
	MinPrice   float64
	MaxPrice   float64
	Occupancy  float64
	UntilStart time.Duration
}

// Engine adjusts a base ticket price for demand and urgency. It is a pure
// function of its inputs; all thresholds and rates come from configuration.
type Engine struct {
	cfg config.PricingConfig
}

func NewEngine(cfg config.PricingConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Compute applies the occupancy and time adjustments additively, then clamps
// the result into the [min, max] band and rounds to cents. High and low
// occupancy are mutually exclusive; the soon surcharge stacks with either.
func (e *Engine) Compute(in Inputs) float64 {
	adjustment := 0.0
	if in.Occupancy >= e.cfg.HighOccupancyThreshold {
		adjustment += e.cfg.OccupancyRate
	} else if in.Occupancy <= e.cfg.LowOccupancyThreshold {
		adjustment -= e.cfg.OccupancyRate
	}
	if in.UntilStart <= e.cfg.SoonWindow {
		adjustment += e.cfg.SoonRate
	}

	price := in.BasePrice * (1 + adjustment)
	if price < in.MinPrice {
		price = in.MinPrice
	}
	if price > in.MaxPrice {
		price = in.MaxPrice
	}
	return math.Round(price*100) / 100
}
