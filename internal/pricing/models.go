package pricing

import "time"

type TicketQuote struct {
	TicketType   string  `json:"ticket_type"`
	BasePrice    float64 `json:"base_price"`
	CurrentPrice float64 `json:"current_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

// QuoteResponse is a point-in-time snapshot: the quoted prices are not a
// hold, the authoritative price is computed again when tickets are set.
type QuoteResponse struct {
	ShowingID string        `json:"showing_id"`
	StartTime time.Time     `json:"start_time"`
	Occupancy float64       `json:"occupancy"`
	Quotes    []TicketQuote `json:"quotes"`
}
