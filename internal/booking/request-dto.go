package booking

import (
	"fmt"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ShowingID string   `json:"showing_id" validate:"required,uuid"`
	SeatIDs   []string `json:"seat_ids" validate:"required,min=1,dive,uuid"`
}

type ChangeSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"required,min=1,dive,uuid"`
}

// Counts are pointers so an explicit zero survives the required check.
type SetTicketsRequest struct {
	NormalCount  *int `json:"normal_count" validate:"required,min=0"`
	ReducedCount *int `json:"reduced_count" validate:"required,min=0"`
}

type PersonalDataRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
}

func parseSeatIDs(raw []string) ([]uuid.UUID, error) {
	seatIDs := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid seat id %q: %w", s, err)
		}
		seatIDs[i] = id
	}
	return seatIDs, nil
}
