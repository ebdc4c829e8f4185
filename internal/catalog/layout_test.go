package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seat(row, col int, kind SeatKind) Seat {
	return Seat{ID: uuid.New(), HallID: uuid.New(), Row: row, Column: col, Number: col, Kind: kind}
}

func TestResolveWidePairs_LinksAdjacentHalves(t *testing.T) {
	seats := []Seat{
		seat(1, 1, SeatKindNormal),
		seat(1, 2, SeatKindWideLeftHalf),
		seat(1, 3, SeatKindWideRightHalf),
		seat(1, 4, SeatKindAccessible),
		seat(2, 1, SeatKindWideLeftHalf),
		seat(2, 2, SeatKindWideRightHalf),
	}

	err := ResolveWidePairs(seats)
	require.NoError(t, err)

	// Normal and accessible seats stay unpaired
	assert.Nil(t, seats[0].PairedSeatID)
	assert.Nil(t, seats[3].PairedSeatID)

	// Halves reference each other symmetrically
	require.NotNil(t, seats[1].PairedSeatID)
	require.NotNil(t, seats[2].PairedSeatID)
	assert.Equal(t, seats[2].ID, *seats[1].PairedSeatID)
	assert.Equal(t, seats[1].ID, *seats[2].PairedSeatID)

	require.NotNil(t, seats[4].PairedSeatID)
	assert.Equal(t, seats[5].ID, *seats[4].PairedSeatID)
}

func TestResolveWidePairs_RejectsOrphanHalf(t *testing.T) {
	seats := []Seat{
		seat(1, 1, SeatKindWideLeftHalf),
	}

	err := ResolveWidePairs(seats)
	assert.Error(t, err)
}

func TestResolveWidePairs_RejectsNonAdjacentHalves(t *testing.T) {
	seats := []Seat{
		seat(1, 1, SeatKindWideLeftHalf),
		seat(1, 5, SeatKindWideRightHalf),
	}

	err := ResolveWidePairs(seats)
	assert.Error(t, err)
}

func TestResolveWidePairs_RejectsSwappedHalves(t *testing.T) {
	seats := []Seat{
		seat(1, 1, SeatKindWideRightHalf),
		seat(1, 2, SeatKindWideLeftHalf),
	}

	err := ResolveWidePairs(seats)
	assert.Error(t, err)
}
