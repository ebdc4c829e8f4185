package catalog

import (
	"fmt"
	"sort"
)

// ResolveWidePairs links the two halves of every wide seat in a hall layout by
// setting PairedSeatID on both. Halves are matched within a row by adjacent
// columns (left half immediately left of its right half); the resolved
// relation is what all select/release logic operates on afterwards, so this
// runs once when a layout is built, not per request.
func ResolveWidePairs(seats []Seat) error {
	byRow := make(map[int][]*Seat)
	for i := range seats {
		if seats[i].IsWideHalf() {
			byRow[seats[i].Row] = append(byRow[seats[i].Row], &seats[i])
		}
	}

	for row, halves := range byRow {
		sort.Slice(halves, func(i, j int) bool {
			return halves[i].Column < halves[j].Column
		})

		for i := 0; i < len(halves); i += 2 {
			if i+1 >= len(halves) {
				return fmt.Errorf("row %d: wide seat half at column %d has no partner", row, halves[i].Column)
			}
			left, right := halves[i], halves[i+1]
			if left.Kind != SeatKindWideLeftHalf || right.Kind != SeatKindWideRightHalf {
				return fmt.Errorf("row %d: wide seat halves at columns %d,%d are out of order", row, left.Column, right.Column)
			}
			if right.Column != left.Column+1 {
				return fmt.Errorf("row %d: wide seat halves at columns %d,%d are not adjacent", row, left.Column, right.Column)
			}
			leftID, rightID := left.ID, right.ID
			left.PairedSeatID = &rightID
			right.PairedSeatID = &leftID
		}
	}

	return nil
}
