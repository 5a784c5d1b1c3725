package model

import "time"

// Show represents a configured seating event.  It holds the grid
// dimensions, the cancellation policy and the availability of every seat.
// The set of seat labels is fixed when the show is built and never grows
// or shrinks afterwards; only the availability flags change.
//
// Fields:
//  ShowNumber          – caller assigned identifier, unique per registry.
//  NumberOfRows        – rows in the grid (row letters A..).
//  SeatsPerRow         – seats in each row (numbered from 1).
//  CancelWindowMinutes – minutes after booking creation during which the
//                        booking may still be cancelled.
//  Seats               – seat label -> true when the seat is free.
type Show struct {
	ShowNumber          string
	NumberOfRows        int
	SeatsPerRow         int
	CancelWindowMinutes int
	Seats               map[string]bool
}

// NewShow builds a show with every seat of the grid marked available.
// Dimensions are not validated here; the registry does that.
func NewShow(showNumber string, rows, seatsPerRow, cancelWindowMinutes int) *Show {
	labels := GenerateSeatLabels(rows, seatsPerRow)
	seats := make(map[string]bool, len(labels))
	for _, l := range labels {
		seats[l] = true
	}
	return &Show{
		ShowNumber:          showNumber,
		NumberOfRows:        rows,
		SeatsPerRow:         seatsPerRow,
		CancelWindowMinutes: cancelWindowMinutes,
		Seats:               seats,
	}
}

// HasSeat reports whether the label belongs to this show's grid.
func (s *Show) HasSeat(label string) bool {
	_, ok := s.Seats[label]
	return ok
}

// IsAvailable reports whether the seat exists and is currently free.
func (s *Show) IsAvailable(label string) bool {
	return s.Seats[label]
}

// SetSeatsAvailability flips the availability of the given seats.  Labels
// that are not part of the grid are ignored.
func (s *Show) SetSeatsAvailability(labels []string, available bool) {
	for _, l := range labels {
		if _, ok := s.Seats[l]; ok {
			s.Seats[l] = available
		}
	}
}

// AvailableSeats returns the free seats in natural seat order.
func (s *Show) AvailableSeats() []string {
	out := make([]string, 0, len(s.Seats))
	for l, free := range s.Seats {
		if free {
			out = append(out, l)
		}
	}
	SortSeatLabels(out)
	return out
}

// SeatLabels returns every seat of the grid in natural seat order.
func (s *Show) SeatLabels() []string {
	out := make([]string, 0, len(s.Seats))
	for l := range s.Seats {
		out = append(out, l)
	}
	SortSeatLabels(out)
	return out
}

// CancelWindow converts the configured window into a duration.
func (s *Show) CancelWindow() time.Duration {
	return time.Duration(s.CancelWindowMinutes) * time.Minute
}

// Clone returns a deep copy so that callers outside the registry cannot
// mutate the stored seat map.
func (s *Show) Clone() *Show {
	seats := make(map[string]bool, len(s.Seats))
	for l, free := range s.Seats {
		seats[l] = free
	}
	c := *s
	c.Seats = seats
	return &c
}
