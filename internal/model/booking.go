package model

import "time"

// Booking records the seats one buyer holds on one show.  The phone
// number is the buyer's identity; at most one booking per phone number
// exists for a given show.  Bookings reference shows and seats by label,
// never by pointer.
//
// Fields:
//  TicketNumber – unique identifier issued when the booking is created.
//  PhoneNumber  – buyer identity, compared case sensitively.
//  ShowNumber   – show the seats belong to.
//  Seats        – booked seat labels in request order.
//  CreatedAt    – creation time, the start of the cancellation window.
type Booking struct {
	TicketNumber string
	PhoneNumber  string
	ShowNumber   string
	Seats        []string
	CreatedAt    time.Time
}

// CancellationDeadline is the last instant at which the booking may still
// be cancelled under the given window.
func (b Booking) CancellationDeadline(window time.Duration) time.Time {
	return b.CreatedAt.Add(window)
}

// Clone copies the booking including its seat slice.
func (b Booking) Clone() Booking {
	seats := make([]string, len(b.Seats))
	copy(seats, b.Seats)
	b.Seats = seats
	return b
}
