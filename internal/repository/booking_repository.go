package repository

import (
	"sort"
	"sync"

	"github.com/iliyamo/ticket-reservation/internal/model"
)

// BookingRepo is the booking ledger.  It exclusively owns bookings keyed
// by ticket number and answers the phone-number-per-show question used to
// reject duplicate bookings.  Values are copied on the way in and out.
type BookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]model.Booking
}

// NewBookingRepo returns an empty ledger.
func NewBookingRepo() *BookingRepo {
	return &BookingRepo{bookings: make(map[string]model.Booking)}
}

// Save inserts or overwrites a booking by ticket number.
func (r *BookingRepo) Save(b model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.TicketNumber] = b.Clone()
}

// GetByTicket returns the booking stored under ticketNumber or
// ErrBookingNotFound.
func (r *BookingRepo) GetByTicket(ticketNumber string) (model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[ticketNumber]
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	return b.Clone(), nil
}

// ListByShow returns every booking on the show ordered by creation time,
// ties broken by ticket number.  It returns an empty slice when the show
// has no bookings.
func (r *BookingRepo) ListByShow(showNumber string) []model.Booking {
	r.mu.RLock()
	out := make([]model.Booking, 0)
	for _, b := range r.bookings {
		if b.ShowNumber == showNumber {
			out = append(out, b.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return ticketLess(out[i].TicketNumber, out[j].TicketNumber)
	})
	return out
}

// ticketLess compares fixed-prefix ticket numbers; a longer counter
// rendering always means a larger counter value.
func ticketLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// IsPhoneUsed reports whether any booking on the show was made with this
// exact phone number.
func (r *BookingRepo) IsPhoneUsed(showNumber, phoneNumber string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.ShowNumber == showNumber && b.PhoneNumber == phoneNumber {
			return true
		}
	}
	return false
}

// Delete removes the booking if present.  Deleting an unknown ticket is
// not an error.
func (r *BookingRepo) Delete(ticketNumber string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, ticketNumber)
}
