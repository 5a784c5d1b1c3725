package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/ticket-reservation/internal/repository"
)

// Error taxonomy of the reservation service.  Every kind is a caller
// input or state precondition violation; none is transient and the
// service never retries.
var (
	ErrInvalidConfiguration      = repository.ErrInvalidConfiguration
	ErrShowNotFound              = repository.ErrShowNotFound
	ErrBookingNotFound           = repository.ErrBookingNotFound
	ErrDuplicatePhoneBooking     = errors.New("phone number already has a booking on this show")
	ErrSeatUnavailable           = errors.New("one or more selected seats are not available")
	ErrCancellationWindowExpired = errors.New("cancellation window has passed")
	ErrNoBookingsFound           = errors.New("no bookings found for show")
	ErrInvalidSeatSelection      = errors.New("at least one seat must be selected")
)

// SeatUnavailableError lists the requested seats that could not be
// booked.  It matches ErrSeatUnavailable under errors.Is.
type SeatUnavailableError struct {
	ShowNumber string
	Seats      []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("%s: show %s: %s", ErrSeatUnavailable, e.ShowNumber, strings.Join(e.Seats, ", "))
}

func (e *SeatUnavailableError) Unwrap() error { return ErrSeatUnavailable }

// IsNotFound reports whether err means a show, booking or booking list
// does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShowNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrNoBookingsFound)
}

// IsConflict reports whether err means the request clashes with current
// state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicatePhoneBooking) ||
		errors.Is(err, ErrSeatUnavailable) ||
		errors.Is(err, ErrCancellationWindowExpired)
}

// IsValidation reports whether err means the request itself is malformed.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrInvalidSeatSelection)
}
