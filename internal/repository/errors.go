// Package repository holds the in-memory stores behind the reservation
// service: the show registry and the booking ledger.  The sentinel values
// below let higher layers distinguish failure scenarios with errors.Is.
// Handlers never see these directly; the service re-exports them as part
// of its error taxonomy.
package repository

import "errors"

// ErrShowNotFound is returned when no show is stored under the requested
// show number.
var ErrShowNotFound = errors.New("show not found")

// ErrBookingNotFound is returned when no booking is stored under the
// requested ticket number.
var ErrBookingNotFound = errors.New("booking not found")

// ErrInvalidConfiguration is returned when a show's grid or cancellation
// window is out of range.
var ErrInvalidConfiguration = errors.New("invalid show configuration")
