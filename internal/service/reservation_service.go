// Package service implements the reservation engine: show configuration,
// seat availability, booking and time-windowed cancellation.  It owns the
// per-show serialisation that keeps seat flags and bookings consistent
// under concurrent callers.  The package never logs; adapters translate
// its errors into user facing output.
package service

import (
	"fmt"
	"strings"

	"github.com/iliyamo/ticket-reservation/internal/model"
	"github.com/iliyamo/ticket-reservation/internal/repository"
)

// BookingSummary is one booking as shown in a show's details view.
type BookingSummary struct {
	TicketNumber string
	PhoneNumber  string
	Seats        []string
}

// ShowDetails is the administrator's view of a show and its bookings.
type ShowDetails struct {
	ShowNumber string
	Bookings   []BookingSummary
}

// Lines renders the details as the classic text listing: a header line
// followed by one line per booking.
func (d ShowDetails) Lines() []string {
	lines := make([]string, 0, len(d.Bookings)+1)
	lines = append(lines, "Show Number: "+d.ShowNumber)
	for _, b := range d.Bookings {
		lines = append(lines, fmt.Sprintf("Ticket Number: %s, Phone Number: %s, Seats: %s",
			b.TicketNumber, b.PhoneNumber, strings.Join(b.Seats, ", ")))
	}
	return lines
}

// ReservationService combines the show registry and the booking ledger.
// All mutations of one show run under that show's write lock, so the
// availability check and the booking it guards form a single step.
type ReservationService struct {
	shows    *repository.ShowRepo
	bookings *repository.BookingRepo
	tickets  TicketIssuer
	clock    Clock
	locks    *showLocks
}

// Option customises a ReservationService.
type Option func(*ReservationService)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *ReservationService) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTicketIssuer overrides the default TK-prefixed counter.
func WithTicketIssuer(ti TicketIssuer) Option {
	return func(s *ReservationService) {
		if ti != nil {
			s.tickets = ti
		}
	}
}

// NewReservationService wires the service to its stores.  Both stores
// must be non-nil.
func NewReservationService(shows *repository.ShowRepo, bookings *repository.BookingRepo, opts ...Option) *ReservationService {
	if shows == nil || bookings == nil {
		panic("nil repository passed to NewReservationService")
	}
	s := &ReservationService{
		shows:    shows,
		bookings: bookings,
		tickets:  NewTicketIssuer(),
		clock:    SystemClock{},
		locks:    newShowLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConfigureShow creates or replaces a show.  Seats held by bookings that
// already exist on the show number stay unavailable on the new grid; every
// other seat starts available.
func (s *ReservationService) ConfigureShow(showNumber string, rows, seatsPerRow, cancelWindowMinutes int) error {
	lock := s.locks.acquire(showNumber)
	lock.Lock()
	defer lock.Unlock()

	show, err := s.shows.Configure(showNumber, rows, seatsPerRow, cancelWindowMinutes)
	if err != nil {
		return err
	}
	for _, b := range s.bookings.ListByShow(showNumber) {
		show.SetSeatsAvailability(b.Seats, false)
	}
	return nil
}

// GetAvailableSeats returns the free seats of a show sorted by row letter
// then seat number.
func (s *ReservationService) GetAvailableSeats(showNumber string) ([]string, error) {
	lock, ok := s.locks.lookup(showNumber)
	if !ok {
		return nil, ErrShowNotFound
	}
	lock.RLock()
	defer lock.RUnlock()

	show, err := s.shows.GetByNumber(showNumber)
	if err != nil {
		return nil, err
	}
	return show.AvailableSeats(), nil
}

// BookSeats reserves the requested seats for the phone number and returns
// the new ticket number.  Nothing is stored and no ticket is consumed
// when any check fails.
func (s *ReservationService) BookSeats(showNumber, phoneNumber string, seats []string) (string, error) {
	lock, ok := s.locks.lookup(showNumber)
	if !ok {
		return "", ErrShowNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	show, err := s.shows.GetByNumber(showNumber)
	if err != nil {
		return "", err
	}
	requested := uniqueSeats(seats)
	if len(requested) == 0 {
		return "", ErrInvalidSeatSelection
	}
	if s.bookings.IsPhoneUsed(showNumber, phoneNumber) {
		return "", ErrDuplicatePhoneBooking
	}
	var unavailable []string
	for _, seat := range requested {
		if !show.IsAvailable(seat) {
			unavailable = append(unavailable, seat)
		}
	}
	if len(unavailable) > 0 {
		return "", &SeatUnavailableError{ShowNumber: showNumber, Seats: unavailable}
	}

	ticket := s.tickets.Next()
	s.bookings.Save(model.Booking{
		TicketNumber: ticket,
		PhoneNumber:  phoneNumber,
		ShowNumber:   showNumber,
		Seats:        requested,
		CreatedAt:    s.clock.Now(),
	})
	show.SetSeatsAvailability(requested, false)
	return ticket, nil
}

// CancelBooking deletes the booking and frees its seats.  A missing
// ticket and a phone mismatch both report ErrBookingNotFound.  The
// booking may be cancelled up to and including the instant the window
// closes.  The cancelled booking is returned for the caller's records.
func (s *ReservationService) CancelBooking(ticketNumber, phoneNumber string) (model.Booking, error) {
	b, err := s.bookings.GetByTicket(ticketNumber)
	if err != nil || b.PhoneNumber != phoneNumber {
		return model.Booking{}, ErrBookingNotFound
	}
	lock, ok := s.locks.lookup(b.ShowNumber)
	if !ok {
		return model.Booking{}, ErrShowNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	// a concurrent cancel may have won the race for the lock
	b, err = s.bookings.GetByTicket(ticketNumber)
	if err != nil || b.PhoneNumber != phoneNumber {
		return model.Booking{}, ErrBookingNotFound
	}
	show, err := s.shows.GetByNumber(b.ShowNumber)
	if err != nil {
		return model.Booking{}, err
	}
	if s.clock.Now().After(b.CancellationDeadline(show.CancelWindow())) {
		return model.Booking{}, ErrCancellationWindowExpired
	}

	s.bookings.Delete(ticketNumber)
	show.SetSeatsAvailability(b.Seats, true)
	return b, nil
}

// GetShowDetails lists every booking on the show.  A show without
// bookings reports ErrNoBookingsFound.
func (s *ReservationService) GetShowDetails(showNumber string) (ShowDetails, error) {
	lock, ok := s.locks.lookup(showNumber)
	if !ok {
		return ShowDetails{}, ErrShowNotFound
	}
	lock.RLock()
	defer lock.RUnlock()

	if _, err := s.shows.GetByNumber(showNumber); err != nil {
		return ShowDetails{}, err
	}
	bookings := s.bookings.ListByShow(showNumber)
	if len(bookings) == 0 {
		return ShowDetails{}, fmt.Errorf("%w %s", ErrNoBookingsFound, showNumber)
	}
	details := ShowDetails{ShowNumber: showNumber, Bookings: make([]BookingSummary, 0, len(bookings))}
	for _, b := range bookings {
		details.Bookings = append(details.Bookings, BookingSummary{
			TicketNumber: b.TicketNumber,
			PhoneNumber:  b.PhoneNumber,
			Seats:        b.Seats,
		})
	}
	return details, nil
}

// GetShow returns a copy of the stored show, including its cancellation
// window and seat map.
func (s *ReservationService) GetShow(showNumber string) (*model.Show, error) {
	lock, ok := s.locks.lookup(showNumber)
	if !ok {
		return nil, ErrShowNotFound
	}
	lock.RLock()
	defer lock.RUnlock()

	show, err := s.shows.GetByNumber(showNumber)
	if err != nil {
		return nil, err
	}
	return show.Clone(), nil
}

// uniqueSeats drops empty and repeated labels, keeping first-seen order.
func uniqueSeats(seats []string) []string {
	out := make([]string, 0, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		seat = strings.TrimSpace(seat)
		if seat == "" {
			continue
		}
		if _, ok := seen[seat]; ok {
			continue
		}
		seen[seat] = struct{}{}
		out = append(out, seat)
	}
	return out
}
