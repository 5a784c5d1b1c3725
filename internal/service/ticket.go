package service

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// TicketIssuer hands out ticket numbers.  Next is called exactly once per
// successful booking and must never return the same value twice.
type TicketIssuer interface {
	Next() string
}

const (
	ticketPrefix = "TK"
	ticketWidth  = 6
)

// CounterIssuer renders a process-wide counter as a prefixed base-36
// ticket number.  The first ticket is TK000001.
type CounterIssuer struct {
	prefix string
	width  int
	last   atomic.Uint64
}

// NewTicketIssuer returns an issuer whose first ticket is TK000001.
func NewTicketIssuer() *CounterIssuer {
	return NewTicketIssuerFrom(1)
}

// NewTicketIssuerFrom returns an issuer whose first ticket renders start.
// A zero start is treated as 1.
func NewTicketIssuerFrom(start uint64) *CounterIssuer {
	if start == 0 {
		start = 1
	}
	ci := &CounterIssuer{prefix: ticketPrefix, width: ticketWidth}
	ci.last.Store(start - 1)
	return ci
}

// Next increments the counter and formats the new value.
func (ci *CounterIssuer) Next() string {
	return FormatTicketNumber(ci.prefix, ci.last.Add(1), ci.width)
}

// FormatTicketNumber renders n in upper-case base 36 behind prefix,
// left-padded with '0' to at least width characters.
func FormatTicketNumber(prefix string, n uint64, width int) string {
	digits := strings.ToUpper(strconv.FormatUint(n, 36))
	if pad := width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return prefix + digits
}

// Clock is the business-time source used for booking timestamps and the
// cancellation window check.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
