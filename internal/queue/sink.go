package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Sink stores a consumed booking event.
type Sink interface {
	Write(ctx context.Context, ev BookingEvent) error
}

// FileSink appends one human readable line per event to
// <dir>/booking.log.
type FileSink struct {
	mu  sync.Mutex
	dir string
}

// NewFileSink returns a sink writing under dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Path is the log file the sink appends to.
func (s *FileSink) Path() string { return filepath.Join(s.dir, "booking.log") }

// Write appends the event line, creating the directory and file on first
// use.
func (s *FileSink) Write(_ context.Context, ev BookingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.dir, err)
	}
	f, err := os.OpenFile(s.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEventLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEventLine renders an event as a single log line.
func FormatEventLine(ev BookingEvent) string {
	action := "Booking confirmed"
	if ev.Type == BookingCancelledQueue {
		action = "Booking cancelled"
	}
	return fmt.Sprintf("[%s] %s | ticket=%s | phone=%s | show=%s | seats=[%s] | event_id=%s\n",
		ev.OccurredAt, action, ev.TicketNumber, ev.PhoneNumber, ev.ShowNumber, strings.Join(ev.Seats, ","), ev.EventID)
}

// SQLSink archives events into the booking_audit table.
type SQLSink struct {
	db *sql.DB
}

// NewSQLSink returns a sink bound to db.  Call EnsureSchema once before
// the first Write.
func NewSQLSink(db *sql.DB) *SQLSink {
	return &SQLSink{db: db}
}

const bookingAuditSchema = `CREATE TABLE IF NOT EXISTS booking_audit (
    id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    event_id      CHAR(36)     NOT NULL UNIQUE,
    event_type    VARCHAR(32)  NOT NULL,
    ticket_number VARCHAR(32)  NOT NULL,
    phone_number  VARCHAR(64)  NOT NULL,
    show_number   VARCHAR(128) NOT NULL,
    seats         VARCHAR(1024) NOT NULL,
    occurred_at   DATETIME     NOT NULL,
    created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
    KEY idx_booking_audit_ticket (ticket_number)
)`

// EnsureSchema creates the booking_audit table when missing.
func (s *SQLSink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, bookingAuditSchema)
	return err
}

// Write inserts the event.  Redelivered events are ignored through the
// unique event_id.
func (s *SQLSink) Write(ctx context.Context, ev BookingEvent) error {
	occurred, err := time.Parse(time.RFC3339, ev.OccurredAt)
	if err != nil {
		occurred = time.Now().UTC()
	}
	const q = `INSERT IGNORE INTO booking_audit
               (event_id, event_type, ticket_number, phone_number, show_number, seats, occurred_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		ev.EventID, ev.Type, ev.TicketNumber, ev.PhoneNumber, ev.ShowNumber,
		strings.Join(ev.Seats, ","), occurred.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("insert booking_audit: %w", err)
	}
	return nil
}

// MultiSink writes to every sink and joins their errors.
type MultiSink []Sink

// Write fans the event out to all sinks.
func (m MultiSink) Write(ctx context.Context, ev BookingEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
