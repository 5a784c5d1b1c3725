// Package queue defines the booking lifecycle events exchanged over
// RabbitMQ together with their publisher, consumer and audit sinks.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/ticket-reservation/internal/model"
)

// Queue names double as event types.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingEvent is published after a booking is created or cancelled.  It
// carries enough information for downstream consumers to log, notify or
// audit without calling back into the service.
type BookingEvent struct {
	EventID      string   `json:"event_id"`
	Type         string   `json:"type"`
	TicketNumber string   `json:"ticket_number"`
	PhoneNumber  string   `json:"phone_number"`
	ShowNumber   string   `json:"show_number"`
	Seats        []string `json:"seats"`
	OccurredAt   string   `json:"occurred_at"`
}

// NewBookingEvent builds an event of the given type for a booking.
func NewBookingEvent(eventType string, b model.Booking, at time.Time) BookingEvent {
	seats := make([]string, len(b.Seats))
	copy(seats, b.Seats)
	return BookingEvent{
		EventID:      uuid.NewString(),
		Type:         eventType,
		TicketNumber: b.TicketNumber,
		PhoneNumber:  b.PhoneNumber,
		ShowNumber:   b.ShowNumber,
		Seats:        seats,
		OccurredAt:   at.UTC().Format(time.RFC3339),
	}
}
