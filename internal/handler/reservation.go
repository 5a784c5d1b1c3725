package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/ticket-reservation/internal/model"
	"github.com/iliyamo/ticket-reservation/internal/queue"
	"github.com/iliyamo/ticket-reservation/internal/service"
)

// ReservationHandler exposes the reservation engine over HTTP.  Buyer
// endpoints (availability, book, cancel) and administrator endpoints
// (setup, view) share it.  After a successful booking or cancellation it
// publishes a lifecycle event; publish failures are logged and never
// change the response.
type ReservationHandler struct {
	Service   *service.ReservationService
	Publisher queue.Publisher
	Log       logrus.FieldLogger
}

// NewReservationHandler constructs the handler.  A nil publisher is
// replaced by a no-op one; the service and logger must be non-nil.
func NewReservationHandler(svc *service.ReservationService, pub queue.Publisher, log logrus.FieldLogger) *ReservationHandler {
	if svc == nil || log == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	if pub == nil {
		pub = queue.NoopPublisher{}
	}
	return &ReservationHandler{Service: svc, Publisher: pub, Log: log}
}

type setupRequest struct {
	ShowNumber            string `json:"showNumber"`
	NumberOfRows          *int   `json:"numberOfRows"`
	SeatsPerRow           *int   `json:"seatsPerRow"`
	CancelWindowInMinutes *int   `json:"cancelWindowInMinutes"`
}

type bookRequest struct {
	PhoneNumber   string   `json:"phoneNumber"`
	SelectedSeats []string `json:"selectedSeats"`
}

type bookingResponse struct {
	TicketNumber string   `json:"ticket_number"`
	PhoneNumber  string   `json:"phone_number"`
	Seats        []string `json:"seats"`
}

type showResponse struct {
	ShowNumber          string          `json:"show_number"`
	NumberOfRows        int             `json:"number_of_rows"`
	SeatsPerRow         int             `json:"seats_per_row"`
	CancelWindowMinutes int             `json:"cancel_window_minutes"`
	Seats               map[string]bool `json:"seats"`
	AvailableSeats      []string        `json:"available_seats"`
}

// Setup handles POST /api/setup.  All four fields are required; the
// numeric bounds are enforced by the service.
func (h *ReservationHandler) Setup(c echo.Context) error {
	var req setupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.ShowNumber = strings.TrimSpace(req.ShowNumber)
	if req.ShowNumber == "" || req.NumberOfRows == nil || req.SeatsPerRow == nil || req.CancelWindowInMinutes == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showNumber, numberOfRows, seatsPerRow and cancelWindowInMinutes are required"})
	}
	if err := h.Service.ConfigureShow(req.ShowNumber, *req.NumberOfRows, *req.SeatsPerRow, *req.CancelWindowInMinutes); err != nil {
		return h.writeError(c, err)
	}
	h.Log.WithFields(logrus.Fields{
		"show_number":   req.ShowNumber,
		"rows":          *req.NumberOfRows,
		"seats_per_row": *req.SeatsPerRow,
		"cancel_window": *req.CancelWindowInMinutes,
	}).Info("show configured")
	return c.JSON(http.StatusCreated, echo.Map{"message": "Show configured successfully."})
}

// Availability handles GET /api/availability/:showNumber.
func (h *ReservationHandler) Availability(c echo.Context) error {
	showNumber := strings.TrimSpace(c.Param("showNumber"))
	seats, err := h.Service.GetAvailableSeats(showNumber)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"show_number": showNumber, "seats": seats})
}

// Book handles POST /api/book/:showNumber.  The phone number and seats are
// read from the query string (selectedSeats may repeat or be comma
// separated) and fall back to a JSON body when the query carries none.
func (h *ReservationHandler) Book(c echo.Context) error {
	showNumber := strings.TrimSpace(c.Param("showNumber"))
	phone := strings.TrimSpace(c.QueryParam("phoneNumber"))
	seats := splitSeats(c.QueryParams()["selectedSeats"])

	if phone == "" || len(seats) == 0 {
		var body bookRequest
		if c.Request().ContentLength != 0 {
			if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
			}
		}
		if phone == "" {
			phone = strings.TrimSpace(body.PhoneNumber)
		}
		if len(seats) == 0 {
			seats = splitSeats(body.SelectedSeats)
		}
	}
	if phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phoneNumber is required"})
	}

	ticket, err := h.Service.BookSeats(showNumber, phone, seats)
	if err != nil {
		return h.writeError(c, err)
	}

	booking := model.Booking{
		TicketNumber: ticket,
		PhoneNumber:  phone,
		ShowNumber:   showNumber,
		Seats:        seats,
	}
	h.publish(c.Request().Context(), queue.BookingConfirmedQueue, booking)
	h.Log.WithFields(logrus.Fields{"show_number": showNumber, "ticket_number": ticket}).Info("seats booked")

	return c.JSON(http.StatusCreated, echo.Map{
		"message":       "Booking successful. Ticket Number: " + ticket,
		"ticket_number": ticket,
	})
}

// Cancel handles DELETE /api/cancel?ticketNumber=..&phoneNumber=..
func (h *ReservationHandler) Cancel(c echo.Context) error {
	ticket := strings.TrimSpace(c.QueryParam("ticketNumber"))
	phone := strings.TrimSpace(c.QueryParam("phoneNumber"))
	if ticket == "" || phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticketNumber and phoneNumber are required"})
	}

	booking, err := h.Service.CancelBooking(ticket, phone)
	if err != nil {
		return h.writeError(c, err)
	}
	h.publish(c.Request().Context(), queue.BookingCancelledQueue, booking)
	h.Log.WithFields(logrus.Fields{"show_number": booking.ShowNumber, "ticket_number": ticket}).Info("booking cancelled")

	return c.JSON(http.StatusOK, echo.Map{"message": "Booking cancelled successfully."})
}

// View handles GET /api/view/:showNumber.
func (h *ReservationHandler) View(c echo.Context) error {
	details, err := h.Service.GetShowDetails(strings.TrimSpace(c.Param("showNumber")))
	if err != nil {
		return h.writeError(c, err)
	}
	bookings := make([]bookingResponse, 0, len(details.Bookings))
	for _, b := range details.Bookings {
		bookings = append(bookings, bookingResponse{
			TicketNumber: b.TicketNumber,
			PhoneNumber:  b.PhoneNumber,
			Seats:        b.Seats,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_number": details.ShowNumber,
		"bookings":    bookings,
		"lines":       details.Lines(),
	})
}

// GetShow handles GET /api/shows/:showNumber.
func (h *ReservationHandler) GetShow(c echo.Context) error {
	show, err := h.Service.GetShow(strings.TrimSpace(c.Param("showNumber")))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, showResponse{
		ShowNumber:          show.ShowNumber,
		NumberOfRows:        show.NumberOfRows,
		SeatsPerRow:         show.SeatsPerRow,
		CancelWindowMinutes: show.CancelWindowMinutes,
		Seats:               show.Seats,
		AvailableSeats:      show.AvailableSeats(),
	})
}

func (h *ReservationHandler) publish(ctx context.Context, eventType string, b model.Booking) {
	ev := queue.NewBookingEvent(eventType, b, time.Now())
	if err := h.Publisher.Publish(ctx, ev); err != nil {
		h.Log.WithError(err).WithFields(logrus.Fields{
			"event_type":    eventType,
			"ticket_number": b.TicketNumber,
		}).Warn("publish booking event failed")
	}
}

// writeError maps service errors onto HTTP statuses.
func (h *ReservationHandler) writeError(c echo.Context, err error) error {
	switch {
	case service.IsValidation(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case service.IsNotFound(err):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case service.IsConflict(err):
		body := echo.Map{"error": err.Error()}
		var unavailable *service.SeatUnavailableError
		if errors.As(err, &unavailable) {
			body["seats"] = unavailable.Seats
		}
		return c.JSON(http.StatusConflict, body)
	}
	h.Log.WithError(err).Error("unexpected reservation error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// splitSeats flattens repeated and comma separated seat values, dropping
// blanks and repeats while keeping first-seen order.
func splitSeats(values []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			label := strings.TrimSpace(part)
			if label == "" {
				continue
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	return out
}
