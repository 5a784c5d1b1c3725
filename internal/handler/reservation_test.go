package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-reservation/internal/queue"
	"github.com/iliyamo/ticket-reservation/internal/repository"
	"github.com/iliyamo/ticket-reservation/internal/service"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	e    *echo.Echo
	pub  *fakePublisher
	hook *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, hook := test.NewNullLogger()
	svc := service.NewReservationService(repository.NewShowRepo(), repository.NewBookingRepo())
	pub := &fakePublisher{}
	h := NewReservationHandler(svc, pub, log)

	e := echo.New()
	e.GET("/healthz", Health)
	g := e.Group("/api")
	g.POST("/setup", h.Setup)
	g.GET("/view/:showNumber", h.View)
	g.GET("/shows/:showNumber", h.GetShow)
	g.GET("/availability/:showNumber", h.Availability)
	g.POST("/book/:showNumber", h.Book)
	g.DELETE("/cancel", h.Cancel)
	return &fixture{e: e, pub: pub, hook: hook}
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) setup(t *testing.T, show string, rows, seats, window int) {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"showNumber":            show,
		"numberOfRows":          rows,
		"seatsPerRow":           seats,
		"cancelWindowInMinutes": window,
	})
	require.NoError(t, err)
	rec := f.do(http.MethodPost, "/api/setup", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSetup(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/setup", `{"showNumber":"S1","numberOfRows":2,"seatsPerRow":2,"cancelWindowInMinutes":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Show configured successfully.", decode(t, rec)["message"])

	rec = f.do(http.MethodPost, "/api/setup", `{"showNumber":"S2","numberOfRows":27,"seatsPerRow":2,"cancelWindowInMinutes":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/setup", `{"showNumber":"S3","numberOfRows":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/setup", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailability(t *testing.T) {
	f := newFixture(t)
	f.setup(t, "S1", 1, 3, 2)

	rec := f.do(http.MethodGet, "/api/availability/S1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "S1", body["show_number"])
	assert.Equal(t, []any{"A1", "A2", "A3"}, body["seats"])

	rec = f.do(http.MethodGet, "/api/availability/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBook_QueryParams(t *testing.T) {
	f := newFixture(t)
	f.setup(t, "S1", 2, 2, 2)

	rec := f.do(http.MethodPost, "/api/book/S1?phoneNumber=0411&selectedSeats=A1,B2&selectedSeats=A1", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "TK000001", body["ticket_number"])
	assert.Equal(t, "Booking successful. Ticket Number: TK000001", body["message"])

	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, queue.BookingConfirmedQueue, ev.Type)
	assert.Equal(t, "TK000001", ev.TicketNumber)
	assert.Equal(t, "S1", ev.ShowNumber)
	assert.Equal(t, []string{"A1", "B2"}, ev.Seats)

	rec = f.do(http.MethodGet, "/api/availability/S1", "")
	assert.Equal(t, []any{"A2", "B1"}, decode(t, rec)["seats"])
}

func TestBook_JSONBodyFallback(t *testing.T) {
	f := newFixture(t)
	f.setup(t, "S1", 1, 2, 2)

	rec := f.do(http.MethodPost, "/api/book/S1", `{"phoneNumber":"0422","selectedSeats":["A2"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "TK000001", decode(t, rec)["ticket_number"])
}

func TestBook_Errors(t *testing.T) {
	f := newFixture(t)
	f.setup(t, "S1", 1, 2, 2)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/book/S1?phoneNumber=1&selectedSeats=A1", "").Code)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing phone", "/api/book/S1?selectedSeats=A2", http.StatusBadRequest},
		{"no seats", "/api/book/S1?phoneNumber=2", http.StatusBadRequest},
		{"unknown show", "/api/book/S9?phoneNumber=2&selectedSeats=A1", http.StatusNotFound},
		{"duplicate phone", "/api/book/S1?phoneNumber=1&selectedSeats=A2", http.StatusConflict},
		{"seat taken", "/api/book/S1?phoneNumber=2&selectedSeats=A1,A2", http.StatusConflict},
		{"unknown seat", "/api/book/S1?phoneNumber=2&selectedSeats=Z9", http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, tt.target, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
	assert.Len(t, f.pub.events, 1)
}

func TestBook_SeatUnavailableListsSeats(t *testing.T) {
	f := newFixture(t)
	f.setup(t, "S1", 1, 2, 2)
	f.do(http.MethodPost, "/api/book/S1?phoneNumber=1&selectedSeats=A1", "")

	rec := f.do(http.MethodPost, "/api/book/S1?phoneNumber=2&selectedSeats=A2,A1", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, []any{"A1"}, decode(t, rec)["seats"])
}

func TestBook_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	f.setup(t, "S1", 1, 1, 2)

	rec := f.do(http.MethodPost, "/api/book/S1?phoneNumber=1&selectedSeats=A1", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	var warned bool
	for _, entry := range f.hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "publish booking event failed" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	f.setup(t, "S1", 1, 2, 2)
	f.do(http.MethodPost, "/api/book/S1?phoneNumber=1&selectedSeats=A1,A2", "")

	rec := f.do(http.MethodDelete, "/api/cancel?ticketNumber=TK000001", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodDelete, "/api/cancel?ticketNumber=TK000001&phoneNumber=2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, "/api/cancel?ticketNumber=TK000001&phoneNumber=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Booking cancelled successfully.", decode(t, rec)["message"])

	require.Len(t, f.pub.events, 2)
	ev := f.pub.events[1]
	assert.Equal(t, queue.BookingCancelledQueue, ev.Type)
	assert.Equal(t, []string{"A1", "A2"}, ev.Seats)

	rec = f.do(http.MethodDelete, "/api/cancel?ticketNumber=TK000001&phoneNumber=1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/availability/S1", "")
	assert.Equal(t, []any{"A1", "A2"}, decode(t, rec)["seats"])
}

func TestView(t *testing.T) {
	f := newFixture(t)
	f.setup(t, "S1", 1, 3, 2)

	rec := f.do(http.MethodGet, "/api/view/S1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.do(http.MethodPost, "/api/book/S1?phoneNumber=1&selectedSeats=A1", "")
	rec = f.do(http.MethodGet, "/api/view/S1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "S1", body["show_number"])
	assert.Equal(t, []any{
		"Show Number: S1",
		"Ticket Number: TK000001, Phone Number: 1, Seats: A1",
	}, body["lines"])
	bookings, ok := body["bookings"].([]any)
	require.True(t, ok)
	require.Len(t, bookings, 1)
	assert.Equal(t, map[string]any{
		"ticket_number": "TK000001",
		"phone_number":  "1",
		"seats":         []any{"A1"},
	}, bookings[0])

	rec = f.do(http.MethodGet, "/api/view/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetShow(t *testing.T) {
	f := newFixture(t)
	f.setup(t, "S1", 1, 2, 5)
	f.do(http.MethodPost, "/api/book/S1?phoneNumber=1&selectedSeats=A2", "")

	rec := f.do(http.MethodGet, "/api/shows/S1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["number_of_rows"])
	assert.Equal(t, float64(2), body["seats_per_row"])
	assert.Equal(t, float64(5), body["cancel_window_minutes"])
	assert.Equal(t, map[string]any{"A1": true, "A2": false}, body["seats"])
	assert.Equal(t, []any{"A1"}, body["available_seats"])

	rec = f.do(http.MethodGet, "/api/shows/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSplitSeats(t *testing.T) {
	assert.Nil(t, splitSeats(nil))
	assert.Equal(t, []string{"A1", "B2", "C3"}, splitSeats([]string{" A1, B2", "A1", ",C3,"}))
}

func TestNewReservationHandler_NilPublisher(t *testing.T) {
	log, _ := test.NewNullLogger()
	svc := service.NewReservationService(repository.NewShowRepo(), repository.NewBookingRepo())
	h := NewReservationHandler(svc, nil, log)
	assert.IsType(t, queue.NoopPublisher{}, h.Publisher)
	assert.Panics(t, func() { NewReservationHandler(nil, nil, log) })
}
