package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-reservation/internal/repository"
	"github.com/iliyamo/ticket-reservation/internal/service"
)

func runScript(t *testing.T, lines ...string) (string, string) {
	t.Helper()
	svc := service.NewReservationService(repository.NewShowRepo(), repository.NewBookingRepo())
	var out, errOut bytes.Buffer
	sh := NewShell(svc, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, &errOut)
	sh.now = func() time.Time { return time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC) }
	require.NoError(t, sh.Run())
	return out.String(), errOut.String()
}

func TestShell_AdminAndBuyerSession(t *testing.T) {
	out, errOut := runScript(t,
		"1",
		"setup SH1 2 3 5",
		"back",
		"2",
		"availability SH1",
		"book SH1 0411 A1,B2",
		"availability SH1",
		"cancel tk000001 0411",
		"back",
		"1",
		"view SH1",
		"back",
		"3",
	)

	assert.Contains(t, out, "Show configured successfully.")
	assert.Contains(t, out, "Available seats: A1, A2, A3, B1, B2, B3")
	assert.Contains(t, out, "Booking successful. Ticket Number: TK000001")
	assert.Contains(t, out, "Booking Creation Time: 2026-05-01 18:30:00")
	assert.Contains(t, out, "Reminder: Cancellation is allowed 5 minutes only after booking.")
	assert.Contains(t, out, "Available seats: A2, A3, B1, B3")
	assert.Contains(t, out, "Booking cancelled successfully.")
	assert.Contains(t, out, "Exiting program.")
	// the cancelled booking leaves the show without bookings
	assert.Contains(t, errOut, "Error processing command: no bookings found for show SH1")
}

func TestShell_ViewListsBookings(t *testing.T) {
	out, errOut := runScript(t,
		"1", "setup SH1 1 2 5", "back",
		"2", "book SH1 0411 A2", "back",
		"1", "view SH1", "back",
		"3",
	)
	assert.Empty(t, errOut)
	assert.Contains(t, out, "Show Number: SH1\nTicket Number: TK000001, Phone Number: 0411, Seats: A2\n")
}

func TestShell_Errors(t *testing.T) {
	_, errOut := runScript(t,
		"9",
		"1",
		"setup SH1 2",
		"setup SH1 two 3 5",
		"setup SH1 27 3 5",
		"delete SH1",
		"back",
		"2",
		"availability NOPE",
		"book SH1 0411",
		"cancel TK999999 0411",
		"refund",
		"back",
		"3",
	)

	for _, want := range []string{
		"Invalid choice. Please enter 1, 2, or 3.",
		"Invalid 'setup' command format.",
		`Error processing command: invalid number "two"`,
		"Error processing command: invalid show configuration",
		"Invalid command for admin.",
		"Error processing command: show not found",
		"Invalid 'book' command format.",
		"Error processing command: booking not found",
		"Invalid command for buyer.",
	} {
		assert.Contains(t, errOut, want)
	}
}

func TestShell_EndOfInputExits(t *testing.T) {
	svc := service.NewReservationService(repository.NewShowRepo(), repository.NewBookingRepo())
	var out, errOut bytes.Buffer
	err := NewShell(svc, strings.NewReader("2\navailability X\n"), &out, &errOut).Run()
	assert.NoError(t, err)
	assert.NotContains(t, out.String(), "Exiting program.")
}
