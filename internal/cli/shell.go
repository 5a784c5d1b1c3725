// Package cli is the interactive admin/buyer console over the reservation
// service.  It reads one command per line and writes results to out and
// failures to errOut.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/ticket-reservation/internal/service"
)

const timeLayout = "2006-01-02 15:04:05"

// Shell runs the menu loop.
type Shell struct {
	svc    *service.ReservationService
	in     *bufio.Scanner
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

// NewShell wires a shell to the service and the given streams.  The
// service must be non-nil.
func NewShell(svc *service.ReservationService, in io.Reader, out, errOut io.Writer) *Shell {
	if svc == nil {
		panic("nil service passed to NewShell")
	}
	return &Shell{svc: svc, in: bufio.NewScanner(in), out: out, errOut: errOut, now: time.Now}
}

// Run shows the main menu until the user exits or input ends.
func (s *Shell) Run() error {
	for {
		s.println("\nWelcome to the Ticket Reservation System")
		s.println("=== Main Menu ===")
		s.println("1 Admin")
		s.println("2 Buyer")
		s.println("3 Exit")
		fmt.Fprint(s.out, "Enter menu selection: ")

		choice, ok := s.readLine()
		if !ok {
			return s.in.Err()
		}
		switch choice {
		case "1":
			if !s.menu(adminHelp, s.admin) {
				return s.in.Err()
			}
		case "2":
			if !s.menu(buyerHelp, s.buyer) {
				return s.in.Err()
			}
		case "3":
			s.println("Exiting program.")
			return nil
		default:
			s.fail("Invalid choice. Please enter 1, 2, or 3.")
		}
	}
}

var adminHelp = []string{
	"\n--- Admin Mode ---",
	"Available commands:",
	"setup <showNumber> <numberOfRows> <seatsPerRow> <cancelWindowInMinutes>",
	"view <showNumber>",
	"'back' to return to main menu.",
}

var buyerHelp = []string{
	"\n--- Buyer Mode ---",
	"Available commands:",
	"availability <showNumber>",
	"book <showNumber> <phoneNumber> <commaSeparatedSelectedSeats>",
	"cancel <ticketNumber> <phoneNumber>",
	"'back' to return to main menu.",
}

// menu runs a sub-menu and reports false when input ended inside it.
func (s *Shell) menu(help []string, handle func([]string)) bool {
	for _, l := range help {
		s.println(l)
	}
	for {
		s.println("Enter command: ")
		line, ok := s.readLine()
		if !ok {
			return false
		}
		if strings.EqualFold(line, "back") {
			return true
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		handle(parts)
	}
}

func (s *Shell) admin(parts []string) {
	switch strings.ToLower(parts[0]) {
	case "setup":
		if len(parts) != 5 {
			s.fail("Invalid 'setup' command format. Expected format: setup <showNumber> <numberOfRows> <seatsPerRow> <cancelWindowInMinutes>")
			return
		}
		nums, err := atois(parts[2:])
		if err != nil {
			s.failErr(err)
			return
		}
		if err := s.svc.ConfigureShow(parts[1], nums[0], nums[1], nums[2]); err != nil {
			s.failErr(err)
			return
		}
		s.println("Show configured successfully.")
	case "view":
		if len(parts) != 2 {
			s.fail("Invalid 'view' command format. Expected format: view <showNumber>")
			return
		}
		details, err := s.svc.GetShowDetails(parts[1])
		if err != nil {
			s.failErr(err)
			return
		}
		for _, l := range details.Lines() {
			s.println(l)
		}
	default:
		s.fail("Invalid command for admin. Available commands are 'setup' and 'view'.")
	}
}

func (s *Shell) buyer(parts []string) {
	switch strings.ToLower(parts[0]) {
	case "availability":
		if len(parts) != 2 {
			s.fail("Invalid 'availability' command format. Expected format: availability <showNumber>")
			return
		}
		seats, err := s.svc.GetAvailableSeats(parts[1])
		if err != nil {
			s.failErr(err)
			return
		}
		s.println("Available seats: " + strings.Join(seats, ", "))
	case "book":
		if len(parts) != 4 {
			s.fail("Invalid 'book' command format. Expected format: book <showNumber> <phoneNumber> <commaSeparatedSelectedSeats>")
			return
		}
		ticket, err := s.svc.BookSeats(parts[1], parts[2], strings.Split(parts[3], ","))
		if err != nil {
			s.failErr(err)
			return
		}
		window := 0
		if show, err := s.svc.GetShow(parts[1]); err == nil {
			window = show.CancelWindowMinutes
		}
		s.println("Booking successful. Ticket Number: " + ticket)
		s.println("Booking Creation Time: " + s.now().Format(timeLayout))
		s.println(fmt.Sprintf("Reminder: Cancellation is allowed %d minutes only after booking.", window))
	case "cancel":
		if len(parts) != 3 {
			s.fail("Invalid 'cancel' command format. Expected format: cancel <ticketNumber> <phoneNumber>")
			return
		}
		if _, err := s.svc.CancelBooking(strings.ToUpper(parts[1]), parts[2]); err != nil {
			s.failErr(err)
			return
		}
		s.println("Booking cancelled successfully.")
	default:
		s.fail("Invalid command for buyer. Available commands are 'availability', 'book', and 'cancel'.")
	}
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) println(line string) { fmt.Fprintln(s.out, line) }

func (s *Shell) fail(msg string) { fmt.Fprintln(s.errOut, msg) }

func (s *Shell) failErr(err error) { s.fail("Error processing command: " + err.Error()) }

func atois(values []string) ([]int, error) {
	out := make([]int, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		out = append(out, n)
	}
	return out, nil
}
