package model

import (
	"sort"
	"strconv"
)

// Seating grid bounds.  Rows are labelled with a single letter A..Z and
// seats within a row are numbered from 1.
const (
	MaxRows        = 26
	MaxSeatsPerRow = 10
)

// SeatLabel builds the label for a zero-based row index and a one-based
// seat number, e.g. (0, 1) -> "A1" and (1, 10) -> "B10".
func SeatLabel(rowIndex, seatNumber int) string {
	return string(rune('A'+rowIndex)) + strconv.Itoa(seatNumber)
}

// GenerateSeatLabels returns every label of a rows x seatsPerRow grid in
// row-major order.  Non-positive dimensions yield an empty slice.
func GenerateSeatLabels(rows, seatsPerRow int) []string {
	if rows <= 0 || seatsPerRow <= 0 {
		return []string{}
	}
	labels := make([]string, 0, rows*seatsPerRow)
	for r := 0; r < rows; r++ {
		for n := 1; n <= seatsPerRow; n++ {
			labels = append(labels, SeatLabel(r, n))
		}
	}
	return labels
}

// ParseSeatLabel splits a label on the letter/digit boundary.  It reports
// false when the label has no letter prefix or no numeric suffix.
func ParseSeatLabel(label string) (row string, number int, ok bool) {
	i := 0
	for i < len(label) && !isDigit(label[i]) {
		i++
	}
	if i == 0 || i == len(label) {
		return "", 0, false
	}
	n, err := strconv.Atoi(label[i:])
	if err != nil {
		return "", 0, false
	}
	return label[:i], n, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// lessSeat orders labels by row then by numeric seat index, so A2 sorts
// before A10.  Unparseable labels fall back to plain string order after
// the well formed ones.
func lessSeat(a, b string) bool {
	ra, na, okA := ParseSeatLabel(a)
	rb, nb, okB := ParseSeatLabel(b)
	switch {
	case okA && okB:
		if ra != rb {
			return ra < rb
		}
		if na != nb {
			return na < nb
		}
		return a < b
	case okA:
		return true
	case okB:
		return false
	}
	return a < b
}

// SortSeatLabels sorts labels in place in natural seat order.
func SortSeatLabels(labels []string) {
	sort.Slice(labels, func(i, j int) bool { return lessSeat(labels[i], labels[j]) })
}
