package repository

import (
	"fmt"
	"sync"

	"github.com/iliyamo/ticket-reservation/internal/model"
)

// ShowRepo is the show registry.  It exclusively owns Show values keyed
// by show number.  The internal lock only protects the map itself;
// callers that read and then mutate a show's seats must serialise those
// steps per show (the reservation service does this with its per-show
// locks).
type ShowRepo struct {
	mu    sync.RWMutex
	shows map[string]*model.Show
}

// NewShowRepo returns an empty registry.
func NewShowRepo() *ShowRepo {
	return &ShowRepo{shows: make(map[string]*model.Show)}
}

// Configure validates the grid and cancellation window, builds a fresh
// show with every seat available and stores it under showNumber.  An
// existing show with the same number is replaced, not merged.
func (r *ShowRepo) Configure(showNumber string, rows, seatsPerRow, cancelWindowMinutes int) (*model.Show, error) {
	if err := validateConfiguration(rows, seatsPerRow, cancelWindowMinutes); err != nil {
		return nil, err
	}
	show := model.NewShow(showNumber, rows, seatsPerRow, cancelWindowMinutes)
	r.Save(show)
	return show, nil
}

func validateConfiguration(rows, seatsPerRow, cancelWindowMinutes int) error {
	switch {
	case rows < 1 || rows > model.MaxRows:
		return fmt.Errorf("%w: number of rows must be between 1 and %d, got %d", ErrInvalidConfiguration, model.MaxRows, rows)
	case seatsPerRow < 1 || seatsPerRow > model.MaxSeatsPerRow:
		return fmt.Errorf("%w: seats per row must be between 1 and %d, got %d", ErrInvalidConfiguration, model.MaxSeatsPerRow, seatsPerRow)
	case cancelWindowMinutes < 0:
		return fmt.Errorf("%w: cancel window cannot be negative, got %d", ErrInvalidConfiguration, cancelWindowMinutes)
	}
	return nil
}

// Save stores or overwrites a show under its show number.
func (r *ShowRepo) Save(show *model.Show) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows[show.ShowNumber] = show
}

// GetByNumber returns the stored show.  The pointer is the registry's own
// value; use Clone before handing it outside the service.  It returns
// ErrShowNotFound when the show does not exist and never creates one.
func (r *ShowRepo) GetByNumber(showNumber string) (*model.Show, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shows[showNumber]
	if !ok {
		return nil, ErrShowNotFound
	}
	return s, nil
}
