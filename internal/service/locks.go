package service

import "sync"

// showLocks keeps one RWMutex per show number.  Mutations of a show
// (configure, book, cancel) take the write side; availability and detail
// reads take the read side.  Different shows never contend.
//
// Locks are only created by acquire, which configure uses.  Every other
// operation uses lookup so that requests for unknown shows do not grow
// the map.  Shows are never deleted, so entries are never removed.
type showLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newShowLocks() *showLocks {
	return &showLocks{locks: make(map[string]*sync.RWMutex)}
}

// acquire returns the lock for showNumber, creating it if needed.
func (l *showLocks) acquire(showNumber string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[showNumber]
	if !ok {
		m = &sync.RWMutex{}
		l.locks[showNumber] = m
	}
	return m
}

// lookup returns the lock for showNumber if the show was ever configured.
func (l *showLocks) lookup(showNumber string) (*sync.RWMutex, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[showNumber]
	return m, ok
}
