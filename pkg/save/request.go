package save

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Request asks for one save to a location.
type Request struct {
	ID       uuid.UUID
	Location string
	Received time.Time
}

// NewRequest returns a request for location with a fresh ID.
func NewRequest(location string) Request {
	return Request{ID: uuid.New(), Location: location, Received: time.Now()}
}

// Slot holds at most one pending request. Putting a request while another is
// pending replaces it; only the newest location is ever saved.
type Slot struct {
	mu      sync.Mutex
	pending *Request
	ready   chan struct{}
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{ready: make(chan struct{}, 1)}
}

// Put stores r and returns the request it replaced, if any.
func (s *Slot) Put(r Request) (Request, bool) {
	s.mu.Lock()
	prev := s.pending
	s.pending = &r
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	if prev == nil {
		return Request{}, false
	}
	return *prev, true
}

// Take empties the slot and returns what it held.
func (s *Slot) Take() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Request{}, false
	}
	r := *s.pending
	s.pending = nil
	return r, true
}

// Peek returns the pending request without removing it.
func (s *Slot) Peek() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Request{}, false
	}
	return *s.pending, true
}

// Pending reports whether a request is waiting.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Ready is signalled after Put. A signal may be stale; Take decides.
func (s *Slot) Ready() <-chan struct{} { return s.ready }
