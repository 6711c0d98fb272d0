package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg carries the id of the frame request it was issued for. A tick
// whose id is no longer pending is stale and does nothing.
type frameMsg struct {
	id uint64
}

// Scheduler adapts the driver's frame requests to bubbletea ticks. The driver
// runs inside Update, so callbacks fire on the program's event loop.
type Scheduler struct {
	interval time.Duration

	mu      sync.Mutex
	fn      func()
	pending uint64 // id of the request waiting for a tick, 0 if none
	issued  uint64 // id of the last tick handed to bubbletea
	nextID  uint64
}

// NewScheduler ticks fps times per second.
func NewScheduler(fps int) *Scheduler {
	if fps <= 0 {
		fps = 30
	}
	return &Scheduler{interval: time.Second / time.Duration(fps)}
}

func (s *Scheduler) RequestFrame(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.fn = fn
	s.pending = id
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pending == id {
			s.fn = nil
			s.pending = 0
		}
	}
}

// Cmd returns a tick for the pending request, or nil when nothing is pending
// or a tick for it is already in flight.
func (s *Scheduler) Cmd() tea.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == 0 || s.pending == s.issued {
		return nil
	}
	id := s.pending
	s.issued = id
	return tea.Tick(s.interval, func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

// fire runs the callback for id if it is still the pending request.
func (s *Scheduler) fire(id uint64) bool {
	s.mu.Lock()
	if id == 0 || id != s.pending {
		s.mu.Unlock()
		return false
	}
	fn := s.fn
	s.fn = nil
	s.pending = 0
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}
