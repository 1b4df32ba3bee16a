package usecases

import (
	"sync"

	"github.com/lootaura/lootaura/internal/core/domain"
)

// SessionController owns the two shared mutable cells of a browsing
// session: the request sequence counter and the active intent. Every
// state change that should invalidate in-flight requests bumps the
// counter; each dispatched fetch snapshots the post-bump value.
//
// Concurrent requests may touch a session, so a mutex guards both cells
// and Bump performs increment-and-capture in one critical section.
type SessionController struct {
	mu     sync.Mutex
	seq    uint64
	intent domain.Intent
}

// NewSessionController starts at sequence zero with the idle intent.
func NewSessionController() *SessionController {
	return &SessionController{intent: domain.Intent{Kind: domain.IntentIdle}}
}

// Bump increments the sequence counter and returns the new value. The
// caller stamps this value on the fetch it is about to dispatch.
func (s *SessionController) Bump() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Seq returns the counter's current value.
func (s *SessionController) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// SetIntent replaces the active intent. Only explicit user actions
// (typing a ZIP, clicking a cluster, panning) call this.
func (s *SessionController) SetIntent(intent domain.Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent = intent
}

// Intent returns the active intent.
func (s *SessionController) Intent() domain.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intent
}

// isFresh is the sequence gate: a result is fresh unless a newer request
// has advanced the counter past its captured value. Ties admit — the
// incoming result belongs to the request that advanced the counter last.
func isFresh(incoming, current uint64) bool {
	return incoming >= current
}
