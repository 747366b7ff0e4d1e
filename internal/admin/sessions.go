package admin

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownSession = errors.New("unknown admin session")

type session struct {
	gate     *Gate
	openedAt time.Time
}

// Sessions maps opaque session ids to gates. Opening the admin view creates
// a session with a fresh gate; dismissing it drops the session.
type Sessions struct {
	mu          sync.Mutex
	sessions    map[string]*session
	secret      string
	maxAttempts int
	now         func() time.Time
}

func NewSessions(secret string, maxAttempts int) *Sessions {
	return &Sessions{
		sessions:    make(map[string]*session),
		secret:      secret,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Open starts a new locked session and returns its id and gate
func (s *Sessions) Open() (string, *Gate) {
	id := uuid.New().String()
	g := NewGate(s.secret, s.maxAttempts)
	s.mu.Lock()
	s.sessions[id] = &session{gate: g, openedAt: s.now()}
	s.mu.Unlock()
	return id, g
}

func (s *Sessions) Get(id string) (*Gate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return sess.gate, nil
}

// Unlocked reports whether id names a session whose gate is open
func (s *Sessions) Unlocked(id string) bool {
	g, err := s.Get(id)
	if err != nil {
		return false
	}
	return g.State() == Unlocked
}

// Close dismisses a session. Closing an unknown id is not an error.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Purge drops sessions opened more than maxAge ago
func (s *Sessions) Purge(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.openedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
