// Package admin implements the PIN gate in front of the editing surface.
//
// The gate is a convenience lock for a shared department screen. It is not
// an access control boundary and must not be used as one.
package admin

import (
	"errors"
	"fmt"
	"sync"
)

const MinPINLength = 4

// State is the gate's lock state
type State string

const (
	Locked   State = "locked"
	Unlocked State = "unlocked"
)

var (
	ErrLockedOut   = errors.New("too many failed attempts")
	ErrPINTooShort = fmt.Errorf("PIN must be at least %d characters", MinPINLength)
)

// ErrInvalidPIN is returned for a wrong PIN
type ErrInvalidPIN struct {
	Remaining int
}

func (e *ErrInvalidPIN) Error() string {
	return fmt.Sprintf("incorrect PIN, %d attempts remaining", e.Remaining)
}

// Gate counts PIN submissions against a fixed secret
type Gate struct {
	mu          sync.Mutex
	secret      string
	maxAttempts int
	attempts    int
	state       State
}

func NewGate(secret string, maxAttempts int) *Gate {
	return &Gate{secret: secret, maxAttempts: maxAttempts, state: Locked}
}

// Submit tries pin. Once the attempt ceiling is reached every submission
// fails with ErrLockedOut, even the correct PIN, until Reset.
func (g *Gate) Submit(pin string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Unlocked {
		return nil
	}
	if g.attempts >= g.maxAttempts {
		return ErrLockedOut
	}
	if len(pin) < MinPINLength {
		return ErrPINTooShort
	}
	if pin == g.secret {
		g.state = Unlocked
		return nil
	}
	g.attempts++
	return &ErrInvalidPIN{Remaining: g.maxAttempts - g.attempts}
}

// Reset returns the gate to a fresh locked state
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts = 0
	g.state = Locked
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Remaining returns how many wrong submissions are left
func (g *Gate) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r := g.maxAttempts - g.attempts; r > 0 {
		return r
	}
	return 0
}

// LockedOut reports whether the attempt ceiling has been reached
func (g *Gate) LockedOut() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == Locked && g.attempts >= g.maxAttempts
}
