// Package session holds the per-browser interaction state: the selected mode
// and whether the teacher password check has passed. The state is an explicit
// object passed through the request, never a package global.
package session

import (
	"context"
	"fmt"
)

// Mode selects which pipeline the interface runs.
type Mode string

const (
	ModeStudent Mode = "student"
	ModeTeacher Mode = "teacher"
)

// ParseMode validates a submitted mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStudent, ModeTeacher:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// State is the two-field session context. Transition rules: switching to
// student mode always clears Authenticated; switching to teacher mode
// preserves it.
type State struct {
	Mode          Mode `json:"mode"`
	Authenticated bool `json:"authenticated"`
}

// Default is the state of a fresh session.
func Default() State {
	return State{Mode: ModeStudent, Authenticated: false}
}

// WithMode returns the state after a mode switch, applying the transition rules.
func (s State) WithMode(m Mode) State {
	s.Mode = m
	if m == ModeStudent {
		s.Authenticated = false
	}
	return s
}

// WithAuthenticated returns the state with the password-check flag set.
func (s State) WithAuthenticated(ok bool) State {
	s.Authenticated = ok
	return s
}

// CanViewDashboard reports whether the dashboard pipeline is reachable.
func (s State) CanViewDashboard() bool {
	return s.Mode == ModeTeacher && s.Authenticated
}

// Store is the abstraction over session state backends.
type Store interface {
	// Get loads a session state; the bool is false for unknown or expired ids.
	Get(ctx context.Context, id string) (State, bool, error)
	// Put saves a session state under id.
	Put(ctx context.Context, id string, st State) error
	// Healthy reports whether the backend can currently serve sessions.
	Healthy(ctx context.Context) bool
}
