// Package navigation holds the per-visitor screen state machine:
// landing -> auth -> workspace, with back and logout edges.
package navigation

import (
	"errors"
	"fmt"
)

type Screen string

const (
	ScreenLanding   Screen = "landing"
	ScreenAuth      Screen = "auth"
	ScreenWorkspace Screen = "workspace"
)

var ErrInvalidTransition = errors.New("invalid screen transition")

// Session is the navigation state of one browser session.
type Session struct {
	ID       string `json:"id"`
	Screen   Screen `json:"screen"`
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
}

// NewSession starts a visitor on the landing screen, logged out.
func NewSession(id string) *Session {
	return &Session{ID: id, Screen: ScreenLanding}
}

func (s *Session) GetStarted() error {
	if s.Screen != ScreenLanding {
		return s.invalid("get started")
	}
	s.Screen = ScreenAuth
	return nil
}

func (s *Session) LoginSucceeded(username string) error {
	if s.Screen != ScreenAuth {
		return s.invalid("login")
	}
	s.Screen = ScreenWorkspace
	s.LoggedIn = true
	s.Username = username
	return nil
}

func (s *Session) Logout() error {
	if s.Screen != ScreenWorkspace {
		return s.invalid("logout")
	}
	s.Screen = ScreenAuth
	s.LoggedIn = false
	s.Username = ""
	return nil
}

// Back returns to landing without touching the login state.
func (s *Session) Back() error {
	if s.Screen != ScreenAuth && s.Screen != ScreenWorkspace {
		return s.invalid("back")
	}
	s.Screen = ScreenLanding
	return nil
}

// Resolve returns the screen to render. A workspace request without a login
// is redirected to auth.
func (s *Session) Resolve() Screen {
	switch s.Screen {
	case ScreenAuth, ScreenWorkspace:
	default:
		s.Screen = ScreenLanding
	}
	if s.Screen == ScreenWorkspace && !s.LoggedIn {
		s.Screen = ScreenAuth
	}
	return s.Screen
}

func (s *Session) invalid(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, s.Screen)
}
