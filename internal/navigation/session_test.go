package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_HappyPath(t *testing.T) {
	s := NewSession("abc")
	assert.Equal(t, ScreenLanding, s.Resolve())

	require.NoError(t, s.GetStarted())
	assert.Equal(t, ScreenAuth, s.Resolve())

	require.NoError(t, s.LoginSucceeded("alice"))
	assert.Equal(t, ScreenWorkspace, s.Resolve())
	assert.True(t, s.LoggedIn)
	assert.Equal(t, "alice", s.Username)

	require.NoError(t, s.Logout())
	assert.Equal(t, ScreenAuth, s.Resolve())
	assert.False(t, s.LoggedIn)
	assert.Empty(t, s.Username)
}

func TestSession_Back(t *testing.T) {
	s := &Session{Screen: ScreenWorkspace, LoggedIn: true, Username: "bob"}
	require.NoError(t, s.Back())
	assert.Equal(t, ScreenLanding, s.Screen)
	assert.True(t, s.LoggedIn)

	s = &Session{Screen: ScreenAuth}
	require.NoError(t, s.Back())
	assert.Equal(t, ScreenLanding, s.Screen)
}

func TestSession_InvalidTransitions(t *testing.T) {
	cases := map[string]struct {
		from Screen
		op   func(*Session) error
	}{
		"get started from auth": {ScreenAuth, (*Session).GetStarted},
		"get started from work": {ScreenWorkspace, (*Session).GetStarted},
		"login from landing":    {ScreenLanding, func(s *Session) error { return s.LoginSucceeded("x") }},
		"login from workspace":  {ScreenWorkspace, func(s *Session) error { return s.LoginSucceeded("x") }},
		"logout from landing":   {ScreenLanding, (*Session).Logout},
		"logout from auth":      {ScreenAuth, (*Session).Logout},
		"back from landing":     {ScreenLanding, (*Session).Back},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := &Session{Screen: tc.from}
			err := tc.op(s)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tc.from, s.Screen)
		})
	}
}

func TestSession_ResolveGuardsWorkspace(t *testing.T) {
	s := &Session{Screen: ScreenWorkspace}
	assert.Equal(t, ScreenAuth, s.Resolve())

	s = &Session{Screen: "bogus"}
	assert.Equal(t, ScreenLanding, s.Resolve())
}
