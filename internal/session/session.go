// Package session carries the admin's credentials into the API client.
//
// A Session is passed explicitly to whatever talks to the API; nothing reads
// tokens from ambient state. Commands that show clinic data call Require
// first, which is the client-side analogue of redirecting to the login page.
package session

import (
	"errors"
	"sync"
)

// ErrNotLoggedIn is returned by Require when no token is available.
var ErrNotLoggedIn = errors.New("not logged in (run `zd login`)")

// Session supplies the bearer token and is told when the server rejects it.
type Session interface {
	Token() string
	OnUnauthenticated()
}

// Require returns ErrNotLoggedIn, after notifying s, when s has no token.
func Require(s Session) error {
	if s == nil {
		return ErrNotLoggedIn
	}
	if s.Token() == "" {
		s.OnUnauthenticated()
		return ErrNotLoggedIn
	}
	return nil
}

// Static is an in-memory Session, used for --token overrides and tests.
type Static struct {
	mu      sync.Mutex
	token   string
	expired int
}

// NewStatic returns a Static session holding token.
func NewStatic(token string) *Static {
	return &Static{token: token}
}

func (s *Static) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// OnUnauthenticated drops the token.
func (s *Static) OnUnauthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expired++
}

// Expirations reports how many times OnUnauthenticated was called.
func (s *Static) Expirations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}
