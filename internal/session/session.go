// Package session holds the bearer token obtained at login. A Session is
// created explicitly and handed to the API client; there is no process-wide
// token.
package session

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Session stores the current bearer token. The zero value is an
// unauthenticated session. Safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// SetToken replaces the bearer token. An empty token clears the session.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the current token, or "" when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear drops the token. Nothing calls it implicitly.
func (s *Session) Clear() {
	s.SetToken("")
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Subject returns the token's "sub" claim without verifying its signature.
// The portal owns the signing key; the client only reads the claim for display.
func (s *Session) Subject() string {
	token := s.Token()
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
