// Package service authenticates against the portal and stores the resulting
// bearer token in the caller's session.
package service

import (
	"context"
	"errors"
	"log/slog"

	"simohu/internal/auth/models"
	"simohu/internal/platform/logger"
	"simohu/internal/platform/metrics"
	"simohu/internal/session"
)

const (
	loginPath      = "/auth/login"
	operationLogin = "auth.login"
)

// API is the subset of the portal client used for login.
type API interface {
	Post(ctx context.Context, operation, path string, body, out any) error
}

// Service performs portal logins.
type Service struct {
	api     API
	session *session.Session
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. The session receives the token on success.
func New(api API, sess *session.Session, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, errors.New("api client is required")
	}
	if sess == nil {
		return nil, errors.New("session is required")
	}
	s := &Service{api: api, session: sess, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login validates req, posts it and, when the response carries a token,
// stores it in the session. A response without a token leaves the session
// unchanged. Validation failures are returned without calling the portal.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := s.api.Post(ctx, operationLogin, loginPath, req, &resp); err != nil {
		s.metrics.IncrementLogins(req.Tipo.String(), "failure")
		s.logger.InfoContext(ctx, "login failed", "account_type", req.Tipo.String(), "error", err)
		return nil, err
	}

	if resp.Token != "" {
		s.session.SetToken(resp.Token)
	}
	s.metrics.IncrementLogins(req.Tipo.String(), "success")
	s.logger.InfoContext(ctx, "login succeeded",
		"account_type", req.Tipo.String(), "token_received", resp.Token != "")
	return &resp, nil
}

// Logout clears the session token.
func (s *Service) Logout() {
	s.session.Clear()
}
