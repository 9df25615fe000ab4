// Package service creates portal users.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"simohu/internal/platform/logger"
	"simohu/internal/platform/metrics"
	"simohu/internal/user/models"
)

const (
	createPath      = "/usuarioportal"
	operationCreate = "user.create"
)

// API is the subset of the portal client used here.
type API interface {
	Post(ctx context.Context, operation, path string, body, out any) error
}

// Service submits user-creation requests. It never retries.
type Service struct {
	api     API
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

// New constructs a Service.
func New(api API, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, errors.New("api client is required")
	}
	s := &Service{api: api, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create posts req once and returns the created record.
func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.CreateUserResponse, error) {
	var raw json.RawMessage
	if err := s.api.Post(ctx, operationCreate, createPath, req, &raw); err != nil {
		s.logger.InfoContext(ctx, "user creation failed", "error", err)
		return nil, err
	}
	s.metrics.IncrementUsersCreated()
	resp := &models.CreateUserResponse{Raw: raw}
	s.logger.InfoContext(ctx, "user created", "user_id", resp.ID())
	return resp, nil
}
