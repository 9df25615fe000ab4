// Package service fronts the postal-code lookup upstream with an optional
// cache and records lookup outcomes.
package service

import (
	"context"
	"errors"
	"log/slog"

	"simohu/internal/address/models"
	"simohu/internal/platform/httperr"
	"simohu/internal/platform/logger"
	"simohu/internal/platform/metrics"
	"simohu/pkg/format"
	"simohu/pkg/platform/circuit"
	"simohu/pkg/platform/sentinel"
)

// ErrCircuitOpen is the cause of lookups refused while the breaker is open.
var ErrCircuitOpen = errors.New("postal-code lookup circuit open")

// Upstream resolves a postal code. (nil, nil) means no record.
type Upstream interface {
	Lookup(ctx context.Context, cep string) (*models.Address, error)
}

// Cache stores found addresses. FindAddress returns sentinel.ErrNotFound on a miss.
type Cache interface {
	FindAddress(ctx context.Context, postalCode string) (*models.Address, error)
	SaveAddress(ctx context.Context, address *models.Address) error
}

// Service resolves postal codes, consulting the cache first when one is set.
type Service struct {
	upstream Upstream
	cache    Cache
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithBreaker guards upstream calls. While the breaker is open, cache misses
// fail fast with an httperr.CodeOpen error.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

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
func New(upstream Upstream, opts ...Option) (*Service, error) {
	if upstream == nil {
		return nil, errors.New("upstream lookup is required")
	}
	s := &Service{upstream: upstream, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Lookup returns the address for cep, or (nil, nil) when there is none.
// Cache failures never fail the lookup.
func (s *Service) Lookup(ctx context.Context, cep string) (*models.Address, error) {
	digits := format.OnlyDigits(cep)
	if len(digits) != format.CEPDigits {
		return nil, nil
	}

	if s.cache != nil {
		cached, err := s.cache.FindAddress(ctx, digits)
		switch {
		case err == nil:
			s.metrics.IncrementLookupCacheHits()
			s.metrics.IncrementLookups("found")
			return cached, nil
		case !errors.Is(err, sentinel.ErrNotFound):
			s.logger.WarnContext(ctx, "address cache read failed", "postal_code", digits, "error", err)
		}
	}

	if s.breaker != nil && !s.breaker.Allow() {
		s.metrics.IncrementLookups("error")
		return nil, httperr.Unavailable(ErrCircuitOpen)
	}

	address, err := s.upstream.Lookup(ctx, digits)
	if err != nil {
		s.metrics.IncrementLookups("error")
		if ctx.Err() == nil {
			s.recordFailure(ctx, err)
		}
		return nil, err
	}
	s.recordSuccess(ctx)
	if address == nil {
		s.metrics.IncrementLookups("not_found")
		return nil, nil
	}
	s.metrics.IncrementLookups("found")

	if s.cache != nil {
		if err := s.cache.SaveAddress(ctx, address); err != nil {
			s.logger.WarnContext(ctx, "address cache write failed", "postal_code", digits, "error", err)
		}
	}
	return address, nil
}

func (s *Service) recordFailure(ctx context.Context, err error) {
	if s.breaker == nil {
		return
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.metrics.SetLookupCircuitOpen(true)
		s.logger.WarnContext(ctx, "postal-code lookup circuit opened", "breaker", s.breaker.Name(), "error", err)
	}
}

func (s *Service) recordSuccess(ctx context.Context) {
	if s.breaker == nil {
		return
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.metrics.SetLookupCircuitOpen(false)
		s.logger.InfoContext(ctx, "postal-code lookup circuit closed", "breaker", s.breaker.Name())
	}
}
