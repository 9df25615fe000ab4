package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	addressservice "simohu/internal/address/service"
	addressstore "simohu/internal/address/store"
	"simohu/internal/address/viacep"
	authservice "simohu/internal/auth/service"
	"simohu/internal/platform/apiclient"
	"simohu/internal/platform/config"
	"simohu/internal/platform/logger"
	"simohu/internal/platform/metrics"
	"simohu/internal/platform/redis"
	"simohu/internal/registration"
	"simohu/internal/session"
	"simohu/internal/terminal"
	userservice "simohu/internal/user/service"
	"simohu/pkg/platform/circuit"
)

// App holds the wired dependencies shared by the commands of one run.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Session  *session.Session
	Auth     *authservice.Service
	Users    *userservice.Service
	Lookup   *addressservice.Service
	Autofill registration.AutofillPolicy
	Prompt   terminal.PromptDriver
	Out      io.Writer

	closers []func() error
}

// NewApp wires config into services. A Redis URL enables the shared lookup
// cache; otherwise lookups are cached in memory for the run.
func NewApp(ctx context.Context, cfg config.Config, prompt terminal.PromptDriver, out io.Writer, logOut io.Writer) (*App, error) {
	policy, err := registration.ParseAutofillPolicy(cfg.Lookup.Autofill)
	if err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(logOut, cfg.Log.Level, cfg.Log.Format)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sess := session.New()

	a := &App{
		Config:   cfg,
		Logger:   log,
		Registry: reg,
		Metrics:  m,
		Session:  sess,
		Autofill: policy,
		Prompt:   prompt,
		Out:      out,
	}

	portal := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithSession(sess),
		apiclient.WithLogger(log),
		apiclient.WithMetrics(m),
	)
	if a.Auth, err = authservice.New(portal, sess, authservice.WithLogger(log), authservice.WithMetrics(m)); err != nil {
		return nil, err
	}
	if a.Users, err = userservice.New(portal, userservice.WithLogger(log), userservice.WithMetrics(m)); err != nil {
		return nil, err
	}

	// The lookup service is public; it never sees the session token.
	lookupAPI := apiclient.New(cfg.Lookup.BaseURL,
		apiclient.WithTimeout(cfg.Lookup.Timeout),
		apiclient.WithLogger(log),
		apiclient.WithMetrics(m),
	)
	cache, err := a.lookupCache(ctx)
	if err != nil {
		return nil, err
	}
	a.Lookup, err = addressservice.New(viacep.New(lookupAPI),
		addressservice.WithCache(cache),
		addressservice.WithBreaker(circuit.New("viacep",
			circuit.WithFailureThreshold(cfg.Lookup.BreakerFailures),
			circuit.WithCooldown(cfg.Lookup.BreakerCooldown),
		)),
		addressservice.WithLogger(log),
		addressservice.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) lookupCache(ctx context.Context) (addressservice.Cache, error) {
	client, err := redis.New(ctx, a.Config.Redis)
	if err != nil {
		return nil, fmt.Errorf("lookup cache: %w", err)
	}
	if client == nil {
		return addressstore.NewInMemoryCache(a.Config.Lookup.CacheTTL), nil
	}
	a.closers = append(a.closers, client.Close)
	a.Logger.Debug("using redis lookup cache")
	return addressstore.NewRedisCache(client, a.Config.Lookup.CacheTTL, a.Logger), nil
}

// Profile returns the portal constants for new users.
func (a *App) Profile() registration.Profile {
	return registration.Profile{
		ProfileID:      a.Config.API.ProfileID,
		PortalUserType: a.Config.API.PortalUserType,
	}
}

// Close releases connections opened by NewApp.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
