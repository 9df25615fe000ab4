package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"simohu/internal/mockportal/handler"
	"simohu/internal/mockportal/store"
	"simohu/internal/mockportal/token"
	"simohu/internal/platform/config"
	"simohu/internal/platform/httpserver"
	"simohu/internal/platform/logger"
	"simohu/internal/platform/metrics"
)

const tokenTTL = 12 * time.Hour

// main serves a local stand-in for the portal API and the postal-code lookup
// so the CLI can be exercised without network access.
func main() {
	cfg, err := config.Load(os.Getenv("SIMOHU_CONFIG"))
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	h, err := handler.New(store.New(), token.NewIssuer(cfg.MockPortal.JWTSigningKey, "simohu-mockportal", tokenTTL),
		handler.WithLogger(log),
		handler.WithMetrics(m),
	)
	if err != nil {
		log.Error("failed to build handler", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(cfg.MockPortal.Addr, handler.NewRouter(h, reg))
	log.Info("starting mock portal", "addr", cfg.MockPortal.Addr)
	if err := httpserver.Run(ctx, srv); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("mock portal stopped")
}
