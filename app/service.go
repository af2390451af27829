// Package app wires the engine, audit store, metrics and HTTP API into one
// runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apiroster "rosterd/api/roster"
	"rosterd/config"
	"rosterd/core/events"
	"rosterd/core/roster"
	rosterlog "rosterd/core/roster/logging"
	"rosterd/infra/logger"
	"rosterd/infra/metrics"
	"rosterd/internal/eventbus"
)

// Service orchestrates the solve engine and its HTTP surface.
type Service struct {
	Engine *roster.Engine
	Store  rosterlog.Store

	bus *eventbus.Bus[events.SolveEvent]
	cfg *config.Config
	log logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	store, err := cfg.Audit.NewStore()
	if err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}
	bus := eventbus.New[events.SolveEvent]()
	engine, err := roster.New(cfg.Engine, bus, store, logg)
	if err != nil {
		if cerr := store.Close(); cerr != nil {
			logg.Errorf("store close: %v", cerr)
		}
		return nil, err
	}
	return &Service{Engine: engine, Store: store, bus: bus, cfg: cfg, log: logg}, nil
}

// Run starts the HTTP API and, when enabled, the Prometheus endpoint. It
// blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return fmt.Errorf("prom sink: %w", err)
		}
		metrics.StartCollector(ctx, s.bus, sink)
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/roster/plan", apiroster.NewPlanHandler(s.Engine))
	mux.Handle("/api/roster/logs", apiroster.NewLogHandler(s.Store, s.cfg.API.Token))

	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	return s.Store.Close()
}
