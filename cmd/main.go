// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shivanand-hulikatti/activity-board/internal/config"
	"github.com/Shivanand-hulikatti/activity-board/internal/handler"
	"github.com/Shivanand-hulikatti/activity-board/internal/logger"
	"github.com/Shivanand-hulikatti/activity-board/internal/metrics"
	"github.com/Shivanand-hulikatti/activity-board/internal/repository"
	"github.com/Shivanand-hulikatti/activity-board/internal/service"
	"github.com/Shivanand-hulikatti/activity-board/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "activity-board: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Configuration and logging ─────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	zl := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zl.Sync() }()
	log := logger.NewZapAdapter(zl)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// ── 2. Upstream API ──────────────────────────────────────────────────
	client := repository.NewHTTPClient(repository.ClientConfig{Timeout: cfg.Upstream.Timeout})
	repo := repository.NewActivityRepository(client, cfg.Upstream.BaseURL)

	err = repository.WaitForUpstream(ctx, repo, cfg.Upstream.StartupChecks, cfg.Upstream.StartupDelay,
		func(attempt int, err error) {
			log.WithError(err).Warn("activities API not ready", map[string]interface{}{"attempt": attempt})
		})
	if err != nil {
		// The board renders its failure message until the API comes up.
		log.WithError(err).Warn("starting without a reachable activities API", map[string]interface{}{
			"base_url": cfg.Upstream.BaseURL,
		})
	} else {
		log.Info("connected to activities API", map[string]interface{}{"base_url": cfg.Upstream.BaseURL})
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sessions := handler.NewSessionStore(func(v service.View) *service.Board {
		return service.NewBoard(repo, v,
			service.WithLogger(log),
			service.WithRecorder(m),
			service.WithMessageTimeout(cfg.Board.MessageTimeout),
		)
	}, cfg.Board.SessionTTL, handler.WithSessionGauge(m.SessionsActive))
	defer sessions.Close()
	go sessions.Run(ctx, time.Minute)

	boardHandler := handler.NewBoardHandler(sessions, log)

	// ── 4. Build the router ──────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger(log))

	r.Get("/health", handler.HealthCheck)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	boardHandler.Routes(r)

	// ── 5. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped", nil)
	return nil
}
