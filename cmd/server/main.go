package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/refinestack/refinestack/internal/api"
	"github.com/refinestack/refinestack/internal/artifact"
	"github.com/refinestack/refinestack/internal/auth"
	"github.com/refinestack/refinestack/internal/config"
	"github.com/refinestack/refinestack/internal/metrics"
	"github.com/refinestack/refinestack/internal/pipeline"
	"github.com/refinestack/refinestack/internal/ratelimit"
	"github.com/refinestack/refinestack/internal/scoring"
	"github.com/refinestack/refinestack/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("refinestack-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"rate_limit_max", cfg.Server.RateLimit.MaxRequests,
		"rate_limit_window", cfg.Server.RateLimit.Window,
		"artifact_dir", cfg.Server.Artifacts.Dir,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Artifact store: named slots plus timestamped blob copies.
	store, err := artifact.New(cfg.Server.Artifacts.Dir, cfg.Server.Artifacts.BlobDir)
	if err != nil {
		slog.Error("failed to create artifact store", "err", err)
		os.Exit(1)
	}

	// Rate limiter with background eviction of stale client windows.
	limiter := ratelimit.New(cfg.Server.RateLimit.MaxRequests, cfg.Server.RateLimit.Window)
	go limiter.Run(ctx)

	guard := auth.New(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)

	engine := scoring.NewEngine(nil)
	orch := pipeline.New(store, engine, cfg.Server.Artifacts.LogFile)

	// WebSocket hub — pushes a run summary to clients after each run.
	hub := ws.New()
	go hub.Run(ctx)

	registry := metrics.NewRegistry()

	// Hot reload: auth credentials and rate limits apply without a restart.
	// Artifact paths and the port stay fixed for the process lifetime.
	go func() {
		err := config.Watch(ctx, *configPath, func(next *config.Config) {
			guard.Update(
				next.Server.Auth.Mode,
				next.Server.Auth.EffectiveHeader(),
				next.Server.Auth.Key(),
			)
			limiter.SetLimits(next.Server.RateLimit.MaxRequests, next.Server.RateLimit.Window)
		})
		if err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	httpMux := http.NewServeMux()
	httpMux.Handle("/", api.New(guard, limiter, orch, store, registry, hub))
	httpMux.Handle("/ws/runs", hub)
	httpMux.Handle("/metrics", registry)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("refinestack-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
