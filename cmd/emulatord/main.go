// Command emulatord serves subgrid-physics emulator predictions over HTTP.
//
// On startup the daemon points at a trained model bundle (a local directory
// or a remote artifact repository), then loads surrogates lazily as
// statistics are first requested and keeps them resident. Predictions are
// cached by (statistic, epoch, parameters, samples) in memory or Redis.
//
// The daemon serves an HTTP API on port 8083 (configurable) providing:
//   - GET  /v1/statistics - List emulated statistics
//   - GET  /v1/statistics/{name} - Metadata for one statistic
//   - POST /v1/statistics/{name}/predict - Produce a prediction
//   - GET  /v1/parameters - The canonical input parameter table
//   - GET  /healthz - Health check endpoint
//   - GET  /metrics - Prometheus metrics endpoint
//
// Usage:
//
//	emulatord \
//	  -model-dir=/var/lib/subgridemu/models \
//	  -listen=:8083 \
//	  -storage=redis -redis-addr=redis:6379
//
// Environment variables:
//
//	LISTEN       - HTTP listen address (default: :8083)
//	MODEL_DIR    - Local model bundle directory
//	MODEL_URL    - Remote artifact repository base URL
//	STORAGE      - Prediction cache backend: memory, redis (default: memory)
//	REDIS_ADDR   - Redis server address (default: localhost:6379)
//	CACHE_TTL    - Prediction cache TTL (default: 30m)
//	SAMPLES      - Default posterior sample count (default: 100)
//	MAX_SAMPLES  - Maximum posterior sample count (default: 2000)
//	LOG_LEVEL    - Logging level: debug, info, warn, error (default: info)
//	LOG_FORMAT   - Logging format: text, json (default: text)
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cosmohub/subgridemu/cmd/emulatord/config"
	"github.com/cosmohub/subgridemu/cmd/emulatord/logger"
	"github.com/cosmohub/subgridemu/cmd/emulatord/metrics"
	"github.com/cosmohub/subgridemu/cmd/emulatord/router"
	"github.com/cosmohub/subgridemu/pkg/artifact"
	"github.com/cosmohub/subgridemu/pkg/httpx"
	"github.com/cosmohub/subgridemu/pkg/storage"
	"github.com/cosmohub/subgridemu/pkg/tls"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	cfg := config.ParseFlags()

	log := logger.New(cfg)
	slog.SetDefault(log)

	log.Info("starting subgridemu daemon",
		"version", version,
		"listen", cfg.Listen,
		"storage", cfg.Storage,
	)

	source, err := newSource(cfg)
	if err != nil {
		log.Error("failed to configure artifact source", "error", err)
		os.Exit(1)
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Error("failed to configure prediction cache", "error", err)
		os.Exit(1)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("failed to close store", "error", err)
			}
		}()
	}
	if stopper, ok := store.(interface{ Stop() }); ok {
		defer stopper.Stop()
	}

	svc := newService(source, store, metrics.New(), log)

	limits := router.Limits{
		DefaultSamples: cfg.DefaultSamples,
		MaxSamples:     cfg.MaxSamples,
	}
	mux := router.SetupRoutes(svc, limits, log)

	handler := httpx.RecoveryMiddleware(log)(httpx.LoggingMiddleware(log)(mux))
	httpServer := httpx.NewServer(cfg.Listen, handler, log)

	serverErr := make(chan error, 1)
	go func() {
		if cfg.TLS.Enabled {
			tlsConfig, err := tls.NewServerTLSConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.CAFile)
			if err != nil {
				serverErr <- err
				return
			}
			httpServer.SetTLSConfig(tlsConfig)
			serverErr <- httpServer.StartTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		serverErr <- httpServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	}

	log.Info("shutting down")

	if err := httpServer.Stop(10 * time.Second); err != nil {
		log.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("shutdown complete")
}

// newSource selects the artifact source from configuration: a local model
// bundle directory or a remote repository with a manifest index.
func newSource(cfg *config.Config) (artifact.Source, error) {
	if cfg.ModelDir != "" {
		return &artifact.LocalSource{Dir: cfg.ModelDir}, nil
	}

	client, err := httpx.NewClient(tls.Config{}, 60*time.Second)
	if err != nil {
		return nil, err
	}

	return &artifact.HTTPSource{
		BaseURL:    cfg.ModelURL,
		HTTPClient: client,
	}, nil
}

// newStore selects the prediction cache backend from configuration.
func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage == "redis" {
		return storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	}
	return storage.NewMemoryStoreWithTTL(cfg.CacheTTL, time.Minute), nil
}
