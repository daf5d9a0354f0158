package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/anchorkeep/internal/adapter/httpserver"
	"github.com/pscheid92/anchorkeep/internal/adapter/memory"
	"github.com/pscheid92/anchorkeep/internal/adapter/metrics"
	"github.com/pscheid92/anchorkeep/internal/adapter/postgres"
	"github.com/pscheid92/anchorkeep/internal/adapter/redis"
	"github.com/pscheid92/anchorkeep/internal/app"
	"github.com/pscheid92/anchorkeep/internal/domain"
	"github.com/pscheid92/anchorkeep/internal/platform/config"
	"github.com/pscheid92/anchorkeep/internal/platform/logging"
	"github.com/pscheid92/anchorkeep/internal/platform/version"
)

const (
	connectTimeout = 30 * time.Second
	purgeInterval  = time.Minute
)

// anchorStore is the selected backend plus whatever it needs torn down.
type anchorStore struct {
	domain.AnchorStore
	close func()

	// Server options that depend on the backend, e.g. a shared rate limiter.
	serverOpts []httpserver.Option
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config, reg prometheus.Registerer, clock clockwork.Clock) anchorStore {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch cfg.AnchorStore {
	case config.StoreRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL, metrics.NewRedisMetrics(reg))
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		limiter := redis.NewRateLimiter(client, clock, cfg.AnchorRateLimit, cfg.AnchorRateBurst)
		return anchorStore{
			AnchorStore: redis.NewAnchorStore(client, cfg.AnchorTTL),
			close:       func() { _ = client.Close() },
			serverOpts:  []httpserver.Option{httpserver.WithRateLimiterStore(limiter)},
		}

	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, metrics.NewDBMetrics(reg))
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		repo := postgres.NewAnchorRepo(pool, cfg.AnchorTTL, clock)
		stopPurge := repo.StartPurgeTimer(purgeInterval)
		return anchorStore{
			AnchorStore: repo,
			close: func() {
				stopPurge()
				pool.Close()
			},
		}

	default:
		store := memory.NewAnchorStore(cfg.AnchorTTL, clock)
		return anchorStore{
			AnchorStore: store,
			close:       store.StartEvictionTimer(purgeInterval),
		}
	}
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"version", version.Get().String(),
		"store", cfg.AnchorStore,
		"recall_mode", cfg.AnchorRecallMode,
	)

	reg := metrics.NewRegistry()

	store := setupStore(cfg, reg, clock)
	defer store.close()

	anchors := app.NewService(store, cfg.RecallMode(), metrics.NewAnchorMetrics(reg))

	srv, err := httpserver.NewServer(cfg, anchors, reg, []httpserver.HealthCheck{
		{Name: "anchor_store", Check: anchors.Ping},
	}, store.serverOpts...)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
