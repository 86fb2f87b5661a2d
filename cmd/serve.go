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

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-connect/internal/auth"
	"github.com/Shivanand-hulikatti/campus-connect/internal/catalog"
	"github.com/Shivanand-hulikatti/campus-connect/internal/config"
	"github.com/Shivanand-hulikatti/campus-connect/internal/database"
	"github.com/Shivanand-hulikatti/campus-connect/internal/durable"
	"github.com/Shivanand-hulikatti/campus-connect/internal/events"
	"github.com/Shivanand-hulikatti/campus-connect/internal/handler"
	"github.com/Shivanand-hulikatti/campus-connect/internal/logger"
	"github.com/Shivanand-hulikatti/campus-connect/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-connect/internal/notification"
	"github.com/Shivanand-hulikatti/campus-connect/internal/query"
	"github.com/Shivanand-hulikatti/campus-connect/internal/registration"
	"github.com/Shivanand-hulikatti/campus-connect/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// ── 1. Catalog ────────────────────────────────────────────────────────
	seed := catalog.DefaultSeed(time.Now())
	if cfg.App.SeedFile != "" {
		if seed, err = catalog.LoadSeedFile(cfg.App.SeedFile); err != nil {
			return err
		}
	}
	cat := catalog.New(catalog.WithSeed(seed))
	log.Info("catalog loaded",
		zap.Int("events", len(seed.Events)),
		zap.Int("announcements", len(seed.Announcements)),
	)

	// ── 2. Durable store and event bus ────────────────────────────────────
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var pub events.Publisher = &events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		np, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		pub = np
		log.Info("events enabled", zap.String("nats_url", cfg.NATS.URL))
	} else {
		log.Info("events disabled (NATS_URL not set)")
	}
	defer pub.Close()

	// ── 3. Wire up layers ─────────────────────────────────────────────────
	m := metrics.New()
	writer := registration.NewWriter(cat, store,
		registration.WithPublisher(pub),
		registration.WithLogger(log),
		registration.WithMetrics(m),
	)
	deriver := notification.NewDeriver(cat, store,
		notification.WithLocation(loc),
		notification.WithLogger(log),
		notification.WithMetrics(m),
	)
	svc := service.NewEventService(service.Deps{
		Catalog:   cat,
		Engine:    query.NewEngine(cat, query.WithLocation(loc)),
		Writer:    writer,
		Store:     store,
		Feed:      notification.NewFeed(deriver),
		Publisher: pub,
		Logger:    log,
		Metrics:   m,
		Location:  loc,
	})

	router := handler.NewRouter(handler.RouterConfig{
		Events:          handler.NewEventHandler(svc, log),
		Auth:            auth.NewJWT(cfg.JWT.Secret, cfg.JWT.AdminDomain),
		Logger:          log,
		Metrics:         m,
		RegisterLimiter: handler.NewRateLimiter(cfg.RateLimit.RegisterPerMinute, cfg.RateLimit.RegisterBurst),
		WebDir:          cfg.Server.WebDir,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Block until SIGINT, SIGTERM or a listener failure.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStore connects the configured durable backend and bounds every call
// by the durable timeout.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (durable.Store, error) {
	var store durable.Store
	switch cfg.Durable.Backend {
	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(pool); err != nil {
			pool.Close()
			return nil, err
		}
		store = durable.NewPostgresStore(pool)
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		store = durable.NewRedisStore(rdb, cfg.Redis.KeyPrefix)
	default:
		log.Warn("using in-memory registration store; registrations are lost on restart")
		store = durable.NewMemoryStore()
	}
	log.Info("registration store ready", zap.String("backend", cfg.Durable.Backend))

	if cfg.Durable.Timeout > 0 {
		store = durable.WithTimeout(store, cfg.Durable.Timeout)
	}
	return store, nil
}
