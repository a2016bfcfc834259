// Command matching-svc serves the blood request matching engine over gRPC and
// Connect.
//
// Startup order:
//  1. config (koanf: defaults, config.yaml, BLOODLINK_* env) and logger
//  2. metrics and tracing
//  3. city graph, seed donors and bank inventory
//  4. event dispatcher with the history recorder and donor notifier
//  5. rank preview cache
//  6. gRPC server and the Connect/HTTP gateway
//
// SIGINT/SIGTERM stop the listeners first, then drain the event queue so
// every committed transition reaches the history store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"bloodlink/pkg/api/bloodlinkv1"
	"bloodlink/pkg/cache"
	"bloodlink/pkg/config"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/logger"
	"bloodlink/pkg/metrics"
	"bloodlink/pkg/ratelimit"
	"bloodlink/pkg/server"
	"bloodlink/pkg/telemetry"
	"bloodlink/services/matching-svc/internal/engine"
	"bloodlink/services/matching-svc/internal/events"
	"bloodlink/services/matching-svc/internal/graph"
	"bloodlink/services/matching-svc/internal/httpapi"
	"bloodlink/services/matching-svc/internal/notify"
	"bloodlink/services/matching-svc/internal/repository"
	"bloodlink/services/matching-svc/internal/routing"
	"bloodlink/services/matching-svc/internal/seed"
	"bloodlink/services/matching-svc/internal/service"
)

const serviceName = "matching-svc"

func main() {
	cfg, err := config.LoadWithServiceDefaults(serviceName, 50051)
	if err != nil {
		logger.Init("error")
		logger.Fatal("Failed to load config", "error", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	logger.Log = logger.WithService(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("Service failed", "error", err)
	}
	logger.Log.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Log.Info("Starting matching service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// Метрики
	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	sharedMetricsPort := cfg.HTTP.Enabled && cfg.Metrics.Port == cfg.HTTP.Port
	if cfg.Metrics.Enabled && !sharedMetricsPort {
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Трейсинг
	tp, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.App, cfg.Tracing))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownWithTimeout("tracing", 5*time.Second, tp.Shutdown)

	// Граф города и стартовые данные
	g, err := graph.New(seed.Locations(), seed.Roads())
	if err != nil {
		return fmt.Errorf("build city graph: %w", err)
	}
	var (
		donors    []domain.Donor
		inventory []domain.InventoryEntry
	)
	if cfg.Seed.Enabled {
		donors, inventory = seed.Donors(), seed.Inventory()
	}
	store, err := engine.NewStore(donors, inventory)
	if err != nil {
		return fmt.Errorf("load seed data: %w", err)
	}

	// Журнал
	repo, err := repository.New(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Log.Warn("Repository close failed", "error", err)
		}
	}()

	// События после коммита
	dispatcher := events.NewDispatcher(events.Config{
		Workers:        cfg.Events.Workers,
		BufferSize:     cfg.Events.BufferSize,
		HandlerTimeout: cfg.Events.HandlerTimeout,
		OnPublish: func(evt events.Event) {
			m.EventsPublished.WithLabelValues(string(evt.Type)).Inc()
		},
		OnDrop: func(evt events.Event) {
			m.EventsDropped.WithLabelValues(string(evt.Type)).Inc()
		},
		OnHandlerError: func(handler string, _ events.Event, _ error) {
			m.EventHandlerErrors.WithLabelValues(handler).Inc()
		},
	})
	dispatcher.Subscribe("history", repository.NewRecorder(repo, m).WithRetry(cfg.Retry))

	notifier, closeNotifier, err := newNotifier(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeNotifier()
	dispatcher.Subscribe("notify", notify.NewSubscriber(notifier,
		notify.WithLocationNames(g.Name),
		notify.WithMetrics(m),
	))
	dispatcher.Start()

	eng, err := engine.New(routing.NewRouter(g), store, engine.Options{
		EmergencyDrawsReserve: cfg.Allocation.EmergencyDrawsReserve,
		Publisher:             dispatcher,
	})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	opts := []service.Option{service.WithMetrics(m)}
	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cache.FromConfig(&cfg.Cache))
		if err != nil {
			return fmt.Errorf("open rank cache: %w", err)
		}
		defer c.Close()
		opts = append(opts, service.WithRankCache(cache.NewRankCache(c, cfg.Cache.DefaultTTL, m)))
	}
	svc := service.NewMatchingService(eng, repo, opts...)

	logger.Log.Info("Engine ready",
		"locations", len(g.Locations()),
		"roads", len(g.Edges()),
		"donors", len(eng.Donors()),
		"emergency_draws_reserve", cfg.Allocation.EmergencyDrawsReserve,
	)

	// gRPC
	grpcServer := server.New(cfg, &server.Options{Metrics: m})
	bloodlinkv1.RegisterMatchingServiceServer(grpcServer.Engine(), svc)

	lis, err := grpcServer.Listen(ctx)
	if err != nil {
		return err
	}
	errCh := make(chan error, 2)
	go func() { errCh <- grpcServer.Serve(lis) }()

	// Connect/HTTP
	var httpServer *http.Server
	if cfg.HTTP.Enabled {
		apiOpts := httpapi.Options{
			Metrics:        m,
			TrustForwarded: cfg.HTTP.RateLimit.TrustForwarded,
			Docs:           cfg.HTTP.Docs,
			Version:        cfg.App.Version,
		}
		if cfg.HTTP.RateLimit.Enabled {
			limiter, closeLimiter, err := newLimiter(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeLimiter()
			apiOpts.Limiter = limiter
		}
		if cfg.Metrics.Enabled && sharedMetricsPort {
			apiOpts.MetricsHandler = metrics.Handler()
		}
		httpServer = httpapi.NewServer(cfg.HTTP, httpapi.NewHandler(svc, apiOpts))
		go func() {
			logger.Log.Info("HTTP gateway listening", "port", cfg.HTTP.Port, "protocol", "HTTP/1.1 + h2c (Connect)")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http gateway: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Log.Info("Shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Warn("HTTP gateway shutdown error", "error", err)
		}
	}
	grpcServer.Shutdown(shutdownCtx)

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Events.DrainTimeout)
	defer drainCancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		logger.Log.Warn("Event queue not drained", "error", err)
	}

	return serveErr
}

// newNotifier выбирает канал оповещения доноров по notify.driver
func newNotifier(ctx context.Context, cfg *config.Config) (notify.Notifier, func(), error) {
	switch cfg.Notify.Driver {
	case "redis":
		client, err := notify.DialRedis(ctx, cfg.Cache.Address(), cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect notify redis: %w", err)
		}
		logger.Log.Info("Donor alerts go to redis", "channel", cfg.Notify.Channel)
		return notify.NewRedisNotifier(client, cfg.Notify.Channel), closeRedis(client), nil
	case "log", "":
		return notify.LogNotifier{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported notify driver %q", cfg.Notify.Driver)
	}
}

// newLimiter ограничитель шлюза; redis backend берёт адрес из cache
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func(), error) {
	rl := cfg.HTTP.RateLimit
	if rl.Backend != "redis" {
		limiter, err := ratelimit.New(rl, nil)
		if err != nil {
			return nil, nil, err
		}
		return limiter, func() { _ = limiter.Close() }, nil
	}

	client, err := notify.DialRedis(ctx, cfg.Cache.Address(), cfg.Cache.Password, cfg.Cache.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rate limit redis: %w", err)
	}
	limiter, err := ratelimit.New(rl, client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Log.Info("HTTP rate limit enabled", "backend", rl.Backend, "requests", rl.Requests, "window", rl.Window)
	return limiter, closeRedis(client), nil
}

func closeRedis(client *redis.Client) func() {
	return func() {
		if err := client.Close(); err != nil {
			logger.Log.Warn("Redis close failed", "error", err)
		}
	}
}

func shutdownWithTimeout(name string, timeout time.Duration, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Log.Warn("Shutdown failed", "component", name, "error", err)
	}
}
