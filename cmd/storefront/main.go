package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/balonis/storefront/api/controllers"
	"github.com/balonis/storefront/api/routes"
	"github.com/balonis/storefront/api/views"
	"github.com/balonis/storefront/internal/catalog"
	"github.com/balonis/storefront/internal/home"
	"github.com/balonis/storefront/pkg/backend"
	"github.com/balonis/storefront/pkg/config"
	"github.com/balonis/storefront/pkg/instance"
	"github.com/balonis/storefront/pkg/logger"
	"github.com/balonis/storefront/pkg/metrics"
	"github.com/balonis/storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

// storefrontAPI is satisfied by both the plain and the cached backend client.
type storefrontAPI interface {
	catalog.API
	home.API
	controllers.Pinger
	controllers.ProductReader
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	client, err := backend.NewClient(cfg.API.BaseURL,
		backend.WithTimeout(cfg.API.Timeout),
		backend.WithObserver(storefrontMetrics),
	)
	if err != nil {
		return err
	}

	var (
		api         storefrontAPI = client
		redisPinger controllers.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, rerr := redis.New(ctx, cfg.Redis)
		if rerr != nil {
			return rerr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		api = backend.NewCachedClient(client, redisClient, cfg.Catalog.LookupCacheTTL, logg)
		redisPinger = redisClient
		logg.Info(ctx, "lookup cache enabled")
	}

	renderer, err := views.New()
	if err != nil {
		return err
	}

	sessions := catalog.NewRegistry(api, catalog.RegistryConfig{
		MaxSessions: cfg.Session.MaxSessions,
		TTL:         cfg.Session.TTL,
	}, catalog.RegistryOptions{
		Logger:   logg,
		Stale:    storefrontMetrics,
		Sessions: storefrontMetrics,
	})
	defer sessions.Close()

	homeLoader := home.NewLoader(api, logg, storefrontMetrics)

	addr := ":" + cfg.App.Port
	srvCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, api, redisPinger, sessions, homeLoader, renderer,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(srvCtx, "starting storefront server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(srvCtx, "shutting down storefront server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
