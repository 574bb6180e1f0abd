package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/i474232898/weather-daily-overview/internal/api/http"
	"github.com/i474232898/weather-daily-overview/internal/archive"
	"github.com/i474232898/weather-daily-overview/internal/config"
	"github.com/i474232898/weather-daily-overview/internal/observability"
	"github.com/i474232898/weather-daily-overview/internal/scheduler"
	"github.com/i474232898/weather-daily-overview/internal/store"
	"github.com/i474232898/weather-daily-overview/internal/weather"
	"github.com/i474232898/weather-daily-overview/internal/weather/providers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "weather-data-aggregation: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	resolver, err := providers.NewResolver(cfg.Geocoder, httpClient, cfg.GeocodingLanguage, cfg.GoogleAPIKey, log)
	if err != nil {
		return err
	}
	fetcher := providers.NewOpenMeteoForecast(httpClient, log)

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge, nil)

	opts := []weather.Option{
		weather.WithLogger(log),
		weather.WithMetrics(metrics),
	}
	if cfg.ArchiveDSN != "" {
		arch, err := archive.Open(ctx, cfg.ArchiveDSN)
		if err != nil {
			return err
		}
		defer arch.Close()
		if err := arch.EnsureSchema(ctx); err != nil {
			return err
		}
		opts = append(opts, weather.WithArchive(arch))
		log.Info("daily summary archive enabled")
	}

	service := weather.NewService(memStore, resolver, fetcher, weather.ServiceConfig{
		Window:   cfg.Window,
		CacheTTL: cfg.CacheTTL,
		Presets:  cfg.Presets,
	}, opts...)

	// Scheduler that periodically refreshes the presets.
	sched := scheduler.New(service, cfg.RefreshInterval, log, metrics)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-data-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Uncached overviews wait on geocoding and the forecast call.
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "weather-data-aggregation",
			"locations": memStore.Locations(),
		})
	})

	httpapi.RegisterMetrics(app, reg)
	httpapi.RegisterRoutes(app, service)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("fiber server stopped: %w", err)
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	return nil
}
