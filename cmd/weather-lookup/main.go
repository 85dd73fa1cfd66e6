package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/history"
	"github.com/i474232898/weather-lookup/internal/places"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := newLogger(cfg.LogLevel)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	// Shared HTTP client for outbound calls. A zero timeout means none.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	upstream := []providers.Option{
		providers.WithMaxRetries(cfg.UpstreamMaxRetries),
		providers.WithLogger(log),
	}

	var weatherProvider weather.Provider = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey,
		append(upstream, providers.WithBaseURL(cfg.WeatherAPIURL))...)
	if cfg.UpstreamRateLimit > 0 {
		weatherProvider = providers.NewRateLimitedProvider(weatherProvider, cfg.UpstreamRateLimit, cfg.UpstreamRateBurst)
	}
	videoProvider := providers.NewYouTubeProvider(httpClient, cfg.YouTubeAPIKey,
		append(upstream, providers.WithBaseURL(cfg.YouTubeAPIURL))...)
	geocoder := providers.NewGoogleGeocoder(httpClient, cfg.GoogleMapsAPIKey, upstream...)

	weatherService := weather.NewService(weatherProvider, log.Named("weather"),
		weather.WithTimezone(cfg.Timezone),
		weather.WithWindowPolicy(weather.WindowPolicy{IncludeRequestedDay: cfg.ForecastIncludeRequestedDay}))
	placesService := places.NewService(videoProvider, geocoder, cfg.GeolocationTimeout, log.Named("places"))

	repo, err := openHistory(cfg.History)
	if err != nil {
		log.Fatal("failed to open history store", zap.String("driver", cfg.History.Driver), zap.Error(err))
	}
	historyService := history.NewService(repo, log.Named("history"))

	// Scheduler that periodically prunes old history.
	sched := scheduler.New(historyService, cfg.History.Retention, cfg.History.SweepInterval, log.Named("scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := httpapi.NewApp(fiber.Config{
		AppName:               "weather-lookup",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler:          errorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE",
		AllowHeaders: "Origin, Content-Type, Accept, " + httpapi.SessionHeader,
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-lookup",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:  weatherService,
		Places:   placesService,
		History:  historyService,
		Sessions: httpapi.NewSequencer(),
		Logger:   log.Named("http"),
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info("starting server", zap.String("address", addr), zap.String("history_driver", cfg.History.Driver))
		if err := app.Listen(addr); err != nil {
			log.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	log, err := cfg.Build()
	if err != nil {
		log, _ = zap.NewProduction()
	}
	return log
}

func openHistory(cfg config.HistoryConfig) (history.Repository, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(cfg.MemoryMaxItems), nil
	case config.DriverPostgres:
		if cfg.DSN != "" {
			db, err := store.OpenPostgresDSN(cfg.DSN)
			if err != nil {
				return nil, err
			}
			return store.New(db)
		}
		db, err := store.OpenPostgres(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB,
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresSSLMode)
		if err != nil {
			return nil, err
		}
		return store.New(db)
	default:
		db, err := store.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store.New(db)
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Centralized error response
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
