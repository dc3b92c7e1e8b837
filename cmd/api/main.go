// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecoplagas/backend/internal/auth"
	"github.com/ecoplagas/backend/internal/chat"
	"github.com/ecoplagas/backend/internal/config"
	"github.com/ecoplagas/backend/internal/core"
	"github.com/ecoplagas/backend/internal/health"
	"github.com/ecoplagas/backend/internal/middleware"
	"github.com/ecoplagas/backend/internal/plant"
	"github.com/ecoplagas/backend/internal/server"
	"github.com/ecoplagas/backend/internal/session"
	"github.com/ecoplagas/backend/internal/user"
	"github.com/ecoplagas/backend/internal/weather"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if _, err := os.Stat(configPath); err != nil {
		configPath = ""
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB.DB); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := core.RegisterPoolMetrics(registry, db, redis); err != nil {
		return err
	}

	signer, err := session.NewTokenSigner(cfg.Session.Secret, cfg.Session.Issuer)
	if err != nil {
		return err
	}
	sessions := session.NewManager(
		session.NewStore(redis.Client, cfg.Session.TTL),
		signer,
		cfg.Session,
		cfg.IsProduction(),
	)
	logger.Info("session manager initialized",
		"cookie", cfg.Session.CookieName,
		"ttl", cfg.Session.TTL,
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc, sessions)

	authSvc := auth.NewService(userSvc)
	authHandler := auth.NewHandler(authSvc, sessions)

	plantHandler := plant.NewHandler(plant.NewService(plant.NewRepository(db.DB)))

	weatherHandler := weather.NewHandler(
		weather.NewClient(cfg.Weather, nil, registry),
	)
	if cfg.Weather.APIKey == "" {
		logger.Warn("WEATHER_API_KEY not set, /clima will fail")
	}

	chatClient := chat.NewClient(cfg.Chat, nil, registry)
	chatHandler := chat.NewHandler(chatClient, chat.HandlerConfig{
		MaxUploadBytes: cfg.Chat.MaxUploadBytes,
		Image: chat.ImageOptions{
			MaxWidth:  cfg.Chat.ImageMaxWidth,
			MaxHeight: cfg.Chat.ImageMaxHeight,
			Quality:   cfg.Chat.JPEGQuality,
			MaxPixels: cfg.Chat.ImageMaxPixels,
		},
	})
	if !chatClient.Configured() {
		logger.Warn("GROQ_API_KEY not set, chatbot disabled")
	}

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Pinger: db},
		health.Dependency{Name: "redis", Pinger: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	if cfg.Server.TrustProxy {
		router.Use(chimw.RealIP)
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.NewMetrics(registry).Handler)
	router.Use(middleware.Sessions(sessions))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)

	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.AuthRequests,
			cfg.RateLimit.AuthBurst,
		),
		Prefix:   "auth",
		KeyFunc:  middleware.KeyByIP,
		FailOpen: true,
	}).Handler

	chatLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.ChatRequests,
			cfg.RateLimit.ChatBurst,
		),
		Prefix:   "chat",
		KeyFunc:  middleware.KeyByUser,
		FailOpen: true,
	}).Handler

	healthHandler.RegisterRoutes(router)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{Registry: registry},
	))

	authHandler.RegisterRoutes(router, authLimiter)
	userHandler.RegisterRoutes(router, middleware.RequireSession)
	plantHandler.RegisterRoutes(router, middleware.RequireSession)
	weatherHandler.RegisterRoutes(router)
	chatHandler.RegisterRoutes(router, chatLimiter)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
