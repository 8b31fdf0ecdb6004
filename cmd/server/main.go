package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paso-monitor-server/internal/config"
	"paso-monitor-server/internal/db"
	transport "paso-monitor-server/internal/http"
	"paso-monitor-server/internal/http/middleware"
	"paso-monitor-server/internal/jobs"
	"paso-monitor-server/internal/repo"
	"paso-monitor-server/internal/scrape"
	"paso-monitor-server/internal/services"
	"paso-monitor-server/internal/weather"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbConn, err := db.Connect(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.Bootstrap(ctx, dbConn.Pool, cfg.RequestTimeout); err != nil {
		logger.Error("failed to bootstrap schema", "error", err)
		os.Exit(1)
	}
	if err := db.EnsureSeedAdmin(ctx, dbConn.Pool, cfg.RequestTimeout); err != nil {
		logger.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	userRepo := repo.NewUserRepo(dbConn.Pool, cfg.RequestTimeout)
	statusRepo := repo.NewStatusRepo(dbConn.Pool, cfg.RequestTimeout)
	weatherRepo := repo.NewWeatherRepo(dbConn.Pool, cfg.RequestTimeout)

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)

	scraper := scrape.New(cfg.PassStatusURL, cfg.FetchTimeout)
	weatherClient := weather.New(cfg.WeatherAPIURL, cfg.WeatherAPIKey, cfg.FetchTimeout)

	statusSync := jobs.NewStatusSync(scraper, statusRepo, cfg.PassName, logger)
	weatherSync := jobs.NewWeatherSync(weatherClient, weatherRepo, cfg.WeatherCity, logger)

	// Prime the status record before serving, like a first scheduled run.
	statusSync.Run(ctx)

	runner := cron.New()
	if err := jobs.Schedule(runner, cfg.PassSyncInterval, func() { statusSync.Run(context.Background()) }); err != nil {
		logger.Error("failed to schedule status sync", "error", err)
		os.Exit(1)
	}
	if err := jobs.Schedule(runner, cfg.WeatherSyncInterval, func() { weatherSync.Run(context.Background()) }); err != nil {
		logger.Error("failed to schedule weather sync", "error", err)
		os.Exit(1)
	}
	runner.Start()
	defer runner.Stop()

	router := transport.NewRouter(transport.Dependencies{
		Config:       cfg,
		UserStore:    userRepo,
		AuthService:  authService,
		UserService:  userService,
		PassStore:    statusRepo,
		WeatherStore: weatherRepo,
		Logger:       logger,
		RateLimiter:  middleware.NewRateLimiter(cfg.RateLimitPerMinute),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.RequestTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrors:
		logger.Error("http server stopped unexpectedly", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("http server stopped")
}

func newLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env != "prod" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
