package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/stockroom/api/routes"
	"github.com/angelmondragon/stockroom/internal/audit"
	"github.com/angelmondragon/stockroom/internal/auth"
	"github.com/angelmondragon/stockroom/internal/inventory"
	"github.com/angelmondragon/stockroom/internal/users"
	"github.com/angelmondragon/stockroom/pkg/config"
	"github.com/angelmondragon/stockroom/pkg/db"
	"github.com/angelmondragon/stockroom/pkg/env"
	"github.com/angelmondragon/stockroom/pkg/logger"
	"github.com/angelmondragon/stockroom/pkg/metrics"
	"github.com/angelmondragon/stockroom/pkg/migrate"
	"github.com/angelmondragon/stockroom/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured, auth rate limiting disabled")
	}

	registry := metrics.NewRegistry()
	authMetrics := metrics.NewAuthMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	auditor, err := audit.NewLogger(audit.Params{
		DB:      dbClient,
		Config:  cfg.Audit,
		Logger:  logg,
		Metrics: authMetrics,
	})
	if err != nil {
		return err
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          userRepo,
		Audit:          auditor,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	gate, err := auth.NewGate(auth.GateParams{
		Users:     userRepo,
		Audit:     auditor,
		JWTConfig: cfg.JWT,
		Metrics:   authMetrics,
		Logger:    logg,
	})
	if err != nil {
		return err
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Audit:  auditor,
		Logger: logg,
	})
	if err != nil {
		return err
	}

	addr := ":" + env.First(cfg.App.Port, "PORT")
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"audit_mode": cfg.Audit.Mode,
		"db_driver":  cfg.DB.Driver,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			DB:               dbClient,
			Redis:            redisClient,
			Gatherer:         registry,
			HTTPMetrics:      httpMetrics,
			AuthMetrics:      authMetrics,
			Gate:             gate,
			AuthService:      authService,
			InventoryService: inventoryService,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
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

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
