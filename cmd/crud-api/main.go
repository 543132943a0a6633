// main is the entry point of the CRUD API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (+ env overrides)
//  2. Initialise the logger
//  3. Open the database (sqlite or postgres) and migrate the schema
//  4. Build services, the auth gate and the router
//  5. Start the HTTP server in a separate goroutine
//  6. Block until SIGINT/SIGTERM, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/crud-api --config=config/local.yaml
//
// or:
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/crud-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/aanand-mishra/crud-api/internal/auth"
	"github.com/aanand-mishra/crud-api/internal/config"
	"github.com/aanand-mishra/crud-api/internal/http/handlers/resource"
	"github.com/aanand-mishra/crud-api/internal/http/middleware"
	"github.com/aanand-mishra/crud-api/internal/http/router"
	"github.com/aanand-mishra/crud-api/internal/service"
	"github.com/aanand-mishra/crud-api/internal/storage/gormstore"
	"github.com/aanand-mishra/crud-api/internal/storage/postgres"
	"github.com/aanand-mishra/crud-api/internal/storage/sqlite"
	"github.com/aanand-mishra/crud-api/internal/types"
	"github.com/aanand-mishra/crud-api/internal/utils/response"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting crud-api",
		slog.String("env", cfg.Env),
		slog.String("storage_driver", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	validate := response.NewValidator()
	students := service.New[types.Student](gormstore.New[types.Student](db))
	products := service.New[types.Product](gormstore.New[types.Product](db))

	gate := auth.NewGate(cfg.JWT, auth.StaticVerifier{
		Username:     cfg.Auth.Username,
		Password:     cfg.Auth.Password,
		PasswordHash: cfg.Auth.PasswordHash,
	})

	handler := router.New(router.Options{
		Logger:  log,
		Debug:   cfg.IsDevelopment(),
		Gate:    gate,
		Metrics: middleware.NewMetrics(),
		Resources: []router.Resource{
			resource.New("students", students, validate),
			resource.New("products", products, validate),
		},
	})

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("server stopped gracefully")
}

func openDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return sqlite.New(ctx, cfg)
	case "postgres":
		return postgres.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case config.EnvStaging:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
