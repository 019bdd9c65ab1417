package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/workerdesk/internal/config"
	"github.com/JonMunkholm/workerdesk/internal/core"
	"github.com/JonMunkholm/workerdesk/internal/logging"
	"github.com/JonMunkholm/workerdesk/internal/store"
	"github.com/JonMunkholm/workerdesk/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"api_prefix", cfg.Server.APIPrefix,
		"db_max_conns", cfg.Database.MaxConns,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"upload_staging_dir", cfg.Upload.StagingDir,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	workers := store.NewWorkers(pool)
	if cfg.Database.EnsureSchema {
		if err := workers.EnsureSchema(ctx); err != nil {
			return err
		}
		slog.Info("schema ensured")
	}

	service, err := core.NewService(workers, serviceOptions(cfg))
	if err != nil {
		return err
	}

	server := web.NewServer(service, cfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.ImportStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// serviceOptions maps configuration onto the import pipeline settings.
func serviceOptions(cfg *config.Config) core.Options {
	return core.Options{
		StagingDir:          cfg.Upload.StagingDir,
		MaxConcurrent:       cfg.Upload.MaxConcurrent,
		MaxWait:             cfg.Upload.MaxWaitTime,
		BatchSize:           cfg.Upload.BatchSize,
		Timeout:             cfg.Upload.Timeout,
		MaxRejectedReported: cfg.Upload.MaxRejectedReported,
	}
}
