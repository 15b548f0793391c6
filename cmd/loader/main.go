package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"library-loader/internal/app"
	"library-loader/internal/config"
	"library-loader/internal/csvfile"
	"library-loader/internal/logging"
	"library-loader/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	envPath := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, os.Stdout)
	if err != nil {
		slog.Error("failed to initialize database", "kind", errorKind(err), "error", err)
		return 1
	}
	defer application.Close()

	if !cfg.Scheduled() {
		if _, err := application.Loader.Run(ctx); err != nil {
			slog.Error("load failed", "kind", errorKind(err), "error", err)
			return 1
		}
		return 0
	}

	if err := application.Scheduler.Start(ctx); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		return 1
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           application.Handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("status server listening", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("status server failed", "error", err)
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("status server shutdown", "error", err)
	}
	return 0
}

func errorKind(err error) string {
	for _, kind := range []error{
		services.ErrConnection,
		services.ErrSchema,
		services.ErrIntegrity,
		services.ErrRowShape,
		services.ErrQuery,
		csvfile.ErrFile,
		csvfile.ErrParse,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "unknown"
}
