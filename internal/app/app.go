package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"library-loader/internal/config"
	"library-loader/internal/handlers"
	"library-loader/internal/schema"
	"library-loader/internal/services"
)

type Application struct {
	Config        *config.AppConfig
	Database      *services.Database
	SchemaService *services.SchemaService
	Loader        *services.LoaderService
	Scheduler     *services.Scheduler
	Handler       *handlers.Handler
}

// New connects to the configured database and wires the services. Results
// are printed to out.
func New(ctx context.Context, cfg *config.AppConfig, out io.Writer) (*Application, error) {
	sqlDB, err := config.InitDatabase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrConnection, err)
	}

	return NewWithDatabase(cfg, services.NewDatabase(sqlDB), out), nil
}

func NewWithDatabase(cfg *config.AppConfig, db *services.Database, out io.Writer) *Application {
	app := &Application{
		Config:   cfg,
		Database: db,
	}

	app.SchemaService = services.NewSchemaService(db)
	app.Loader = services.NewLoaderService(
		db,
		app.SchemaService,
		schema.Sources(),
		schema.Reports(cfg.Loader.RentalBookID),
		cfg.Loader.DataDir,
		out,
	)

	if cfg.Scheduled() {
		app.Scheduler = services.NewScheduler(app.Loader, cfg.Loader.Schedule)
		app.Handler = handlers.NewHandler(app.Scheduler)
	}

	return app
}

func (app *Application) Close() {
	if app.Scheduler != nil && app.Scheduler.IsRunning() {
		if err := app.Scheduler.Stop(); err != nil {
			slog.Warn("failed to stop scheduler", "error", err)
		}
	}

	if app.Database != nil {
		if err := app.Database.Close(); err != nil {
			slog.Warn("failed to close database", "error", err)
		}
	}
}
