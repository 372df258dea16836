package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/apodwikat/abtest/internal/adapters/memory"
	"github.com/apodwikat/abtest/internal/adapters/otel"
	"github.com/apodwikat/abtest/internal/adapters/turso"
	"github.com/apodwikat/abtest/internal/charts"
	"github.com/apodwikat/abtest/internal/dataset"
	"github.com/apodwikat/abtest/internal/domain"
	"github.com/apodwikat/abtest/internal/experiment"
	"github.com/apodwikat/abtest/internal/infrastructure/config"
	"github.com/apodwikat/abtest/internal/infrastructure/database"
	"github.com/apodwikat/abtest/internal/migrate"
	"github.com/apodwikat/abtest/internal/ports"
	"github.com/apodwikat/abtest/internal/stats"
	"github.com/apodwikat/abtest/internal/util"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *database.Client
	Runs           ports.RunRepository
	Metrics        ports.MetricsExporter
	MetricsHandler http.Handler
	Applicants     *memory.ApplicantRepository
	Service        *stats.Service
	Charts         *charts.Builder
}

type appOptions struct {
	dataset bool
	history bool
	metrics bool
}

// NewAppContext wires the dependencies a command asks for. Without a dataset
// the service runs over an empty repository.
func NewAppContext(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts appOptions) (*AppContext, error) {
	app := &AppContext{Config: cfg, Logger: logger}

	var applicants []domain.Applicant
	if opts.dataset {
		res, err := dataset.Load(cfg.Dataset)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		logger.Info("dataset loaded",
			zap.String("path", cfg.Dataset),
			zap.Int("applicants", len(res.Applicants)),
			zap.Int("skipped", res.Skipped),
		)
		applicants = res.Applicants
	}
	app.Applicants = memory.NewApplicantRepository(applicants)

	if opts.history {
		db, err := openDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		app.DB = db
		app.Runs = turso.NewRunRepository(db.DB)
	}

	app.Metrics = otel.NewNoOpExporter()
	if opts.metrics && cfg.OTEL().Active() {
		exp, err := otel.NewExporter(ctx, cfg.OTEL())
		if err != nil {
			logger.Warn("metrics exporter unavailable, continuing without metrics", zap.Error(err))
		} else {
			app.Metrics = exp
			app.MetricsHandler = exp.Handler()
		}
	}

	src := experiment.NewRandomSource()
	if cfg.Seed != 0 {
		src = experiment.NewSeededSource(cfg.Seed)
	}
	sim := experiment.NewSimulator(app.Applicants, src)

	app.Service = stats.NewService(app.Applicants, sim, app.Runs, app.Metrics, logger,
		stats.WithDatasetName(filepath.Base(cfg.Dataset)),
	)
	app.Charts = charts.NewBuilder(app.Applicants)
	return app, nil
}

// openDatabase connects to the run history and brings its schema up to date.
func openDatabase(ctx context.Context, cfg config.Database, logger *zap.Logger) (*database.Client, error) {
	if err := util.EnsureParentDir(cfg.URL); err != nil {
		return nil, err
	}

	db, err := database.New(ctx, cfg.URL, cfg.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate.New(db.DB, logger).Up(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	var errs []error
	if a.Metrics != nil {
		if err := a.Metrics.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}
