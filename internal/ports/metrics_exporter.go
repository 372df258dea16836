package ports

import (
	"context"

	"github.com/apodwikat/abtest/internal/domain"
)

// MetricsExporter exports experiment metrics to an external observability system.
type MetricsExporter interface {
	// ExportRun records the outcome of a completed experiment run.
	ExportRun(ctx context.Context, run *domain.ExperimentRun) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
