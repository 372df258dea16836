package otel

import (
	"context"

	"github.com/apodwikat/abtest/internal/domain"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportRun(ctx context.Context, run *domain.ExperimentRun) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
