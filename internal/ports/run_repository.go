package ports

import (
	"context"

	"github.com/apodwikat/abtest/internal/domain"
)

// RunRepository persists experiment run summaries.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ExperimentRun) error
	GetByID(ctx context.Context, id string) (*domain.ExperimentRun, error)
	List(ctx context.Context, limit int) ([]*domain.ExperimentRun, error)
	DeleteAll(ctx context.Context) error
}
