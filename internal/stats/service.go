package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apodwikat/abtest/internal/domain"
	"github.com/apodwikat/abtest/internal/experiment"
	"github.com/apodwikat/abtest/internal/ports"
)

// Service binds the calculator to the applicant dataset, the experiment
// simulator and the run history.
type Service struct {
	repo    ports.ApplicantRepository
	sim     *experiment.Simulator
	runs    ports.RunRepository
	metrics ports.MetricsExporter
	logger  *zap.Logger
	now     func() time.Time
	dataset string

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithDatasetName records name as the source of every run.
func WithDatasetName(name string) Option {
	return func(s *Service) { s.dataset = name }
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. runs and metrics may be nil.
func NewService(
	repo ports.ApplicantRepository,
	sim *experiment.Simulator,
	runs ports.RunRepository,
	metrics ports.MetricsExporter,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:    repo,
		sim:     sim,
		runs:    runs,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SampleSize returns the total observations needed to detect effectSize.
func (s *Service) SampleSize(effectSize float64) (int, error) {
	return RequiredSampleSize(effectSize)
}

// Probability returns the percent chance of collecting more than nObs
// incomplete-quiz applicants within days, based on the dataset's history.
func (s *Service) Probability(nObs, days int) (float64, bool) {
	counts := s.repo.IncompletePerDay()
	daily := make([]float64, len(counts))
	for i, c := range counts {
		daily[i] = float64(c.Count)
	}

	pct, ok := ProbabilityOfReaching(daily, nObs, days)
	if !ok {
		s.logger.Debug("not enough history for probability",
			zap.Int("history_days", len(daily)),
			zap.Int("days", days),
		)
	}
	return pct, ok
}

// ChiSquare tests the current group assignment for association with quiz
// completion. It returns nil when no usable 2x2 table exists.
func (s *Service) ChiSquare() *domain.ChiSquareResult {
	table := s.repo.ContingencyTable()
	s.logger.Debug("contingency table",
		zap.Any("rows", table.Rows),
		zap.Any("columns", table.Columns),
		zap.Any("counts", table.Counts),
	)
	return ChiSquareTest(table)
}

// ContingencyTable returns the current group by quiz-status table.
func (s *Service) ContingencyTable() domain.ContingencyTable {
	return s.repo.ContingencyTable()
}

// Reset clears the current group assignment.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.ResetGroups()
}

// RunExperiment resets any previous assignment, runs a new experiment over
// days, tests the result and records it. Failures to persist or export the
// run are logged and do not fail the call.
func (s *Service) RunExperiment(ctx context.Context, days int) (*domain.ExperimentRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sim.ResetGroups()
	assignment, err := s.sim.RunExperiment(days)
	if err != nil {
		return nil, fmt.Errorf("failed to run experiment: %w", err)
	}

	table := s.repo.ContingencyTable()
	run := &domain.ExperimentRun{
		ID:            uuid.NewString(),
		Dataset:       s.dataset,
		Days:          days,
		Window:        assignment.Window,
		AssignedCount: int64(len(assignment.Applicants)),
		Table:         table,
		ChiSquare:     ChiSquareTest(table),
		CreatedAt:     s.now().UTC(),
	}

	s.logger.Info("experiment completed",
		zap.String("run_id", run.ID),
		zap.Int("days", days),
		zap.Int64("assigned", run.AssignedCount),
		zap.Bool("tested", run.ChiSquare != nil),
	)

	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			s.logger.Warn("failed to persist experiment run", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	if s.metrics != nil {
		if err := s.metrics.ExportRun(ctx, run); err != nil {
			s.logger.Warn("failed to export experiment metrics", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	return run, nil
}

// Runs lists recorded experiment runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]*domain.ExperimentRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.List(ctx, limit)
}

// Run returns a recorded run, or nil when it does not exist.
func (s *Service) Run(ctx context.Context, id string) (*domain.ExperimentRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.GetByID(ctx, id)
}

// ApplicantCount returns the dataset size without copying it.
func (s *Service) ApplicantCount() int {
	return s.repo.Len()
}

// Applicants returns a snapshot of the dataset with current group labels.
func (s *Service) Applicants() []domain.Applicant {
	return s.repo.Applicants()
}
