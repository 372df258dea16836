package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apodwikat/abtest/internal/domain"
	"github.com/apodwikat/abtest/internal/infrastructure/database"
)

const readRetries = 2

// timeLayout is fixed width so that text order in created_at is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type tableJSON struct {
	Rows    []domain.Group      `json:"rows"`
	Columns []domain.QuizStatus `json:"columns"`
	Counts  [][]int64           `json:"counts"`
}

const runColumns = `id, dataset, days, window_start, window_end, assigned_count, table_json,
	chi_square_df, chi_square_p, chi_square_stat, created_at`

// RunRepository stores experiment runs in the experiment_runs table.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *domain.ExperimentRun) error {
	table, err := json.Marshal(tableJSON{
		Rows:    run.Table.Rows,
		Columns: run.Table.Columns,
		Counts:  run.Table.Counts,
	})
	if err != nil {
		return fmt.Errorf("failed to encode contingency table: %w", err)
	}

	var df sql.NullInt64
	var p, stat sql.NullFloat64
	if run.ChiSquare != nil {
		df = sql.NullInt64{Int64: int64(run.ChiSquare.DF), Valid: true}
		p = sql.NullFloat64{Float64: run.ChiSquare.PValue, Valid: true}
		stat = sql.NullFloat64{Float64: run.ChiSquare.Statistic, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO experiment_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Dataset,
		run.Days,
		run.Window.Start.UTC().Format(timeLayout),
		run.Window.End.UTC().Format(timeLayout),
		run.AssignedCount,
		string(table),
		df, p, stat,
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert experiment run: %w", err)
	}
	return nil
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.ExperimentRun, error) {
	run, err := database.WithRetry(ctx, readRetries, func() (*domain.ExperimentRun, error) {
		return scanRun(r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM experiment_runs WHERE id = ?`, id))
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get experiment run: %w", err)
	}
	return run, nil
}

// List returns runs newest first. A non-positive limit returns every run.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*domain.ExperimentRun, error) {
	query := `SELECT ` + runColumns + ` FROM experiment_runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := database.WithRetry(ctx, readRetries, func() (*sql.Rows, error) {
		return r.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list experiment runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*domain.ExperimentRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experiment run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *RunRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM experiment_runs`); err != nil {
		return fmt.Errorf("failed to delete experiment runs: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.ExperimentRun, error) {
	var (
		run                          domain.ExperimentRun
		start, end, table, createdAt string
		df                           sql.NullInt64
		p, stat                      sql.NullFloat64
	)
	err := s.Scan(&run.ID, &run.Dataset, &run.Days, &start, &end, &run.AssignedCount,
		&table, &df, &p, &stat, &createdAt)
	if err != nil {
		return nil, err
	}

	run.Window.Start = parseTime(start)
	run.Window.End = parseTime(end)
	run.CreatedAt = parseTime(createdAt)

	var t tableJSON
	if err := json.Unmarshal([]byte(table), &t); err != nil {
		return nil, fmt.Errorf("failed to decode contingency table: %w", err)
	}
	run.Table = domain.ContingencyTable{Rows: t.Rows, Columns: t.Columns, Counts: t.Counts}

	if df.Valid && p.Valid && stat.Valid {
		run.ChiSquare = &domain.ChiSquareResult{
			DF:        int(df.Int64),
			PValue:    p.Float64,
			Statistic: stat.Float64,
		}
	}
	return &run, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
