// Package migrate applies the embedded SQL migrations.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/apodwikat/abtest/migrations"
)

// Migration is a single schema version with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Migrator runs migrations against one database.
type Migrator struct {
	db     *sql.DB
	fsys   fs.FS
	logger *zap.Logger
}

// New creates a Migrator over the embedded migrations.
func New(db *sql.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, fsys: migrations.FS, logger: logger}
}

// EnsureTable creates the schema_migrations table if it doesn't exist.
func (m *Migrator) EnsureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// CurrentVersion returns the applied version and whether the last run failed midway.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, bool, error) {
	var version, dirty int
	err := m.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty == 1, nil
}

func (m *Migrator) setVersion(ctx context.Context, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}

	if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	_, err := m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
	return err
}

// Load reads every migration, sorted by version. Down files are optional.
func (m *Migrator) Load() ([]Migration, error) {
	var result []Migration

	err := fs.WalkDir(m.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := upPattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}
		version, _ := strconv.Atoi(matches[1])

		upSQL, err := fs.ReadFile(m.fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		downSQL, _ := fs.ReadFile(m.fsys, strings.TrimSuffix(path, ".up.sql")+".down.sql")

		result = append(result, Migration{
			Version: version,
			Name:    matches[2],
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration, up bool) error {
	direction, content, target := "up", mig.UpSQL, mig.Version
	if !up {
		direction, content, target = "down", mig.DownSQL, mig.Version-1
	}

	m.logger.Info("applying migration",
		zap.String("direction", direction),
		zap.Int("version", mig.Version),
		zap.String("name", mig.Name),
	)

	if err := m.setVersion(ctx, mig.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}

	// Migrations contain no semicolons inside string literals.
	for _, stmt := range strings.Split(content, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d %s: %w", mig.Version, direction, err)
		}
	}

	if err := m.setVersion(ctx, target, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	return m.To(ctx, -1)
}

// To migrates up or down to target. A negative target means the latest version.
func (m *Migrator) To(ctx context.Context, target int) error {
	if err := m.EnsureTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, dirty, err := m.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d", current)
	}

	all, err := m.Load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if target < 0 && len(all) > 0 {
		target = all[len(all)-1].Version
	}

	switch {
	case target > current:
		for _, mig := range all {
			if mig.Version <= current || mig.Version > target {
				continue
			}
			if err := m.apply(ctx, mig, true); err != nil {
				return err
			}
		}
	case target < current:
		for i := len(all) - 1; i >= 0; i-- {
			mig := all[i]
			if mig.Version > current || mig.Version <= target {
				continue
			}
			if mig.DownSQL == "" {
				return fmt.Errorf("no down migration for version %d", mig.Version)
			}
			if err := m.apply(ctx, mig, false); err != nil {
				return err
			}
		}
	default:
		m.logger.Debug("schema up to date", zap.Int("version", current))
	}
	return nil
}

// RunAll applies every pending migration on db.
func RunAll(ctx context.Context, db *sql.DB) error {
	return New(db, nil).Up(ctx)
}
