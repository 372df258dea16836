package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

// Client wraps a SQL database connection with Turso-specific retry logic.
type Client struct {
	*sql.DB
	Remote bool
}

// New opens and pings a database client. databaseURL is either a remote
// libsql:// (or https://) URL or a local SQLite path.
func New(ctx context.Context, databaseURL, authToken string) (*Client, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	remote := strings.Contains(databaseURL, "://")
	connStr := databaseURL
	switch {
	case remote && authToken != "":
		connStr += "?authToken=" + authToken
	case !remote && !strings.HasPrefix(databaseURL, "file:"):
		connStr = "file:" + databaseURL
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if remote {
		// Turso closes idle Hrana streams aggressively.
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(0)
	} else {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{DB: db, Remote: remote}, nil
}

// IsStreamError checks if an error is a Turso "stream not found" error.
func IsStreamError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stream not found")
}

// WithRetry executes a function with retry logic for Turso stream errors.
// It retries up to maxRetries times when encountering "stream not found" errors.
func WithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}

		if !IsStreamError(err) || attempt == maxRetries {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	return result, err
}
