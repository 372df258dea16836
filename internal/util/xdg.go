package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appName = "abtest"

// GetXDGDataDir returns the XDG data directory for abtest.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/abtest
func GetXDGDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// EnsureParentDir creates the directory holding a local database file.
// Remote URLs are left alone.
func EnsureParentDir(path string) error {
	if strings.Contains(path, "://") {
		return nil
	}
	path = strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
