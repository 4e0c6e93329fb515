// Package storage persists the local chat transcript.
package storage

import (
	"errors"
	"strings"

	"github.com/dyike/WealthGo/config"
	"github.com/dyike/WealthGo/internal/storage/sqlite"
)

var (
	// ErrHistoryDisabled means history_enabled is false.
	ErrHistoryDisabled = errors.New("history is disabled; enable it with `wealthgo config set history_enabled true`")
	// ErrHistoryPathNotConfigured means history_db_path is empty.
	ErrHistoryPathNotConfigured = errors.New("history_db_path is not configured")
)

// OpenHistory opens the transcript database named by cfg.
func OpenHistory(cfg *config.Config) (*sqlite.Store, error) {
	if !cfg.HistoryEnabled {
		return nil, ErrHistoryDisabled
	}
	path := strings.TrimSpace(cfg.HistoryDBPath)
	if path == "" {
		return nil, ErrHistoryPathNotConfigured
	}
	return sqlite.Open(path)
}
