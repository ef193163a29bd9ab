package storage

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Open returns the recorder for backend.
func Open(backend, csvPath, dbPath string, logger *zap.Logger) (Recorder, error) {
	switch strings.ToLower(backend) {
	case "", BackendCSV:
		return NewFileRecorder(csvPath, logger)
	case BackendSQLite:
		return NewSQLiteRecorder(dbPath, logger)
	default:
		return nil, fmt.Errorf("unknown log backend: %s", backend)
	}
}
