// Package metrics appends one record per external inference invocation.
// Sinks are append-only; existing rows are never rewritten.
package metrics

import (
	"fmt"
	"strings"

	"github.com/ppiankov/inmueble/internal/model"
)

// Recorder receives fallback metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(m model.Metric) error
	Close() error
}

// Columns is the column order of tabular sinks
var Columns = []string{
	"run_id", "record_id", "provider", "model", "tier",
	"duration_s", "tokens", "resolved", "success", "error", "timestamp",
}

// Open builds the recorder named by cfg.Sink
func Open(cfg model.MetricsConfig) (Recorder, error) {
	switch strings.ToLower(cfg.Sink) {
	case "csv":
		return NewCSVRecorder(cfg.Path)
	case "sqlite":
		return OpenSQLiteRecorder(cfg.Path)
	case "memory":
		return NewMemoryRecorder(), nil
	case "", "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown metrics sink: %s (supported: csv, sqlite, memory, none)", cfg.Sink)
	}
}

// Nop discards every metric
type Nop struct{}

// Record discards m
func (Nop) Record(model.Metric) error { return nil }

// Close does nothing
func (Nop) Close() error { return nil }
