package metrics

import (
	"sync"

	"github.com/ppiankov/inmueble/internal/model"
)

// MemoryRecorder keeps metrics in memory
type MemoryRecorder struct {
	mu      sync.Mutex
	metrics []model.Metric
}

// NewMemoryRecorder creates an empty recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends m
func (r *MemoryRecorder) Record(m model.Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, m)
	return nil
}

// Metrics returns a copy of the recorded metrics
func (r *MemoryRecorder) Metrics() []model.Metric {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Metric(nil), r.metrics...)
}

// Close does nothing
func (r *MemoryRecorder) Close() error { return nil }
