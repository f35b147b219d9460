package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ppiankov/inmueble/internal/model"
)

// CSVRecorder appends metrics to a CSV file, writing the header only when
// the file is new
type CSVRecorder struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewCSVRecorder opens path for appending
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create metrics dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open metrics file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat metrics file: %w", err)
	}

	r := &CSVRecorder{file: file, w: csv.NewWriter(file)}
	if info.Size() == 0 {
		if err := r.write(Columns); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return r, nil
}

// Record appends one row and flushes it
func (r *CSVRecorder) Record(m model.Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(row(m))
}

func (r *CSVRecorder) write(record []string) error {
	if err := r.w.Write(record); err != nil {
		return fmt.Errorf("write metric: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("flush metric: %w", err)
	}
	return nil
}

// Close closes the file
func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}

func row(m model.Metric) []string {
	return []string{
		m.RunID,
		m.RecordID,
		m.Provider,
		m.Model,
		strconv.Itoa(m.Tier),
		strconv.FormatFloat(m.Duration.Seconds(), 'f', 3, 64),
		strconv.Itoa(m.Tokens),
		strconv.Itoa(m.Resolved),
		strconv.FormatBool(m.Success),
		m.Error,
		m.Timestamp.UTC().Format(time.RFC3339),
	}
}
