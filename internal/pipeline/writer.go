package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/inmueble/internal/model"
)

// Output artifact names
const (
	ValidFile    = "valid.json"
	ExcludedFile = "excluded.json"
	MissingFile  = "missing_index.json"
	SummaryFile  = "summary.json"
)

// Artifacts lists the files written for a batch
type Artifacts struct {
	Valid    string `json:"valid"`
	Excluded string `json:"excluded"`
	Missing  string `json:"missing"`
	Summary  string `json:"summary"`
}

// Write persists the batch partitions, the missing-field index and the run
// summary into dir. Each file is replaced atomically. Write takes no
// context: a batch cut short by cancellation has every record classified
// and is still written in full.
func Write(dir string, batch *model.Batch) (*Artifacts, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	out := &Artifacts{
		Valid:    filepath.Join(dir, ValidFile),
		Excluded: filepath.Join(dir, ExcludedFile),
		Missing:  filepath.Join(dir, MissingFile),
		Summary:  filepath.Join(dir, SummaryFile),
	}

	files := []struct {
		path string
		v    any
	}{
		{out.Valid, batch.Valid},
		{out.Excluded, batch.Excluded},
		{out.Missing, batch.Missing},
		{out.Summary, Summarize(batch)},
	}

	var g errgroup.Group
	for _, f := range files {
		g.Go(func() error {
			return writeJSON(f.path, f.v)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("batch written",
		zap.String("run_id", batch.RunID),
		zap.String("dir", dir),
		zap.Int("valid", len(batch.Valid)),
		zap.Int("excluded", len(batch.Excluded)))

	return out, nil
}

// writeJSON writes v to a temp file next to path and renames it into place
func writeJSON(path string, v any) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
