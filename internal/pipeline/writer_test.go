package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/inmueble/internal/model"
)

func sampleBatch(t *testing.T) *model.Batch {
	t.Helper()
	return New(testConfig()).Run(context.Background(), "run-7", []model.RawRecord{
		{ID: "1", Description: saleText, Price: "$1,200,000"},
		{ID: "2"},
		{ID: "3", Description: "Casa en venta"},
	})
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	batch := sampleBatch(t)

	out, err := Write(dir, batch)
	require.NoError(t, err)

	var valid []map[string]any
	readJSON(t, out.Valid, &valid)
	require.Len(t, valid, 1)
	assert.Equal(t, "1", valid[0]["id"])
	assert.Contains(t, valid[0], "quality")
	assert.Contains(t, valid[0], "classification")

	var excluded []map[string]any
	readJSON(t, out.Excluded, &excluded)
	assert.Len(t, excluded, 2)

	var missing map[string][]string
	readJSON(t, out.Missing, &missing)
	assert.Len(t, missing, len(model.Schema))
	assert.Contains(t, missing[model.FieldPrice], "2")

	var summary Summary
	readJSON(t, out.Summary, &summary)
	assert.Equal(t, "run-7", summary.RunID)
	assert.Equal(t, 3, summary.Total)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4, "temp files must not be left behind")
}

func TestWrite_Deterministic(t *testing.T) {
	first, err := Write(filepath.Join(t.TempDir(), "a"), sampleBatch(t))
	require.NoError(t, err)
	second, err := Write(filepath.Join(t.TempDir(), "b"), sampleBatch(t))
	require.NoError(t, err)

	for _, pair := range [][2]string{{first.Valid, second.Valid}, {first.Excluded, second.Excluded}, {first.Missing, second.Missing}} {
		a, err := os.ReadFile(pair[0])
		require.NoError(t, err)
		b, err := os.ReadFile(pair[1])
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}
}

func TestWrite_AfterCancelledRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []model.RawRecord{
		{ID: "1", Description: saleText, Price: "$1,200,000"},
		{ID: "2"},
		{ID: "3", Description: "Casa en venta"},
	}
	batch := New(testConfig()).Run(ctx, "run-cancelled", records)
	require.Equal(t, len(records), len(batch.Valid)+len(batch.Excluded))

	dir := t.TempDir()
	out, err := Write(dir, batch)
	require.NoError(t, err)

	for _, name := range []string{ValidFile, ExcludedFile, MissingFile, SummaryFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	var summary Summary
	data, err := os.ReadFile(out.Summary)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "run-cancelled", summary.RunID)
	assert.Equal(t, len(records), summary.Total)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleBatch(t))

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Valid)
	assert.Equal(t, 2, s.Excluded)
	assert.Equal(t, 1, s.Reasons[model.ReasonMalformedInput])
	assert.Equal(t, 1, s.Reasons[model.ReasonUnresolvedPrice])
	require.NotEmpty(t, s.TopMissing)
	assert.LessOrEqual(t, len(s.TopMissing), topMissingLimit)
	for i := 1; i < len(s.TopMissing); i++ {
		assert.GreaterOrEqual(t, s.TopMissing[i-1].Count, s.TopMissing[i].Count)
	}

	var buf bytes.Buffer
	s.Print(&buf)
	assert.Contains(t, buf.String(), "Run run-7")
	assert.Contains(t, buf.String(), model.ReasonMalformedInput)
}

func TestReasonKey(t *testing.T) {
	assert.Equal(t, "internal processing error", reasonKey("internal processing error: boom"))
	assert.Equal(t, "suspicion threshold reached", reasonKey("suspicion threshold reached (2 >= 2)"))
	assert.Equal(t, "unresolved price", reasonKey("unresolved price"))
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}
