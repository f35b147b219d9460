package worker

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/inmueble/internal/model"
)

// mockProcessor implements Processor
type mockProcessor struct {
	failID  string
	panicID string
}

func (m *mockProcessor) Process(ctx context.Context, raw model.RawRecord) (*model.Result, error) {
	time.Sleep(time.Millisecond) // Simulate work
	switch raw.ID {
	case m.failID:
		return nil, errors.New("extract error")
	case m.panicID:
		panic("nil map")
	}
	return &model.Result{
		Property:       model.NewProperty(raw),
		Classification: model.Classification{Status: model.StatusValid},
	}, nil
}

func records(ids ...string) []model.RawRecord {
	out := make([]model.RawRecord, len(ids))
	for i, id := range ids {
		out[i] = model.RawRecord{ID: id, Title: "casa " + id}
	}
	return out
}

func ids(results []*RecordResult) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.Result.ID)
	}
	sort.Strings(out)
	return out
}

func TestBatchProcessor_ProcessRecords(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{}, 2)

	results := processor.ProcessRecords(context.Background(), records("a", "b", "c"))

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Record.ID, res.Error)
		}
		if !res.Result.IsValid() {
			t.Errorf("expected valid result for %s", res.Record.ID)
		}
	}
	if got := strings.Join(ids(results), ","); got != "a,b,c" {
		t.Errorf("expected every record once, got %s", got)
	}
}

func TestBatchProcessor_ErrorIsolated(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{failID: "b"}, 2)

	results := processor.ProcessRecords(context.Background(), records("a", "b", "c"))
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for _, res := range results {
		if res.Record.ID != "b" {
			continue
		}
		if res.GetError() == nil {
			t.Error("expected error for failing record")
		}
		if res.Result.IsValid() {
			t.Error("expected failing record to be excluded")
		}
		if want := "internal processing error: extract error"; res.Result.Classification.Reasons[0] != want {
			t.Errorf("expected reason %q, got %q", want, res.Result.Classification.Reasons[0])
		}
	}
}

func TestBatchProcessor_PanicIsolated(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{panicID: "boom"}, 3)

	results := processor.ProcessRecords(context.Background(), records("a", "boom", "c", "d"))
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	excluded := 0
	for _, res := range results {
		if !res.Result.IsValid() {
			excluded++
			if !strings.Contains(res.Result.Classification.Reasons[0], "nil map") {
				t.Errorf("expected panic detail in reason, got %v", res.Result.Classification.Reasons)
			}
		}
	}
	if excluded != 1 {
		t.Errorf("expected 1 excluded record, got %d", excluded)
	}
}

func TestBatchProcessor_ProcessRecords_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{}, 2)

	results := processor.ProcessRecords(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockProcessor{}, 2)
	results := processor.ProcessRecords(ctx, records("a", "b", "c", "d", "e"))

	if len(results) != 5 {
		t.Fatalf("expected a result for every record, got %d", len(results))
	}
	if got := strings.Join(ids(results), ","); got != "a,b,c,d,e" {
		t.Errorf("expected every record once, got %s", got)
	}
}

func TestRecordResult_GetError(t *testing.T) {
	r1 := &RecordResult{Record: model.RawRecord{ID: "a"}}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("failed")
	r2 := &RecordResult{Record: model.RawRecord{ID: "a"}, Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
