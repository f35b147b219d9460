package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/inmueble/internal/model"
)

// FieldCount is the number of records that left a field null
type FieldCount struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// Summary aggregates a batch for reporting
type Summary struct {
	RunID        string         `json:"run_id"`
	Total        int            `json:"total"`
	Valid        int            `json:"valid"`
	Excluded     int            `json:"excluded"`
	Reasons      map[string]int `json:"reasons"` // Primary exclusion reason -> records
	Completeness float64        `json:"avg_completeness"`
	TopMissing   []FieldCount   `json:"top_missing"`
}

// topMissingLimit bounds Summary.TopMissing
const topMissingLimit = 10

// Summarize counts records per classification and primary exclusion
// reason, and ranks the fields most often left null.
func Summarize(batch *model.Batch) Summary {
	s := Summary{
		RunID:    batch.RunID,
		Total:    batch.Total(),
		Valid:    len(batch.Valid),
		Excluded: len(batch.Excluded),
		Reasons:  map[string]int{},
	}

	var completeness float64
	for _, r := range batch.Valid {
		completeness += r.Quality.Completeness
	}
	for _, r := range batch.Excluded {
		completeness += r.Quality.Completeness
		if len(r.Classification.Reasons) > 0 {
			s.Reasons[reasonKey(r.Classification.Reasons[0])]++
		}
	}
	if s.Total > 0 {
		s.Completeness = float64(int(completeness/float64(s.Total)*100+0.5)) / 100
	}

	for field, ids := range batch.Missing {
		if len(ids) > 0 {
			s.TopMissing = append(s.TopMissing, FieldCount{Field: field, Count: len(ids)})
		}
	}
	sort.Slice(s.TopMissing, func(i, j int) bool {
		if s.TopMissing[i].Count != s.TopMissing[j].Count {
			return s.TopMissing[i].Count > s.TopMissing[j].Count
		}
		return s.TopMissing[i].Field < s.TopMissing[j].Field
	})
	if len(s.TopMissing) > topMissingLimit {
		s.TopMissing = s.TopMissing[:topMissingLimit]
	}
	if s.TopMissing == nil {
		s.TopMissing = []FieldCount{}
	}

	return s
}

// reasonKey drops the per-record detail from a reason
// ("internal processing error: boom" -> "internal processing error")
func reasonKey(reason string) string {
	if i := strings.IndexAny(reason, ":("); i > 0 {
		return strings.TrimSpace(reason[:i])
	}
	return reason
}

// Print writes a human-readable summary
func (s Summary) Print(w io.Writer) {
	pct := func(n int) float64 {
		if s.Total == 0 {
			return 0
		}
		return float64(n) / float64(s.Total) * 100
	}

	fmt.Fprintf(w, "Run %s\n", s.RunID)
	fmt.Fprintf(w, "  Records:   %s\n", humanize.Comma(int64(s.Total)))
	fmt.Fprintf(w, "  Valid:     %s (%.1f%%)\n", humanize.Comma(int64(s.Valid)), pct(s.Valid))
	fmt.Fprintf(w, "  Excluded:  %s (%.1f%%)\n", humanize.Comma(int64(s.Excluded)), pct(s.Excluded))
	fmt.Fprintf(w, "  Avg completeness: %.2f%%\n", s.Completeness)

	if len(s.Reasons) > 0 {
		reasons := make([]string, 0, len(s.Reasons))
		for r := range s.Reasons {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)

		fmt.Fprintf(w, "\nExclusion reasons:\n")
		for _, r := range reasons {
			fmt.Fprintf(w, "  %-40s %s\n", r, humanize.Comma(int64(s.Reasons[r])))
		}
	}

	if len(s.TopMissing) > 0 {
		fmt.Fprintf(w, "\nMost missing fields:\n")
		for _, fc := range s.TopMissing {
			fmt.Fprintf(w, "  %-24s %s\n", fc.Field, humanize.Comma(int64(fc.Count)))
		}
	}
}
