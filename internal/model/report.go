package model

import "time"

// Quality is the completeness and suspicion assessment of one property
type Quality struct {
	Completeness     float64  `json:"completeness"`      // 0-100, share of non-null schema fields
	Suspicion        int      `json:"suspicion"`         // Number of triggered implausibility rules
	SuspicionReasons []string `json:"suspicion_reasons"` // One human-readable reason per triggered rule
}

// Status is the terminal state of a classified record
type Status string

const (
	StatusValid    Status = "valid"
	StatusExcluded Status = "excluded"
)

// Classification is the verdict reached for a record
type Classification struct {
	Status  Status   `json:"status"`
	Reasons []string `json:"reasons"`
}

// Exclusion reasons
const (
	ReasonMalformedInput   = "malformed input"
	ReasonMissingID        = "missing identifier"
	ReasonUnresolvedPrice  = "unresolved price"
	ReasonUnresolvedKind   = "unresolved operation and property type"
	ReasonInternalError    = "internal processing error"
	ReasonSuspicionReached = "suspicion threshold reached"
)

// Result is a processed record: the structured property enriched with
// its quality assessment and classification.
type Result struct {
	*Property
	Quality        Quality        `json:"quality"`
	Classification Classification `json:"classification"`
}

// IsValid reports whether the record was classified valid
func (r *Result) IsValid() bool {
	return r.Classification.Status == StatusValid
}

// Batch holds the partitioned outcome of a batch run
type Batch struct {
	RunID    string              `json:"run_id"`
	Valid    []*Result           `json:"valid"`
	Excluded []*Result           `json:"excluded"`
	Missing  map[string][]string `json:"missing"` // Field name -> record IDs left null
}

// Total returns the number of classified records
func (b *Batch) Total() int {
	return len(b.Valid) + len(b.Excluded)
}

// Metric is one append-only record per external inference invocation
type Metric struct {
	RunID     string        `json:"run_id"`
	RecordID  string        `json:"record_id"`
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	Tier      int           `json:"tier"`
	Duration  time.Duration `json:"duration"`
	Tokens    int           `json:"tokens"`
	Resolved  int           `json:"resolved"` // Fields answered with a usable value
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
