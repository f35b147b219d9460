// Package classify reaches the terminal valid/excluded verdict for a record.
package classify

import (
	"fmt"
	"strings"

	"github.com/ppiankov/inmueble/internal/model"
)

// Classifier applies the validity conditions in a fixed order
type Classifier struct {
	threshold int
}

// New creates a classifier; records whose suspicion reaches threshold are
// excluded. A non-positive threshold falls back to 2.
func New(threshold int) *Classifier {
	if threshold <= 0 {
		threshold = 2
	}
	return &Classifier{threshold: threshold}
}

// Classify returns valid only when the record has an identifier, a price,
// an operation or property type and a suspicion below the threshold.
// Otherwise the first failing condition leads the reasons, followed by
// every suspicion reason.
func (c *Classifier) Classify(p *model.Property, q model.Quality) model.Classification {
	if reason, failed := c.firstFailure(p, q); failed {
		reasons := []string{reason}
		reasons = append(reasons, q.SuspicionReasons...)
		return model.Classification{Status: model.StatusExcluded, Reasons: reasons}
	}

	return model.Classification{
		Status:  model.StatusValid,
		Reasons: append([]string{}, q.SuspicionReasons...),
	}
}

func (c *Classifier) firstFailure(p *model.Property, q model.Quality) (string, bool) {
	switch {
	case p == nil || strings.TrimSpace(p.ID) == "":
		return model.ReasonMissingID, true
	case !p.IsSet(model.FieldPrice):
		return model.ReasonUnresolvedPrice, true
	case !p.IsSet(model.FieldOperationType) && !p.IsSet(model.FieldPropertyType):
		return model.ReasonUnresolvedKind, true
	case q.Suspicion >= c.threshold:
		return fmt.Sprintf("%s (%d >= %d)", model.ReasonSuspicionReached, q.Suspicion, c.threshold), true
	}
	return "", false
}

// Malformed builds the excluded result for a record that never reached
// extraction.
func Malformed(raw model.RawRecord) *model.Result {
	reasons := []string{model.ReasonMalformedInput}
	if strings.TrimSpace(raw.ID) == "" {
		reasons = append(reasons, model.ReasonMissingID)
	}
	return excluded(raw, reasons)
}

// InternalError builds the excluded result for a record whose processing
// failed unexpectedly.
func InternalError(raw model.RawRecord, detail string) *model.Result {
	return excluded(raw, []string{fmt.Sprintf("%s: %s", model.ReasonInternalError, detail)})
}

func excluded(raw model.RawRecord, reasons []string) *model.Result {
	return &model.Result{
		Property: model.NewProperty(raw),
		Quality:  model.Quality{SuspicionReasons: []string{}},
		Classification: model.Classification{
			Status:  model.StatusExcluded,
			Reasons: reasons,
		},
	}
}
