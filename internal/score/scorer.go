package score

import (
	"math"

	"github.com/ppiankov/inmueble/internal/model"
)

// Scorer computes completeness and suspicion for structured properties
type Scorer struct {
	rules []Rule
}

// NewScorer creates a scorer with the default rule set for cfg followed by
// any extra rules.
func NewScorer(cfg model.ScoringConfig, extra ...Rule) *Scorer {
	rules := DefaultRules(cfg)
	rules = append(rules, extra...)
	return &Scorer{rules: rules}
}

// Rules returns the rules in evaluation order
func (s *Scorer) Rules() []Rule {
	return s.rules
}

// Score assesses one property. Rules run in order and each one contributes
// at most one point and one reason.
func (s *Scorer) Score(p *model.Property) model.Quality {
	q := model.Quality{
		Completeness:     Completeness(p),
		SuspicionReasons: []string{},
	}

	for _, rule := range s.rules {
		if reason, hit := rule.Check(p); hit {
			q.Suspicion++
			q.SuspicionReasons = append(q.SuspicionReasons, reason)
		}
	}

	return q
}

// Completeness is the share of non-null schema fields, as a percentage
// rounded to two decimals.
func Completeness(p *model.Property) float64 {
	if p == nil || len(model.Schema) == 0 {
		return 0
	}
	pct := float64(p.SetCount()) / float64(len(model.Schema)) * 100
	return math.Round(pct*100) / 100
}
