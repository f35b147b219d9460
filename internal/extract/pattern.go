package extract

import (
	"regexp"
)

// Extractor resolves one schema field from normalized text
type Extractor interface {
	Field() string
	Extract(text string) (any, bool)
}

// Aggregate decides how several matches of the winning pattern combine
type Aggregate int

const (
	First Aggregate = iota // Value of the first accepted match
	Sum                    // Sum of all non-overlapping matches
)

// Pattern is one candidate rule of an extractor. Re is matched against the
// whole text; Value converts the submatches into a field value, or Const is
// used when Value is nil.
type Pattern struct {
	Re     *regexp.Regexp
	Value  func(groups []string) (any, bool)
	Const  any
	Reject func(text string, loc []int) bool // Context guard; true drops the match

	// Tail is applied repeatedly, anchored, right after each accepted match.
	// Each tail match with a non-empty first group adds its count, which is
	// how itemized mentions ("2 recamaras en pb, 1 en planta alta") total up.
	Tail *regexp.Regexp
}

// PatternExtractor tries its patterns in priority order; the first pattern
// producing any accepted match wins.
type PatternExtractor struct {
	field     string
	patterns  []Pattern
	aggregate Aggregate
}

// NewPatternExtractor creates an extractor for a field
func NewPatternExtractor(field string, aggregate Aggregate, patterns ...Pattern) *PatternExtractor {
	return &PatternExtractor{
		field:     field,
		patterns:  patterns,
		aggregate: aggregate,
	}
}

// Field returns the schema field this extractor resolves
func (e *PatternExtractor) Field() string {
	return e.field
}

// Extract returns the field value found in text, if any
func (e *PatternExtractor) Extract(text string) (any, bool) {
	if text == "" {
		return nil, false
	}

	for _, p := range e.patterns {
		values := p.collect(text, e.aggregate == First)
		if len(values) == 0 {
			continue
		}
		return reduce(values, e.aggregate), true
	}

	return nil, false
}

// collect returns the values of every accepted, non-overlapping match
func (p Pattern) collect(text string, firstOnly bool) []any {
	var values []any
	consumed := 0

	for _, loc := range p.Re.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] < consumed {
			continue
		}
		if p.Reject != nil && p.Reject(text, loc) {
			continue
		}

		v, ok := p.value(submatches(text, loc))
		if !ok {
			continue
		}
		values = append(values, v)
		consumed = loc[1]

		if firstOnly {
			return values
		}

		if p.Tail != nil {
			var extra []any
			extra, consumed = p.tail(text, consumed)
			values = append(values, extra...)
		}
	}

	return values
}

func (p Pattern) value(groups []string) (any, bool) {
	if p.Value == nil {
		return p.Const, p.Const != nil
	}
	return p.Value(groups)
}

// tail consumes itemized continuations starting at pos
func (p Pattern) tail(text string, pos int) ([]any, int) {
	var values []any
	for pos < len(text) {
		loc := p.Tail.FindStringSubmatchIndex(text[pos:])
		if loc == nil || loc[1] == 0 {
			break
		}
		if len(loc) >= 4 && loc[2] >= 0 {
			if n, ok := countValue([]string{"", text[pos+loc[2] : pos+loc[3]]}); ok {
				values = append(values, n)
			}
		}
		pos += loc[1]
	}
	return values, pos
}

func submatches(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}

// reduce combines matched values. Sums of ints stay ints.
func reduce(values []any, aggregate Aggregate) any {
	if aggregate == First || len(values) == 1 {
		return values[0]
	}

	allInt := true
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		switch n := v.(type) {
		case int:
			nums = append(nums, float64(n))
		case float64:
			allInt = false
			nums = append(nums, n)
		default:
			return values[0]
		}
	}

	var out float64
	for _, n := range nums {
		out += n
	}

	if allInt {
		return int(out)
	}
	return out
}
