// Package extract turns normalized listing text into typed schema fields.
// Every field is resolved by an ordered list of patterns kept as data;
// the first pattern that matches wins.
package extract

import (
	"strings"

	"github.com/ppiankov/inmueble/internal/model"
	"github.com/ppiankov/inmueble/internal/normalize"
)

// Document is the normalized view of a raw record
type Document struct {
	Title       string
	Description string
	Price       string
	Location    string
}

// NewDocument normalizes every text fragment of a raw record
func NewDocument(raw model.RawRecord) Document {
	return Document{
		Title:       normalize.Text(raw.Title),
		Description: normalize.Text(raw.Description),
		Price:       normalize.Text(raw.Price),
		Location:    normalize.Text(raw.Location),
	}
}

// Text returns title and description joined, the text sent to inference
func (d Document) Text() string {
	return join(d.Title, d.Description)
}

// Combined returns every fragment joined, used for cue detection
func (d Document) Combined() string {
	return join(d.Title, d.Description, d.Price, d.Location)
}

// Scope selects which fragments an extractor reads, in order
type Scope int

const (
	ScopeCombined    Scope = iota // One pass over the combined text
	ScopeDescription              // Description, then title if nothing matched
	ScopeTitle                    // Title, then description if nothing matched
)

// Sources returns the texts to try for a scope
func (d Document) Sources(scope Scope) []string {
	switch scope {
	case ScopeDescription:
		return []string{d.Description, d.Title}
	case ScopeTitle:
		return []string{d.Title, d.Description}
	default:
		return []string{d.Combined()}
	}
}

func join(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ". ")
}
