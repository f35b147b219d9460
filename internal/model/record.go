package model

import "strings"

// RawRecord is one scraped listing as handed over by the scraper.
// It is never mutated by the pipeline.
type RawRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`    // Raw price representation ("$1,200,000", "45 mil", ...)
	Location    string `json:"location,omitempty"` // Raw location ("Colonia, Ciudad, Estado")
	Link        string `json:"link,omitempty"`
}

// HasText reports whether the record carries any free text to extract from
func (r RawRecord) HasText() bool {
	return strings.TrimSpace(r.Title) != "" || strings.TrimSpace(r.Description) != ""
}

// IsMalformed reports whether the record lacks the minimum shape required
// for extraction (an identifier and some text).
func (r RawRecord) IsMalformed() bool {
	return strings.TrimSpace(r.ID) == "" || !r.HasText()
}
