// Package normalize canonicalizes listing text and numeric tokens before
// any pattern matching runs.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Text lower-cases, strips diacritics, drops HTML markup and collapses
// whitespace. Compatibility characters are decomposed too, so "m²" becomes
// "m2" and "ñ" becomes "n". Never fails; empty input yields "".
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	if looksLikeHTML(s) {
		s = StripHTML(s)
	}

	// Transformers carry state, so the chain is built per call
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Join normalizes and joins several text fragments with ". "
func Join(parts ...string) string {
	var out []string
	for _, p := range parts {
		if n := Text(p); n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, ". ")
}

// StripHTML extracts the visible text of an HTML fragment, skipping
// scripts and styles. Block-level tags become whitespace.
func StripHTML(s string) string {
	var buf strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
			}
		case html.SelfClosingTagToken:
			buf.WriteByte(' ')
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				skip++
			}
			buf.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				if skip > 0 {
					skip--
				}
			}
			buf.WriteByte(' ')
		}
	}
}

func looksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}
