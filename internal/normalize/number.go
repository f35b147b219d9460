package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var spelledNumbers = map[string]int{
	"cero": 0, "un": 1, "uno": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4,
	"cinco": 5, "seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
	"once": 11, "doce": 12, "trece": 13, "catorce": 14, "quince": 15, "veinte": 20,
}

// SpelledNumberPattern matches any spelled-out number understood by Count
const SpelledNumberPattern = `cero|un|uno|una|dos|tres|cuatro|cinco|seis|siete|ocho|nueve|diez|once|doce|trece|catorce|quince|veinte`

// SpelledNumber converts a Spanish number word ("dos", "una") to its value
func SpelledNumber(word string) (int, bool) {
	n, ok := spelledNumbers[strings.TrimSpace(word)]
	return n, ok
}

// Count parses a count token, either digits or a spelled-out number
func Count(tok string) (int, bool) {
	tok = strings.TrimSpace(tok)
	if n, ok := SpelledNumber(tok); ok {
		return n, true
	}
	f, ok := ParseNumber(tok)
	if !ok || f < 0 {
		return 0, false
	}
	return int(f), true
}

// ParseNumber parses a numeric token written with Mexican or European
// grouping ("1,200,000", "1.200.000", "250.00", "2,5").
func ParseNumber(tok string) (float64, bool) {
	tok = strings.TrimSpace(tok)
	tok = strings.TrimRight(tok, ".,")
	tok = strings.ReplaceAll(tok, " ", "")
	if tok == "" {
		return 0, false
	}

	lastComma := strings.LastIndexByte(tok, ',')
	lastDot := strings.LastIndexByte(tok, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Whichever separator comes last is the decimal point
		if lastDot > lastComma {
			tok = strings.ReplaceAll(tok, ",", "")
		} else {
			tok = strings.ReplaceAll(tok, ".", "")
			tok = strings.Replace(tok, ",", ".", 1)
		}
	case lastComma >= 0:
		if isThousandsGrouped(tok, ',') {
			tok = strings.ReplaceAll(tok, ",", "")
		} else {
			tok = strings.Replace(tok, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(tok, ".") > 1 || isThousandsGrouped(tok, '.') {
			tok = strings.ReplaceAll(tok, ".", "")
		}
	}

	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// isThousandsGrouped reports whether every group after the first has exactly
// three digits and the leading group is a plausible 1-3 digit prefix.
func isThousandsGrouped(tok string, sep byte) bool {
	groups := strings.Split(tok, string(sep))
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	if groups[0] == "0" {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// ApplyUnit scales a value by a magnitude suffix ("k", "mil", "m", "millones")
func ApplyUnit(v float64, unit string) float64 {
	switch strings.TrimSpace(unit) {
	case "k", "mil":
		return v * 1_000
	case "m", "mm", "mdp", "millon", "millones", "mdd":
		return v * 1_000_000
	}
	return v
}

var amountPattern = regexp.MustCompile(`(\d[\d.,]*)\s*(millones|millon|mdp|mdd|mil|mm|k|m)?\b`)

var usdPattern = regexp.MustCompile(`\b(?:usd|dolares|dlls?|mdd)\b|\bus\$|\bu\$s`)

// Amount parses a price-like string into a value, applying magnitude
// suffixes. "$1,200,000", "1.5 millones", "45 mil" and "850k" are accepted.
func Amount(s string) (float64, bool) {
	s = Text(s)
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, ok := ParseNumber(m[1])
	if !ok || v <= 0 {
		return 0, false
	}
	return ApplyUnit(v, m[2]), true
}

// Currency returns "USD" when the text carries a dollar cue, "" otherwise
func Currency(s string) string {
	if usdPattern.MatchString(Text(s)) {
		return "USD"
	}
	return ""
}
