package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ppiankov/inmueble/internal/normalize"
)

// Location holds the resolved location fragments of a listing
type Location struct {
	Colony string
	City   string
	State  string
}

// states maps normalized spellings to the canonical state name
var states = map[string]string{
	"aguascalientes":      "Aguascalientes",
	"baja california":     "Baja California",
	"baja california sur": "Baja California Sur",
	"campeche":            "Campeche",
	"chiapas":             "Chiapas",
	"chihuahua":           "Chihuahua",
	"ciudad de mexico":    "Ciudad de México",
	"cdmx":                "Ciudad de México",
	"df":                  "Ciudad de México",
	"coahuila":            "Coahuila",
	"colima":              "Colima",
	"durango":             "Durango",
	"estado de mexico":    "Estado de México",
	"edomex":              "Estado de México",
	"guanajuato":          "Guanajuato",
	"guerrero":            "Guerrero",
	"hidalgo":             "Hidalgo",
	"jalisco":             "Jalisco",
	"michoacan":           "Michoacán",
	"morelos":             "Morelos",
	"nayarit":             "Nayarit",
	"nuevo leon":          "Nuevo León",
	"oaxaca":              "Oaxaca",
	"puebla":              "Puebla",
	"queretaro":           "Querétaro",
	"quintana roo":        "Quintana Roo",
	"san luis potosi":     "San Luis Potosí",
	"sinaloa":             "Sinaloa",
	"sonora":              "Sonora",
	"tabasco":             "Tabasco",
	"tamaulipas":          "Tamaulipas",
	"tlaxcala":            "Tlaxcala",
	"veracruz":            "Veracruz",
	"yucatan":             "Yucatán",
	"zacatecas":           "Zacatecas",
}

var (
	statePattern  = re(`\b(?:baja california sur|baja california|ciudad de mexico|estado de mexico|nuevo leon|quintana roo|san luis potosi|aguascalientes|campeche|chiapas|chihuahua|cdmx|coahuila|colima|durango|edomex|guanajuato|guerrero|hidalgo|jalisco|michoacan|morelos|nayarit|oaxaca|puebla|queretaro|sinaloa|sonora|tabasco|tamaulipas|tlaxcala|veracruz|yucatan|zacatecas)\b`)
	colonyPattern = re(`\b(?:col\.?|colonia|fracc?\.?|fraccionamiento)\s+([a-z0-9][a-z0-9 ]*?)\s*(?:[,.;:(]|\s+(?:en|cerca|a\s+\d|junto|con|de\s+\d|\$)\b|$)`)
	colonyPrefix  = re(`(?i)^\s*(?:col\.?|colonia|fracc?\.?|fraccionamiento)\s+`)
)

// State resolves a normalized fragment to a canonical state name
func State(fragment string) (string, bool) {
	s, ok := states[strings.TrimSpace(fragment)]
	return s, ok
}

// ParseLocation splits a raw "Colonia, Ciudad, Estado" string. Two parts
// are read as city and state, a single part as a city unless it names a
// state.
func ParseLocation(raw string) Location {
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	var loc Location
	switch len(parts) {
	case 0:
		return loc
	case 1:
		if s, ok := State(normalize.Text(parts[0])); ok {
			loc.State = s
		} else {
			loc.City = parts[0]
		}
		return loc
	case 2:
		loc.City, loc.State = parts[0], parts[1]
	default:
		n := len(parts)
		loc.Colony, loc.City, loc.State = parts[n-3], parts[n-2], parts[n-1]
	}

	if s, ok := State(normalize.Text(loc.State)); ok {
		loc.State = s
	}
	loc.Colony = stripColonyPrefix(loc.Colony)
	return loc
}

func stripColonyPrefix(s string) string {
	return strings.TrimSpace(colonyPrefix.ReplaceAllString(s, ""))
}

// LocationFromText finds colony and state mentions in normalized text
func LocationFromText(text string) Location {
	var loc Location
	if m := colonyPattern.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		if name != "" && len(name) <= 60 {
			loc.Colony = titleCase(name)
		}
	}
	if m := statePattern.FindString(text); m != "" {
		loc.State = states[m]
	}
	return loc
}

func titleCase(s string) string {
	return cases.Title(language.Spanish).String(s)
}
