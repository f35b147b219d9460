package extract

import (
	"regexp"

	"github.com/ppiankov/inmueble/internal/model"
	"github.com/ppiankov/inmueble/internal/normalize"
)

// Building blocks shared by the pattern tables. All patterns run on
// normalized text: lower case, no diacritics, single spaces.
const (
	num     = `\b(\d+(?:[.,]5)?|(?:` + normalize.SpelledNumberPattern + `)\b)`
	area    = `(\d[\d.,]*\d|\d)`
	unit    = `(?:m2|mts2|mt2|mts|mt|metros?\s+cuadrados|metros?|m)\b`
	sqUnit  = `(?:m2|mts2|mt2|mts|mt|metros?\s+cuadrados)\b`
	linUnit = `(?:(?:m|mts?|metros?|ml)\b)?`
	floorAt = `(?:(?:la|el)\s+)?(?:planta\s+(?:baja|alta)|pb|pa|(?:primer|segundo|tercer)[oa]?(?:\s+(?:piso|nivel|planta))?|(?:piso|nivel)\s+\w+)\b`

	bedroomSyn = `(?:recamaras?|recs?\b\.?|habitacion(?:es)?|dormitorios?|cuartos?|alcobas?)`
	bathSyn    = `(?:banos?|wc|sanitarios?)`
	parkingSyn = `(?:cajon(?:es)?(?:\s+de\s+estacionamiento)?|lugar(?:es)?\s+de\s+estacionamiento|estacionamientos?|autos?|coches?|carros?)\b`
	levelSyn   = `(?:nivel(?:es)?|pisos?|plantas?)\b`
)

func re(expr string) *regexp.Regexp {
	return regexp.MustCompile(expr)
}

// tailFor builds the itemized continuation of a count synonym
func tailFor(syn string) *regexp.Regexp {
	return re(`^(?:\s*en\s+` + floorAt + `|\s*(?:,|\by\b)\s*` + num + `\s+(?:mas\s+)?(?:` + syn + `\s+)?en\s+` + floorAt + `)`)
}

func countValue(groups []string) (any, bool) {
	if len(groups) < 2 {
		return nil, false
	}
	n, ok := normalize.Count(groups[1])
	if !ok {
		return nil, false
	}
	return n, true
}

func areaValue(groups []string) (any, bool) {
	if len(groups) < 2 {
		return nil, false
	}
	f, ok := normalize.ParseNumber(groups[1])
	if !ok || f <= 0 {
		return nil, false
	}
	return f, true
}

// followedBy rejects a match when the text right after it matches guard
func followedBy(guard string) func(string, []int) bool {
	g := re(`^` + guard)
	return func(text string, loc []int) bool {
		return g.MatchString(text[loc[1]:])
	}
}

// precededBy rejects a match when the text right before it matches guard
func precededBy(guard string) func(string, []int) bool {
	g := re(guard + `$`)
	return func(text string, loc []int) bool {
		start := loc[0] - 40
		if start < 0 {
			start = 0
		}
		return g.MatchString(text[start:loc[0]])
	}
}

func anyOf(guards ...func(string, []int) bool) func(string, []int) bool {
	return func(text string, loc []int) bool {
		for _, g := range guards {
			if g(text, loc) {
				return true
			}
		}
		return false
	}
}

var (
	afterSlash   = precededBy(`/`)
	wxhFollows   = followedBy(`\s*` + linUnit + `\s*(?:x|por)\s*\d`)
	builtFollows = followedBy(`\s*(?:` + unit + `\s*)?(?:de\s+)?(?:construccion|construidos?|construida|const\b)`)
	lotFollows   = followedBy(`\s*(?:` + unit + `\s*)?(?:de\s+)?(?:terreno|lote)\b`)
	countFollows = followedBy(`\s*(?:` + bedroomSyn + `|` + bathSyn + `|` + parkingSyn + `|` + levelSyn + `)`)
	builtBefore  = precededBy(`(?:construccion|construida|construidos|const\.?)\s*(?:de\s*)?:?\s*`)
	distance     = anyOf(
		precededBy(`\ba\s+(?:unos\s+)?`),
		followedBy(`\s*(?:de|del|a)\s+(?:la|el|distancia|frente|fondo|altura)\b`),
	)
)

func countExtractors() []Extractor {
	return []Extractor{
		NewPatternExtractor(model.FieldBedrooms, Sum,
			Pattern{
				Re:     re(num + `\s*` + bedroomSyn),
				Value:  countValue,
				Reject: followedBy(`\s+de\s+(?:servicio|lavado|tv|television|juegos|bano|azotea)`),
				Tail:   tailFor(bedroomSyn),
			},
			Pattern{Re: re(`\b(?:recamaras|habitaciones|dormitorios)\s*:\s*` + num), Value: countValue},
		),
		NewPatternExtractor(model.FieldBathrooms, Sum,
			Pattern{
				Re:     re(num + `\s*` + bathSyn + `\b`),
				Value:  countValue,
				Reject: afterSlash,
				Tail:   tailFor(bathSyn),
			},
			Pattern{Re: re(`\bbanos\s*:\s*` + num), Value: countValue},
		),
		NewPatternExtractor(model.FieldHalfBathrooms, Sum,
			Pattern{
				Re:    re(`(?:\b(\d+)\s+)?\bmedios?\s+banos?\b|\bbanos?\s+(?:completos\s+)?y\s+medio\b|\b\d+[.,]5\s*banos?\b|\b1/2\s*banos?\b`),
				Value: halfBathValue,
			},
		),
		NewPatternExtractor(model.FieldParkingSpaces, Sum,
			Pattern{Re: re(num + `\s*` + parkingSyn), Value: countValue},
			Pattern{Re: re(`\b(?:estacionamientos?|cajones)\s*:\s*` + num), Value: countValue},
		),
		NewPatternExtractor(model.FieldLevels, Sum,
			Pattern{
				Re:     re(num + `\s*` + levelSyn),
				Value:  countValue,
				Reject: precededBy(`\b(?:el|del)\s+`), // "el 3 piso" is a floor number
			},
			Pattern{Re: re(`\bniveles\s*:\s*` + num), Value: countValue},
			Pattern{Re: re(`\b(?:un\s+solo\s+nivel|una\s+sola\s+planta|todo\s+en\s+planta\s+baja)\b`), Const: 1},
			Pattern{Re: re(`\bplanta\s+baja\b.*\bplanta\s+alta\b`), Const: 2},
		),
		NewPatternExtractor(model.FieldAgeYears, First,
			Pattern{Re: re(num + `\s*anos?\s+(?:de\s+)?(?:antiguedad|construida|edad)`), Value: countValue},
			Pattern{Re: re(`\b(?:antiguedad|edad)\s*(?:de\s*)?:?\s*` + num + `\s*anos?`), Value: countValue},
			Pattern{Re: re(`\b(?:a\s+estrenar|para\s+estrenar|recien\s+construida|preventa|nueva\s+construccion)\b`), Const: 0},
		),
	}
}

func halfBathValue(groups []string) (any, bool) {
	if len(groups) > 1 && groups[1] != "" {
		return countValue(groups)
	}
	return 1, true
}

func areaExtractors() []Extractor {
	return []Extractor{
		NewPatternExtractor(model.FieldLotArea, First,
			Pattern{Re: re(`\b` + area + `\s*` + unit + `\s*(?:de\s+)?(?:terreno|superficie|lote)\b`), Value: areaValue},
			Pattern{
				Re:     re(`\b(?:superficie\s+(?:de\s+|del\s+)?terreno|superficie\s+total|superficie|sup\.?\s*(?:de\s+)?terreno|terreno)\s*(?:de\s+|:\s*|\s)\s*` + area),
				Value:  areaValue,
				Reject: anyOf(wxhFollows, builtFollows, countFollows),
			},
			Pattern{Re: re(`\blote\s*(?:de\s+|:\s*|\s)\s*` + area + `\s*` + sqUnit), Value: areaValue, Reject: wxhFollows},
			Pattern{
				Re:     re(`\b` + area + `\s*` + sqUnit),
				Value:  areaValue,
				Reject: anyOf(builtFollows, builtBefore, distance, wxhFollows),
			},
		),
		NewPatternExtractor(model.FieldConstructionArea, First,
			Pattern{Re: re(`\b` + area + `\s*(?:` + unit + `\s*)?(?:de\s+)?(?:construccion|construidos?|construida)\b`), Value: areaValue},
			Pattern{
				Re:     re(`\b(?:superficie\s+construida|area\s+construida|construccion|construida|const\.?)\s*(?:de\s+|:\s*|\s)\s*` + area),
				Value:  areaValue,
				Reject: anyOf(lotFollows, countFollows),
			},
		),
		NewPatternExtractor(model.FieldFrontage, First,
			Pattern{Re: re(`\b` + area + `\s*` + linUnit + `\s*de\s+frente\b`), Value: areaValue},
			Pattern{Re: re(`\bfrente\s*(?:de\s+|:\s*)\s*` + area), Value: areaValue},
		),
		NewPatternExtractor(model.FieldDepth, First,
			Pattern{Re: re(`\b` + area + `\s*` + linUnit + `\s*de\s+fondo\b`), Value: areaValue},
			Pattern{Re: re(`\bfondo\s*(?:de\s+|:\s*)\s*` + area), Value: areaValue},
		),
	}
}

var dimensionPattern = re(`\b(\d+(?:[.,]\d+)?)\s*` + linUnit + `\s*(?:x|por)\s*(\d+(?:[.,]\d+)?)\b`)

// Dimensions finds a "W x D" lot measurement. Both sides must be plausible
// metre values.
func Dimensions(text string) (width, depth float64, ok bool) {
	for _, m := range dimensionPattern.FindAllStringSubmatch(text, -1) {
		w, okW := normalize.ParseNumber(m[1])
		d, okD := normalize.ParseNumber(m[2])
		if !okW || !okD {
			continue
		}
		if w < 3 || d < 3 || w > 1000 || d > 1000 {
			continue
		}
		if w == 24 && d == 7 { // "vigilancia 24x7"
			continue
		}
		return w, d, true
	}
	return 0, 0, false
}
