package extract

import (
	"strings"

	"github.com/ppiankov/inmueble/internal/model"
)

var (
	negator = re(`\b(?:no|sin|ni)\b`)
	// Verb phrase that belongs to the negation ("no cuenta con", "no se aceptan")
	negationVerb = re(`^\s*(?:(?:se\s+)?(?:cuenta|tiene|incluye|hay|acepta|aceptan|permite|permiten)\s*)?(?:con\s*)?`)
	// A positive or list boundary ends the reach of a negation
	listBoundary = re(`\b(?:con|y|cuenta|incluye|tiene|ademas|pero)\b|[,.;:]`)
)

// negated rejects amenity mentions like "sin alberca" or "no cuenta con
// elevador". The last negator within 40 bytes before the match applies
// only when at most two words and no list boundary separate them, so in
// "sin alberca con terraza" the terrace stays.
func negated(text string, loc []int) bool {
	start := loc[0] - 40
	if start < 0 {
		start = 0
	} else if sp := strings.IndexByte(text[start:loc[0]], ' '); sp >= 0 {
		start += sp // skip a word cut in half by the window
	}
	prefix := text[start:loc[0]]

	all := negator.FindAllStringIndex(prefix, -1)
	if len(all) == 0 {
		return false
	}
	rest := prefix[all[len(all)-1][1]:]
	rest = rest[len(negationVerb.FindString(rest)):]

	return !listBoundary.MatchString(rest) && len(strings.Fields(rest)) <= 2
}

// Operation cues. Rental is listed first: when both appear, renting
// language is the more specific signal.
func operationExtractor() Extractor {
	return NewPatternExtractor(model.FieldOperationType, First,
		Pattern{
			Re:    re(`\b(?:renta|rento|rentar|alquiler|alquila|arriendo|arrendamiento|mensual(?:es|idad)?|al\s+mes|por\s+mes|x\s+mes)\b|/\s*mes\b`),
			Const: model.OperationRental,
			Reject: anyOf(
				precededBy(`\b(?:mantenimiento|cuota|pago)\s+(?:de\s+)?`), // "mantenimiento mensual"
				// "ideal para renta vacacional" describes an investment for sale
				precededBy(`\b(?:ideal|perfect[oa]|excelente|opcion)\s+para\s+`),
			),
		},
		Pattern{
			Re:    re(`\b(?:en\s+venta|se\s+vende|venta|vendo|vende|remato|remate|traspaso|preventa)\b`),
			Const: model.OperationSale,
		},
	)
}

// Property kinds in priority order
func propertyTypeExtractor() Extractor {
	return NewPatternExtractor(model.FieldPropertyType, First,
		Pattern{
			Re:     re(`\b(?:casas?|residencia|chalet|villa|town\s*house|duplex|cabana)\b`),
			Const:  model.PropertyHouse,
			Reject: followedBy(`\s+club\b`),
		},
		Pattern{Re: re(`\b(?:departamentos?|deptos?|depas?|apartamentos?|loft|penthouse|pent\s+house)\b`), Const: model.PropertyApartment},
		Pattern{Re: re(`\b(?:oficinas?|consultorios?|despachos?)\b`), Const: model.PropertyOffice},
		Pattern{Re: re(`\b(?:local(?:es)?(?:\s+comercial(?:es)?)?|plaza\s+comercial)\b`), Const: model.PropertyCommercial},
		Pattern{Re: re(`\b(?:bodegas?|nave\s+industrial|almacen)\b`), Const: model.PropertyWarehouse},
		Pattern{Re: re(`\b(?:terrenos?|lotes?|predios?|parcelas?)\b`), Const: model.PropertyLand},
	)
}

// amenity builds a closed-world boolean extractor
func amenity(field, expr string) Extractor {
	return NewPatternExtractor(field, First, Pattern{Re: re(expr), Const: true, Reject: negated})
}

func amenityExtractors() []Extractor {
	return []Extractor{
		amenity(model.FieldPool, `\b(?:alberca|piscina)s?\b`),
		NewPatternExtractor(model.FieldGarden, First, Pattern{
			Re:     re(`\b(?:jardin(?:es)?|areas?\s+verdes?|patio)\b`),
			Const:  true,
			Reject: anyOf(negated, followedBy(`\s+de\s+ninos\b`)),
		}),
		amenity(model.FieldTerrace, `\b(?:terrazas?|balcon(?:es)?)\b`),
		amenity(model.FieldStorage, `\b(?:bodegas?|cuarto\s+de\s+guardado|closet\s+de\s+blancos)\b`),
		amenity(model.FieldCistern, `\b(?:cisterna|aljibe|tinaco)s?\b`),
		amenity(model.FieldRoofGarden, `\b(?:roof\s*garden|rooftop|terraza\s+en\s+azotea)\b`),
		amenity(model.FieldSecurity, `\b(?:seguridad|vigilancia|caseta|acceso\s+controlado|circuito\s+cerrado|cctv)\b|\b24\s*(?:/|x)\s*7\b`),
		amenity(model.FieldElevator, `\b(?:elevador|ascensor)(?:es)?\b`),
		amenity(model.FieldFurnished, `\b(?:semi\s*)?amueblad[oa]s?\b`),
		amenity(model.FieldPetsAllowed, `\b(?:se\s+aceptan\s+mascotas|acepta\s+mascotas|pet\s*friendly|mascotas)\b`),
		amenity(model.FieldServiceRoom, `\b(?:cuarto|habitacion|recamara)\s+de\s+servicio\b`),
		amenity(model.FieldStudy, `\b(?:estudio|home\s+office|biblioteca)\b`),
		amenity(model.FieldBedroomGroundFloor, `\b(?:recamaras?|habitacion(?:es)?|dormitorios?)\s+(?:principal\s+)?en\s+(?:planta\s+baja|pb)\b|\bplanta\s+baja\s*:?[^.;]*\brecamara`),
		amenity(model.FieldAccessible, `\b(?:apt[oa]\s+para\s+discapacitados|acceso\s+para\s+discapacitados|silla\s+de\s+ruedas|rampas?|accesible)\b`),
		amenity(model.FieldLegalTitle, `\b(?:escrituras?|escriturad[oa]|titulo\s+de\s+propiedad)\b`),
		amenity(model.FieldRightsAssignment, `\bcesion\s+de\s+derechos\b`),
		amenity(model.FieldAcceptsCredit, `\b(?:creditos?|infonavit|fovissste|bancarios?|hipotecarios?)\b`),
	}
}

// singleLevelCue catches explicit one-floor wording when no level count exists
var singleLevelCue = re(`\b(?:un\s+solo\s+nivel|una\s+sola\s+planta|todo\s+en\s+planta\s+baja|de\s+una\s+planta)\b`)

// Price mentioned inside free text
var textPricePattern = re(`\b(?:precio|costo|valor)\s*(?:de\s+(?:venta|renta|lista)|total|final)?\s*:?\s*\$?\s*(\d[\d.,]*(?:\s*(?:millones|millon|mdp|mdd|mil|mm|k|m)\b)?)|\$\s*(\d[\d.,]*(?:\s*(?:millones|millon|mdp|mdd|mil|mm|k|m)\b)?)`)
