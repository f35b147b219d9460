package extract

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/inmueble/internal/model"
	"github.com/ppiankov/inmueble/internal/normalize"
)

var (
	coerceOperation = operationExtractor()
	coercePropType  = propertyTypeExtractor()
)

var nullAnswers = map[string]bool{
	"": true, "null": true, "none": true, "n/a": true, "na": true,
	"desconocido": true, "no especificado": true, "unknown": true, "-": true,
}

// Coerce converts a loosely typed inference answer into the Go type of a
// schema field. Answers that cannot be read as the field's kind are dropped.
func Coerce(field string, v any) (any, bool) {
	spec, ok := model.LookupField(field)
	if !ok || v == nil {
		return nil, false
	}

	var raw string
	if s, isString := v.(string); isString {
		raw = strings.TrimSpace(s)
		s = normalize.Text(s)
		if nullAnswers[s] {
			return nil, false
		}
		v = s
	}

	switch spec.Kind {
	case model.KindInt:
		return coerceInt(v)
	case model.KindFloat:
		return coerceFloat(field, v)
	case model.KindBool:
		return coerceBool(v)
	case model.KindEnum:
		return coerceEnum(spec, v)
	case model.KindString:
		if raw == "" {
			raw = strings.TrimSpace(fmt.Sprint(v))
		}
		return raw, raw != ""
	}
	return nil, false
}

// maxCount bounds inferred counts so float conversion cannot overflow
const maxCount = math.MaxInt32

func coerceInt(v any) (any, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n > maxCount || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		return int(n), true
	case int:
		return n, n >= 0 && n <= maxCount
	case string:
		if c, ok := normalize.Count(firstToken(n)); ok && c <= maxCount {
			return c, true
		}
	}
	return nil, false
}

func coerceFloat(field string, v any) (any, bool) {
	switch n := v.(type) {
	case float64:
		if n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		return n, true
	case int:
		return float64(n), n > 0
	case string:
		if field == model.FieldPrice {
			return normalize.Amount(n)
		}
		if f, ok := normalize.ParseNumber(firstToken(n)); ok && f > 0 {
			return f, true
		}
	}
	return nil, false
}

func coerceBool(v any) (any, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch b {
		case "true", "si", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return nil, false
}

func coerceEnum(spec model.FieldSpec, v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}

	for _, allowed := range spec.Values {
		if strings.EqualFold(s, allowed) {
			return allowed, true
		}
	}

	switch spec.Name {
	case model.FieldOperationType:
		return coerceOperation.Extract(s)
	case model.FieldPropertyType:
		return coercePropType.Extract(s)
	case model.FieldCurrency:
		if normalize.Currency(s) == model.CurrencyUSD {
			return model.CurrencyUSD, true
		}
		if strings.Contains(s, "mxn") || strings.Contains(s, "peso") {
			return model.CurrencyMXN, true
		}
	}
	return nil, false
}

func firstToken(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
