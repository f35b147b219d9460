package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/inmueble/internal/model"
)

// Accepted key aliases, in priority order
var (
	idKeys          = []string{"id", "ID", "Id"}
	titleKeys       = []string{"titulo", "title"}
	descriptionKeys = []string{"descripcion", "description", "descripcion_original", "description_raw", "texto", "text"}
	priceKeys       = []string{"precio", "price", "precios"}
	amountKeys      = []string{"valor", "amount", "monto", "cantidad", "texto", "text"}
	currencyKeys    = []string{"moneda", "currency"}
	locationKeys    = []string{"ubicacion", "location", "direccion"}
	colonyKeys      = []string{"colonia", "colony", "neighborhood"}
	cityKeys        = []string{"ciudad", "city", "municipio"}
	stateKeys       = []string{"estado", "state"}
	addressKeys     = []string{"direccion_completa", "address", "direccion"}
	linkKeys        = []string{"link", "url"}
)

// LoadFile reads a corpus file. Any failure here aborts the batch.
func LoadFile(path string) ([]model.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}
	return records, nil
}

// Decode accepts either a JSON array of records or an object keyed by
// record ID. Keyed objects are returned in key order; a key fills in a
// missing "id".
func Decode(data []byte) ([]model.RawRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty corpus")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := dec.Decode(&items); err != nil {
			return nil, err
		}
		records := make([]model.RawRecord, 0, len(items))
		for i, item := range items {
			rec, err := decodeRecord(item, "")
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			records = append(records, rec)
		}
		return records, nil

	case '{':
		var items map[string]json.RawMessage
		if err := dec.Decode(&items); err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(items))
		for k := range items {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		records := make([]model.RawRecord, 0, len(items))
		for _, k := range keys {
			rec, err := decodeRecord(items[k], k)
			if err != nil {
				return nil, fmt.Errorf("record %q: %w", k, err)
			}
			records = append(records, rec)
		}
		return records, nil
	}

	return nil, fmt.Errorf("corpus must be a JSON array or object")
}

// decodeRecord maps one loosely shaped record onto RawRecord. Records that
// are not objects decode to an empty record, which is later excluded as
// malformed.
func decodeRecord(data json.RawMessage, key string) (model.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		if _, isType := err.(*json.UnmarshalTypeError); isType {
			return model.RawRecord{ID: key}, nil
		}
		return model.RawRecord{}, err
	}

	rec := model.RawRecord{
		ID:          scalar(first(fields, idKeys)),
		Title:       scalar(first(fields, titleKeys)),
		Description: scalar(first(fields, descriptionKeys)),
		Price:       price(first(fields, priceKeys)),
		Location:    location(first(fields, locationKeys)),
		Link:        scalar(first(fields, linkKeys)),
	}
	if rec.ID == "" {
		rec.ID = key
	}
	return rec, nil
}

// first returns the first non-null value among keys
func first(fields map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// scalar renders strings and numbers; other shapes yield ""
func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case bool:
		return ""
	}
	return ""
}

// price accepts "$1,200,000", 1200000 or {"valor": 1200000, "moneda": "MXN"}
func price(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return scalar(v)
	}

	amount := scalar(first(obj, amountKeys))
	if amount == "" {
		return ""
	}
	if currency := scalar(first(obj, currencyKeys)); currency != "" {
		return amount + " " + currency
	}
	return amount
}

// location accepts a string or an object with colony, city and state parts
func location(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return scalar(v)
	}

	var parts []string
	for _, keys := range [][]string{colonyKeys, cityKeys, stateKeys} {
		if s := scalar(first(obj, keys)); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return scalar(first(obj, addressKeys))
	}
	return strings.Join(parts, ", ")
}
