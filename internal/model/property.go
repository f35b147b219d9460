package model

import (
	"math"
	"sort"
)

// SchemaVersion identifies the field set emitted in Property.Fields
const SchemaVersion = "v1"

// Kind is the value type of a schema field
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindEnum   Kind = "enum"
	KindString Kind = "string"
)

// Schema field names
const (
	FieldPrice         = "price"
	FieldCurrency      = "currency"
	FieldOperationType = "operation_type"
	FieldPropertyType  = "property_type"

	FieldBedrooms      = "bedrooms"
	FieldBathrooms     = "bathrooms"
	FieldHalfBathrooms = "half_bathrooms"
	FieldLevels        = "levels"
	FieldParkingSpaces = "parking_spaces"
	FieldAgeYears      = "age_years"

	FieldLotArea          = "lot_area_m2"
	FieldConstructionArea = "construction_area_m2"
	FieldFrontage         = "frontage_m"
	FieldDepth            = "depth_m"

	FieldColony = "colony"
	FieldCity   = "city"
	FieldState  = "state"

	FieldPool               = "pool"
	FieldGarden             = "garden"
	FieldTerrace            = "terrace"
	FieldStorage            = "storage"
	FieldCistern            = "cistern"
	FieldRoofGarden         = "roof_garden"
	FieldSecurity           = "security"
	FieldElevator           = "elevator"
	FieldFurnished          = "furnished"
	FieldPetsAllowed        = "pets_allowed"
	FieldServiceRoom        = "service_room"
	FieldStudy              = "study"
	FieldSingleLevel        = "single_level"
	FieldBedroomGroundFloor = "bedroom_ground_floor"
	FieldAccessible         = "accessible"
	FieldLegalTitle         = "legal_title"
	FieldRightsAssignment   = "rights_assignment"
	FieldAcceptsCredit      = "accepts_credit"
)

// Enum values
const (
	OperationSale   = "sale"
	OperationRental = "rental"

	PropertyHouse      = "house"
	PropertyApartment  = "apartment"
	PropertyLand       = "land"
	PropertyCommercial = "commercial"
	PropertyOffice     = "office"
	PropertyWarehouse  = "warehouse"

	CurrencyMXN = "MXN"
	CurrencyUSD = "USD"
)

// FieldSpec describes one schema field
type FieldSpec struct {
	Name   string
	Kind   Kind
	Values []string // Allowed values for KindEnum
}

// Schema is the fixed, ordered field set of a Property
var Schema = []FieldSpec{
	{Name: FieldPrice, Kind: KindFloat},
	{Name: FieldCurrency, Kind: KindEnum, Values: []string{CurrencyMXN, CurrencyUSD}},
	{Name: FieldOperationType, Kind: KindEnum, Values: []string{OperationSale, OperationRental}},
	{Name: FieldPropertyType, Kind: KindEnum, Values: []string{
		PropertyHouse, PropertyApartment, PropertyLand, PropertyCommercial, PropertyOffice, PropertyWarehouse,
	}},

	{Name: FieldBedrooms, Kind: KindInt},
	{Name: FieldBathrooms, Kind: KindInt},
	{Name: FieldHalfBathrooms, Kind: KindInt},
	{Name: FieldLevels, Kind: KindInt},
	{Name: FieldParkingSpaces, Kind: KindInt},
	{Name: FieldAgeYears, Kind: KindInt},

	{Name: FieldLotArea, Kind: KindFloat},
	{Name: FieldConstructionArea, Kind: KindFloat},
	{Name: FieldFrontage, Kind: KindFloat},
	{Name: FieldDepth, Kind: KindFloat},

	{Name: FieldColony, Kind: KindString},
	{Name: FieldCity, Kind: KindString},
	{Name: FieldState, Kind: KindString},

	{Name: FieldPool, Kind: KindBool},
	{Name: FieldGarden, Kind: KindBool},
	{Name: FieldTerrace, Kind: KindBool},
	{Name: FieldStorage, Kind: KindBool},
	{Name: FieldCistern, Kind: KindBool},
	{Name: FieldRoofGarden, Kind: KindBool},
	{Name: FieldSecurity, Kind: KindBool},
	{Name: FieldElevator, Kind: KindBool},
	{Name: FieldFurnished, Kind: KindBool},
	{Name: FieldPetsAllowed, Kind: KindBool},
	{Name: FieldServiceRoom, Kind: KindBool},
	{Name: FieldStudy, Kind: KindBool},
	{Name: FieldSingleLevel, Kind: KindBool},
	{Name: FieldBedroomGroundFloor, Kind: KindBool},
	{Name: FieldAccessible, Kind: KindBool},
	{Name: FieldLegalTitle, Kind: KindBool},
	{Name: FieldRightsAssignment, Kind: KindBool},
	{Name: FieldAcceptsCredit, Kind: KindBool},
}

var schemaIndex = func() map[string]FieldSpec {
	idx := make(map[string]FieldSpec, len(Schema))
	for _, f := range Schema {
		idx[f.Name] = f
	}
	return idx
}()

// LookupField returns the spec of a schema field
func LookupField(name string) (FieldSpec, bool) {
	f, ok := schemaIndex[name]
	return f, ok
}

// FieldNames returns all schema field names in schema order
func FieldNames() []string {
	names := make([]string, len(Schema))
	for i, f := range Schema {
		names[i] = f.Name
	}
	return names
}

// Source records where a field value came from
type Source string

const (
	SourcePattern   Source = "pattern"   // Deterministic pattern match
	SourceHeuristic Source = "heuristic" // Derived from other fields (e.g. levels from area ratio)
	SourceFallback  Source = "fallback"  // External inference
	SourceAbsent    Source = "absent"    // Unresolved
)

// Property is the schema-complete structured form of a listing.
// Every schema field is present in Fields; unresolved ones hold nil.
type Property struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	RawPrice      string            `json:"raw_price"`
	RawLocation   string            `json:"raw_location"`
	Link          string            `json:"link,omitempty"`
	SchemaVersion string            `json:"schema_version"`
	Fields        map[string]any    `json:"fields"`
	Provenance    map[string]Source `json:"provenance"`
}

// NewProperty creates a property with every schema field explicitly null
func NewProperty(raw RawRecord) *Property {
	p := &Property{
		ID:            raw.ID,
		Title:         raw.Title,
		Description:   raw.Description,
		RawPrice:      raw.Price,
		RawLocation:   raw.Location,
		Link:          raw.Link,
		SchemaVersion: SchemaVersion,
		Fields:        make(map[string]any, len(Schema)),
		Provenance:    make(map[string]Source, len(Schema)),
	}
	for _, f := range Schema {
		p.Fields[f.Name] = nil
		p.Provenance[f.Name] = SourceAbsent
	}
	return p
}

// Set assigns a value to a schema field. The value must already have the
// field's Go type (int, float64, bool or string). Values resolved by
// patterns or heuristics are never replaced by fallback answers.
// Returns false when the value was rejected.
func (p *Property) Set(name string, value any, src Source) bool {
	spec, ok := LookupField(name)
	if !ok || value == nil {
		return false
	}
	if src == SourceFallback && p.IsSet(name) {
		return false
	}

	v, ok := conform(spec, value)
	if !ok {
		return false
	}

	p.Fields[name] = v
	p.Provenance[name] = src
	return true
}

// conform checks a value against the field kind, widening ints to floats
// and accepting integral floats for int fields.
func conform(spec FieldSpec, value any) (any, bool) {
	switch spec.Kind {
	case KindInt:
		switch v := value.(type) {
		case int:
			return v, true
		case float64:
			if v == math.Trunc(v) {
				return int(v), true
			}
		}
	case KindFloat:
		switch v := value.(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, false
			}
			return v, true
		case int:
			return float64(v), true
		}
	case KindBool:
		if v, ok := value.(bool); ok {
			return v, true
		}
	case KindEnum:
		if v, ok := value.(string); ok {
			for _, allowed := range spec.Values {
				if v == allowed {
					return v, true
				}
			}
		}
	case KindString:
		if v, ok := value.(string); ok && v != "" {
			return v, true
		}
	}
	return nil, false
}

// IsSet reports whether a field holds a non-null value
func (p *Property) IsSet(name string) bool {
	v, ok := p.Fields[name]
	return ok && v != nil
}

// Int returns an int field value
func (p *Property) Int(name string) (int, bool) {
	v, ok := p.Fields[name].(int)
	return v, ok
}

// Float returns a numeric field value as float64
func (p *Property) Float(name string) (float64, bool) {
	switch v := p.Fields[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Bool returns a boolean field value
func (p *Property) Bool(name string) (bool, bool) {
	v, ok := p.Fields[name].(bool)
	return v, ok
}

// String returns a string or enum field value
func (p *Property) String(name string) (string, bool) {
	v, ok := p.Fields[name].(string)
	return v, ok
}

// Missing returns the given fields that are still null, sorted by name
func (p *Property) Missing(names []string) []string {
	var missing []string
	for _, name := range names {
		if _, known := schemaIndex[name]; known && !p.IsSet(name) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// NullFields returns every schema field that is still null, in schema order
func (p *Property) NullFields() []string {
	var null []string
	for _, f := range Schema {
		if !p.IsSet(f.Name) {
			null = append(null, f.Name)
		}
	}
	return null
}

// SetCount returns the number of non-null schema fields
func (p *Property) SetCount() int {
	n := 0
	for _, f := range Schema {
		if p.IsSet(f.Name) {
			n++
		}
	}
	return n
}
