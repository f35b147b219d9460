package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/inmueble/internal/model"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		field string
		in    any
		want  any
		ok    bool
	}{
		{"int from json number", model.FieldBedrooms, 3.0, 3, true},
		{"int from spelled word", model.FieldBedrooms, "tres", 3, true},
		{"int from text", model.FieldBathrooms, "2 baños", 2, true},
		{"int negative", model.FieldBedrooms, -1.0, nil, false},
		{"int overflow", model.FieldBedrooms, 1e20, nil, false},
		{"int above count bound", model.FieldLevels, float64(math.MaxInt32) + 1, nil, false},
		{"int at count bound", model.FieldLevels, float64(math.MaxInt32), math.MaxInt32, true},
		{"null string", model.FieldBedrooms, "null", nil, false},
		{"unknown string", model.FieldLevels, "desconocido", nil, false},
		{"float from number", model.FieldLotArea, 250.0, 250.0, true},
		{"float from text", model.FieldLotArea, "1,200 m2", 1200.0, true},
		{"price with unit", model.FieldPrice, "1.5 millones", 1_500_000.0, true},
		{"enum exact", model.FieldOperationType, "sale", model.OperationSale, true},
		{"enum spanish", model.FieldOperationType, "Renta", model.OperationRental, true},
		{"enum property spanish", model.FieldPropertyType, "Departamento", model.PropertyApartment, true},
		{"enum unknown", model.FieldPropertyType, "castillo", nil, false},
		{"currency", model.FieldCurrency, "dólares", model.CurrencyUSD, true},
		{"bool", model.FieldPool, true, true, true},
		{"bool from si", model.FieldPool, "Sí", true, true},
		{"string keeps accents", model.FieldCity, " Querétaro ", "Querétaro", true},
		{"unknown field", "garage_door", 1.0, nil, false},
		{"nil", model.FieldBedrooms, nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.field, tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw  string
		want Location
	}{
		{"Colonia Centro, Cuernavaca, Morelos", Location{Colony: "Centro", City: "Cuernavaca", State: "Morelos"}},
		{"Lomas de Cortés, Cuernavaca, morelos", Location{Colony: "Lomas de Cortés", City: "Cuernavaca", State: "Morelos"}},
		{"Centro, Jiutepec, Cuernavaca, Morelos", Location{Colony: "Jiutepec", City: "Cuernavaca", State: "Morelos"}},
		{"Guadalajara, Jalisco", Location{City: "Guadalajara", State: "Jalisco"}},
		{"Temixco", Location{City: "Temixco"}},
		{"CDMX", Location{State: "Ciudad de México"}},
		{"", Location{}},
		{" , ,", Location{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocation(tt.raw))
		})
	}
}

func TestLocationFromText(t *testing.T) {
	loc := LocationFromText("casa en fraccionamiento lomas de cortes, cuernavaca, morelos")
	assert.Equal(t, "Lomas De Cortes", loc.Colony)
	assert.Equal(t, "Morelos", loc.State)

	loc = LocationFromText("bonita casa")
	assert.Equal(t, Location{}, loc)
}
