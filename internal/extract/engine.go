package extract

import (
	"math"

	"github.com/ppiankov/inmueble/internal/model"
	"github.com/ppiankov/inmueble/internal/normalize"
)

type binding struct {
	extractor Extractor
	scope     Scope
}

// Engine applies every field extractor to a document
type Engine struct {
	cfg       model.ExtractionConfig
	fields    []binding
	operation Extractor
	amenities []Extractor
}

// NewEngine creates an extraction engine
func NewEngine(cfg model.ExtractionConfig) *Engine {
	e := &Engine{
		cfg:       cfg,
		operation: operationExtractor(),
		amenities: amenityExtractors(),
	}

	// Counts and areas prefer the description so a title repeating
	// "3 recamaras" is not summed twice
	for _, ex := range countExtractors() {
		e.fields = append(e.fields, binding{ex, ScopeDescription})
	}
	for _, ex := range areaExtractors() {
		e.fields = append(e.fields, binding{ex, ScopeDescription})
	}
	e.fields = append(e.fields, binding{propertyTypeExtractor(), ScopeTitle})

	return e
}

// Extract builds the structured property of a raw record
func (e *Engine) Extract(raw model.RawRecord) *model.Property {
	p := model.NewProperty(raw)
	e.Apply(NewDocument(raw), p)
	return p
}

// Apply resolves every field it can from doc into p. Fields already set
// are left alone.
func (e *Engine) Apply(doc Document, p *model.Property) {
	e.resolvePrice(doc, p)

	for _, b := range e.fields {
		if p.IsSet(b.extractor.Field()) {
			continue
		}
		for _, text := range doc.Sources(b.scope) {
			if v, ok := b.extractor.Extract(text); ok {
				p.Set(b.extractor.Field(), v, model.SourcePattern)
				break
			}
		}
	}

	e.resolveOperation(doc, p)
	e.resolveDimensions(doc, p)
	inferLevels(p)
	e.resolveLocation(doc, p)
	e.resolveAmenities(doc, p)
	Derive(p)
}

func (e *Engine) resolvePrice(doc Document, p *model.Property) {
	if p.IsSet(model.FieldPrice) {
		return
	}

	price, ok := normalize.Amount(doc.Price)
	if !ok {
		for _, m := range textPricePattern.FindAllStringSubmatch(doc.Text(), -1) {
			token := m[1]
			if token == "" {
				token = m[2]
			}
			if price, ok = normalize.Amount(token); ok {
				break
			}
		}
	}
	if !ok {
		return
	}

	p.Set(model.FieldPrice, price, model.SourcePattern)

	currency := normalize.Currency(doc.Price)
	if currency == "" {
		currency = normalize.Currency(doc.Text())
	}
	if currency == "" {
		currency = e.cfg.DefaultCurrency
	}
	if currency == "" {
		currency = model.CurrencyMXN
	}
	p.Set(model.FieldCurrency, currency, model.SourcePattern)
}

// operationRule is one step of the operation-type precedence chain
type operationRule func(doc Document, p *model.Property) (string, model.Source, bool)

// resolveOperation applies lexical cues first, then the price threshold
func (e *Engine) resolveOperation(doc Document, p *model.Property) {
	if p.IsSet(model.FieldOperationType) {
		return
	}
	for _, rule := range []operationRule{e.lexicalOperation, e.priceOperation} {
		if op, src, ok := rule(doc, p); ok {
			p.Set(model.FieldOperationType, op, src)
			return
		}
	}
}

func (e *Engine) lexicalOperation(doc Document, _ *model.Property) (string, model.Source, bool) {
	v, ok := e.operation.Extract(doc.Combined())
	if !ok {
		return "", "", false
	}
	return v.(string), model.SourcePattern, true
}

// priceOperation reads cheap listings as rentals. The threshold is in the
// default currency, so it is not applied to prices in another currency.
func (e *Engine) priceOperation(_ Document, p *model.Property) (string, model.Source, bool) {
	price, ok := p.Float(model.FieldPrice)
	if !ok || e.cfg.RentalPriceThreshold <= 0 {
		return "", "", false
	}
	if currency, _ := p.String(model.FieldCurrency); currency != e.defaultCurrency() {
		return "", "", false
	}
	if price < e.cfg.RentalPriceThreshold {
		return model.OperationRental, model.SourceHeuristic, true
	}
	return model.OperationSale, model.SourceHeuristic, true
}

func (e *Engine) defaultCurrency() string {
	if e.cfg.DefaultCurrency == "" {
		return model.CurrencyMXN
	}
	return e.cfg.DefaultCurrency
}

// resolveDimensions uses a "W x D" mention for frontage and depth, and for
// the lot area when no explicit surface was found
func (e *Engine) resolveDimensions(doc Document, p *model.Property) {
	for _, text := range doc.Sources(ScopeDescription) {
		w, d, ok := Dimensions(text)
		if !ok {
			continue
		}
		if !p.IsSet(model.FieldFrontage) && !p.IsSet(model.FieldDepth) {
			p.Set(model.FieldFrontage, w, model.SourcePattern)
			p.Set(model.FieldDepth, d, model.SourcePattern)
		}
		if !p.IsSet(model.FieldLotArea) {
			p.Set(model.FieldLotArea, w*d, model.SourceHeuristic)
		}
		return
	}
}

// inferLevels derives a level count from the construction to lot ratio
func inferLevels(p *model.Property) {
	if p.IsSet(model.FieldLevels) {
		return
	}
	built, ok1 := p.Float(model.FieldConstructionArea)
	lot, ok2 := p.Float(model.FieldLotArea)
	if !ok1 || !ok2 || lot <= 0 {
		return
	}
	if ratio := built / lot; ratio > 2 {
		p.Set(model.FieldLevels, int(math.Round(ratio)), model.SourceHeuristic)
	}
}

func (e *Engine) resolveLocation(doc Document, p *model.Property) {
	raw := ParseLocation(p.RawLocation)
	text := LocationFromText(doc.Text())

	setString(p, model.FieldColony, raw.Colony, text.Colony)
	setString(p, model.FieldCity, raw.City, "")
	setString(p, model.FieldState, raw.State, text.State)
}

func setString(p *model.Property, field string, candidates ...string) {
	if p.IsSet(field) {
		return
	}
	for _, c := range candidates {
		if c != "" {
			p.Set(field, c, model.SourcePattern)
			return
		}
	}
}

// resolveAmenities sets every boolean field. Booleans are closed-world:
// no mention means false.
func (e *Engine) resolveAmenities(doc Document, p *model.Property) {
	text := doc.Text()
	for _, ex := range e.amenities {
		if p.IsSet(ex.Field()) {
			continue
		}
		if _, ok := ex.Extract(text); ok {
			p.Set(ex.Field(), true, model.SourcePattern)
		} else {
			p.Set(ex.Field(), false, model.SourceAbsent)
		}
	}

	if !p.IsSet(model.FieldSingleLevel) && singleLevelCue.MatchString(text) {
		p.Set(model.FieldSingleLevel, true, model.SourcePattern)
	}
}

// Derive recomputes fields that depend on other fields. It only touches
// derived values that were not stated explicitly, so it can run again
// after inference has filled more fields.
func Derive(p *model.Property) {
	if p.Provenance[model.FieldSingleLevel] == model.SourcePattern {
		return
	}
	if levels, ok := p.Int(model.FieldLevels); ok {
		p.Fields[model.FieldSingleLevel] = levels == 1
		p.Provenance[model.FieldSingleLevel] = model.SourceHeuristic
		return
	}
	if !p.IsSet(model.FieldSingleLevel) {
		p.Set(model.FieldSingleLevel, false, model.SourceAbsent)
	}
}
