package score

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/inmueble/internal/model"
)

// Rule is one independent plausibility check. Check returns a reason and
// true when the property looks implausible.
type Rule interface {
	Name() string
	Check(p *model.Property) (string, bool)
}

// RuleFunc adapts a function to the Rule interface
type RuleFunc struct {
	RuleName string
	Fn       func(p *model.Property) (string, bool)
}

// Name returns the rule name
func (r RuleFunc) Name() string { return r.RuleName }

// Check runs the rule
func (r RuleFunc) Check(p *model.Property) (string, bool) { return r.Fn(p) }

// DefaultRules builds the standard rule set from the configured thresholds
func DefaultRules(cfg model.ScoringConfig) []Rule {
	return []Rule{
		PriceBelow(cfg.MinPrice),
		PriceAbove(cfg.MaxPrice),
		BathroomsOutside(0, cfg.MaxBathrooms),
		BedroomsAbove(cfg.MaxBedrooms),
		LevelsExceedRooms(),
		ConstructionExceedsLot(cfg.MaxConstructionLotRatio),
		AreaOutside(model.FieldLotArea, cfg.MinArea, cfg.MaxArea),
		AreaOutside(model.FieldConstructionArea, cfg.MinArea, cfg.MaxArea),
	}
}

// PriceBelow flags prices under the minimum plausible value
func PriceBelow(min float64) Rule {
	return RuleFunc{RuleName: "price_below_min", Fn: func(p *model.Property) (string, bool) {
		price, ok := p.Float(model.FieldPrice)
		if !ok || min <= 0 || price >= min {
			return "", false
		}
		return fmt.Sprintf("price %s below minimum %s", money(price), money(min)), true
	}}
}

// PriceAbove flags prices over the maximum plausible value
func PriceAbove(max float64) Rule {
	return RuleFunc{RuleName: "price_above_max", Fn: func(p *model.Property) (string, bool) {
		price, ok := p.Float(model.FieldPrice)
		if !ok || max <= 0 || price <= max {
			return "", false
		}
		return fmt.Sprintf("price %s above maximum %s", money(price), money(max)), true
	}}
}

// BathroomsOutside flags bathroom counts outside [min, max]
func BathroomsOutside(min, max int) Rule {
	return RuleFunc{RuleName: "bathrooms_out_of_range", Fn: func(p *model.Property) (string, bool) {
		n, ok := p.Int(model.FieldBathrooms)
		if !ok || (n >= min && n <= max) {
			return "", false
		}
		return fmt.Sprintf("bathrooms %d outside [%d, %d]", n, min, max), true
	}}
}

// BedroomsAbove flags implausibly many bedrooms
func BedroomsAbove(max int) Rule {
	return RuleFunc{RuleName: "bedrooms_above_max", Fn: func(p *model.Property) (string, bool) {
		n, ok := p.Int(model.FieldBedrooms)
		if !ok || max <= 0 || n <= max {
			return "", false
		}
		return fmt.Sprintf("bedrooms %d above maximum %d", n, max), true
	}}
}

// LevelsExceedRooms flags more floors than rooms could fill
func LevelsExceedRooms() Rule {
	return RuleFunc{RuleName: "levels_exceed_rooms", Fn: func(p *model.Property) (string, bool) {
		levels, ok := p.Int(model.FieldLevels)
		if !ok {
			return "", false
		}
		bedrooms, okBed := p.Int(model.FieldBedrooms)
		bathrooms, okBath := p.Int(model.FieldBathrooms)
		if !okBed || !okBath {
			return "", false
		}
		rooms := bedrooms + bathrooms
		if levels <= rooms+1 {
			return "", false
		}
		return fmt.Sprintf("levels %d exceed room count %d", levels, rooms), true
	}}
}

// ConstructionExceedsLot flags built areas larger than ratio times the lot
func ConstructionExceedsLot(ratio float64) Rule {
	return RuleFunc{RuleName: "construction_exceeds_lot", Fn: func(p *model.Property) (string, bool) {
		built, okBuilt := p.Float(model.FieldConstructionArea)
		lot, okLot := p.Float(model.FieldLotArea)
		if !okBuilt || !okLot || lot <= 0 || ratio <= 0 || built <= lot*ratio {
			return "", false
		}
		return fmt.Sprintf("construction %s m2 exceeds %.1fx lot %s m2",
			humanize.Commaf(built), ratio, humanize.Commaf(lot)), true
	}}
}

// AreaOutside flags a surface field outside [min, max] square meters
func AreaOutside(field string, min, max float64) Rule {
	return RuleFunc{RuleName: field + "_out_of_range", Fn: func(p *model.Property) (string, bool) {
		area, ok := p.Float(field)
		if !ok || (area >= min && (max <= 0 || area <= max)) {
			return "", false
		}
		return fmt.Sprintf("%s %s outside [%s, %s]",
			field, humanize.Commaf(area), humanize.Commaf(min), humanize.Commaf(max)), true
	}}
}

func money(v float64) string {
	return "$" + humanize.Commaf(v)
}
