package features

import (
	"fmt"
	"math"
)

type Source int

const (
	// SourceConstant fills a slot the API never asks about.
	SourceConstant Source = iota
	SourceCategorical
	SourceNumber
	// SourceInteger truncates the answer to a whole number.
	SourceInteger
	// SourceBMI uses the supplied bmi, or derives it from weight and height.
	SourceBMI
	// SourceAgeCategory uses a recognised age_category label, or buckets the
	// numeric age by decade capped at 9.
	SourceAgeCategory
)

// Slot is one position of a model's input row.
type Slot struct {
	Name   string
	Source Source
	Field  string
	Map    CategoricalMap
	Value  float64
}

// FeatureSpec describes the input row a trained risk model expects. Named
// specs are matched to the model's declared feature names; ordered specs are
// passed positionally.
type FeatureSpec struct {
	Name  string
	Named bool
	Slots []Slot
}

// Row is an assembled model input.
type Row struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
}

// Map returns the row keyed by feature name.
func (r Row) Map() map[string]float64 {
	out := make(map[string]float64, len(r.Names))
	for i, name := range r.Names {
		out[name] = r.Values[i]
	}
	return out
}

func (s FeatureSpec) slot(name string) (Slot, bool) {
	for _, slot := range s.Slots {
		if slot.Name == name {
			return slot, true
		}
	}
	return Slot{}, false
}

// Compatible checks the spec against the feature names declared by a model
// artifact. An empty list means the artifact does not declare names.
func (s FeatureSpec) Compatible(names []string, featureCount int) error {
	if s.Named {
		if len(names) == 0 {
			return fmt.Errorf("%s: named feature spec requires model feature names", s.Name)
		}
		seen := make(map[string]struct{}, len(names))
		for _, name := range names {
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%s: duplicate model feature %q", s.Name, name)
			}
			seen[name] = struct{}{}
		}
		return nil
	}
	if featureCount != len(s.Slots) {
		return fmt.Errorf("%s: model expects %d features, spec provides %d", s.Name, featureCount, len(s.Slots))
	}
	return nil
}

// Assemble resolves every slot to a number. It never fails: missing or
// unusable answers fall back to the slot default.
func (s FeatureSpec) Assemble(req RiskRequest, names []string) Row {
	if s.Named && len(names) > 0 {
		row := Row{Names: append([]string(nil), names...), Values: make([]float64, len(names))}
		for i, name := range names {
			if slot, ok := s.slot(name); ok {
				row.Values[i] = slot.resolve(req)
			}
		}
		return row
	}

	row := Row{Names: make([]string, len(s.Slots)), Values: make([]float64, len(s.Slots))}
	for i, slot := range s.Slots {
		row.Names[i] = slot.Name
		row.Values[i] = slot.resolve(req)
	}
	return row
}

func (s Slot) resolve(req RiskRequest) float64 {
	switch s.Source {
	case SourceCategorical:
		return float64(s.Map.EncodeLabel(req.Label(s.Field)))
	case SourceNumber:
		return req.Number(s.Field).Or(s.Value)
	case SourceInteger:
		n := req.Number(s.Field)
		if !n.Set {
			return s.Value
		}
		return math.Trunc(n.Value)
	case SourceBMI:
		if bmi := req.BMI.Or(0); bmi != 0 {
			return bmi
		}
		return BMI(req.WeightKg.Or(0), req.HeightCm.Or(0))
	case SourceAgeCategory:
		if code, ok := AgeCategoryMap.Lookup(req.AgeCategory.Value); ok && req.AgeCategory.Set {
			return float64(code)
		}
		return float64(AgeDecade(req.Age.Int()))
	default:
		return s.Value
	}
}

// AgeDecade floors the age to its decade index, capped at 9.
func AgeDecade(age int) int {
	decade := age / 10
	if age < 0 && age%10 != 0 {
		decade--
	}
	if decade > 9 {
		return 9
	}
	return decade
}

func categorical(name, field string, m CategoricalMap) Slot {
	return Slot{Name: name, Source: SourceCategorical, Field: field, Map: m}
}

func number(name, field string) Slot {
	return Slot{Name: name, Source: SourceNumber, Field: field}
}

func integer(name, field string) Slot {
	return Slot{Name: name, Source: SourceInteger, Field: field}
}

func constant(name string, value float64) Slot {
	return Slot{Name: name, Source: SourceConstant, Value: value}
}
