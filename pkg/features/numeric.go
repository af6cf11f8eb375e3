package features

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is an optional numeric request field. It accepts JSON numbers and
// numeric strings; anything else leaves it unset instead of failing decoding.
type Number struct {
	Value float64
	Set   bool
}

func NewNumber(v float64) Number { return Number{Value: v, Set: true} }

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if v, ok := parseNumber(s); ok {
			*n = Number{Value: v, Set: true}
		}
		return nil
	}
	if v, ok := parseNumber(string(data)); ok {
		*n = Number{Value: v, Set: true}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value, or fallback when the field was not usable.
func (n Number) Or(fallback float64) float64 {
	if !n.Set {
		return fallback
	}
	return n.Value
}

// Int truncates toward zero, saturating at the bounds of int.
func (n Number) Int() int {
	if !n.Set {
		return 0
	}
	switch {
	case n.Value >= math.MaxInt:
		return math.MaxInt
	case n.Value <= math.MinInt:
		return math.MinInt
	}
	return int(n.Value)
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Label is an optional categorical request field. Non-string JSON values are
// treated as absent.
type Label struct {
	Value string
	Set   bool
}

func NewLabel(v string) Label { return Label{Value: v, Set: true} }

func (l *Label) UnmarshalJSON(data []byte) error {
	*l = Label{}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	*l = Label{Value: s, Set: true}
	return nil
}

func (l Label) MarshalJSON() ([]byte, error) {
	if !l.Set {
		return []byte("null"), nil
	}
	return json.Marshal(l.Value)
}

// BMI returns weight / height(m)^2 rounded to two decimals, or 0 when either
// input is zero.
func BMI(weightKg, heightCm float64) float64 {
	if weightKg == 0 || heightCm == 0 {
		return 0
	}
	meters := heightCm / 100
	return Round2(weightKg / (meters * meters))
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
