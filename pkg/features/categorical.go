package features

// CategoricalMap translates the human readable answers collected by the
// questionnaire into the integer codes the risk models were trained on.
type CategoricalMap struct {
	name     string
	codes    map[string]int
	fallback int
}

func newCategoricalMap(name string, fallback int, codes map[string]int) CategoricalMap {
	return CategoricalMap{name: name, codes: codes, fallback: fallback}
}

var (
	GenderMap = newCategoricalMap("gender", 0, map[string]int{
		"Male":   0,
		"Female": 1,
	})
	YesNoMap = newCategoricalMap("yes_no", 0, map[string]int{
		"No":  0,
		"Yes": 1,
	})
	SmokingMap = newCategoricalMap("smoking_history", 0, map[string]int{
		"Never":   0,
		"Former":  1,
		"Current": 2,
	})
	AlcoholMap = newCategoricalMap("alcohol_consumption", 0, map[string]int{
		"Never":        0,
		"Occasionally": 1,
		"Frequently":   2,
	})
	HealthMap = newCategoricalMap("general_health", 2, map[string]int{
		"Poor":      0,
		"Fair":      1,
		"Good":      2,
		"Very Good": 3,
		"Excellent": 4,
	})
	AgeCategoryMap = newCategoricalMap("age_category", 0, map[string]int{
		"18-24": 0,
		"25-29": 1,
		"30-34": 2,
		"35-39": 3,
		"40-44": 4,
		"45-49": 5,
		"50-54": 6,
		"55-59": 7,
		"60-64": 8,
		"65-69": 9,
		"70-74": 10,
		"75-79": 11,
		"80+":   12,
	})
)

var categoricalMaps = map[string]CategoricalMap{
	GenderMap.name:      GenderMap,
	YesNoMap.name:       YesNoMap,
	SmokingMap.name:     SmokingMap,
	AlcoholMap.name:     AlcoholMap,
	HealthMap.name:      HealthMap,
	AgeCategoryMap.name: AgeCategoryMap,
}

// LookupMap returns a registered map by name.
func LookupMap(name string) (CategoricalMap, bool) {
	m, ok := categoricalMaps[name]
	return m, ok
}

func (m CategoricalMap) Name() string { return m.name }

func (m CategoricalMap) Default() int { return m.fallback }

func (m CategoricalMap) Len() int { return len(m.codes) }

// Lookup reports the code for an exact, case-sensitive match.
func (m CategoricalMap) Lookup(label string) (int, bool) {
	code, ok := m.codes[label]
	return code, ok
}

// Encode never fails: anything that is not an exact match maps to the default.
func (m CategoricalMap) Encode(label string) int {
	if code, ok := m.codes[label]; ok {
		return code
	}
	return m.fallback
}

// EncodeLabel is Encode for an optional request field.
func (m CategoricalMap) EncodeLabel(label Label) int {
	if !label.Set {
		return m.fallback
	}
	return m.Encode(label.Value)
}
