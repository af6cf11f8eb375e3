package features

import "sort"

// HeartSpec follows the column names of the cardiovascular survey the heart
// model was fitted on. Rows are reordered to the artifact's own name list.
var HeartSpec = FeatureSpec{
	Name:  "heart",
	Named: true,
	Slots: []Slot{
		categorical("General_Health", "general_health", HealthMap),
		constant("Checkup", 1),
		categorical("Exercise", "exercise", YesNoMap),
		constant("Skin_Cancer", 0),
		constant("Other_Cancer", 0),
		constant("Depression", 0),
		categorical("Diabetes", "diabetes", YesNoMap),
		constant("Arthritis", 0),
		categorical("Sex", "gender", GenderMap),
		{Name: "Age_Category", Source: SourceAgeCategory, Field: "age"},
		number("Height_(cm)", "height_cm"),
		number("Weight_(kg)", "weight_kg"),
		{Name: "BMI", Source: SourceBMI, Field: "bmi"},
		categorical("Smoking_History", "smoking_history", SmokingMap),
		categorical("Alcohol_Consumption", "alcohol_consumption", AlcoholMap),
		integer("Fruit_Consumption", "fruit_consumption"),
		integer("Green_Vegetables_Consumption", "green_veg_consumption"),
		constant("FriedPotato_Consumption", 0),
	},
}

var DiabetesSpec = FeatureSpec{
	Name: "diabetes",
	Slots: []Slot{
		categorical("gender", "gender", GenderMap),
		integer("age", "age"),
		{Name: "bmi", Source: SourceBMI, Field: "bmi"},
		categorical("exercise", "exercise", YesNoMap),
		categorical("smoking_history", "smoking_history", SmokingMap),
		categorical("alcohol_consumption", "alcohol_consumption", AlcoholMap),
		number("hba1c_level", "hba1c_level"),
		number("blood_glucose_level", "blood_glucose_level"),
	},
}

// LungCancerSpec ends with two zero slots. The fitted model takes 15 inputs
// while the questionnaire collects 13; keep both pads at indices 13 and 14.
var LungCancerSpec = FeatureSpec{
	Name: "lung_cancer",
	Slots: []Slot{
		categorical("gender", "gender", GenderMap),
		integer("age", "age"),
		categorical("smoking_history", "smoking_history", SmokingMap),
		categorical("alcohol_consumption", "alcohol_consumption", AlcoholMap),
		categorical("yellow_fingers", "yellow_fingers", YesNoMap),
		categorical("anxiety", "anxiety", YesNoMap),
		categorical("chronic_disease", "chronic_disease", YesNoMap),
		categorical("fatigue", "fatigue", YesNoMap),
		categorical("wheezing", "wheezing", YesNoMap),
		categorical("coughing", "coughing", YesNoMap),
		categorical("shortness_of_breath", "shortness_of_breath", YesNoMap),
		categorical("swallowing_difficulty", "swallowing_difficulty", YesNoMap),
		categorical("chest_pain", "chest_pain", YesNoMap),
		constant("padding_13", 0),
		constant("padding_14", 0),
	},
}

var specs = map[string]FeatureSpec{
	HeartSpec.Name:      HeartSpec,
	DiabetesSpec.Name:   DiabetesSpec,
	LungCancerSpec.Name: LungCancerSpec,
}

// LookupSpec returns a built-in feature spec by name.
func LookupSpec(name string) (FeatureSpec, bool) {
	spec, ok := specs[name]
	return spec, ok
}

// SpecNames lists the built-in specs.
func SpecNames() []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SlotNames returns the slot names in declaration order.
func (s FeatureSpec) SlotNames() []string {
	names := make([]string, len(s.Slots))
	for i, slot := range s.Slots {
		names[i] = slot.Name
	}
	return names
}
