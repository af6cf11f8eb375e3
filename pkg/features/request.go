package features

// RiskRequest is the questionnaire payload shared by the risk endpoints. Every
// field is optional; a model only reads the fields its FeatureSpec names.
type RiskRequest struct {
	Gender              Label  `json:"gender"`
	Age                 Number `json:"age"`
	AgeCategory         Label  `json:"age_category"`
	WeightKg            Number `json:"weight_kg"`
	HeightCm            Number `json:"height_cm"`
	BMI                 Number `json:"bmi"`
	Exercise            Label  `json:"exercise"`
	GeneralHealth       Label  `json:"general_health"`
	Diabetes            Label  `json:"diabetes"`
	SmokingHistory      Label  `json:"smoking_history"`
	AlcoholConsumption  Label  `json:"alcohol_consumption"`
	FruitConsumption    Number `json:"fruit_consumption"`
	GreenVegConsumption Number `json:"green_veg_consumption"`
	HbA1cLevel          Number `json:"hba1c_level"`
	BloodGlucoseLevel   Number `json:"blood_glucose_level"`

	YellowFingers        Label `json:"yellow_fingers"`
	Anxiety              Label `json:"anxiety"`
	ChronicDisease       Label `json:"chronic_disease"`
	Fatigue              Label `json:"fatigue"`
	Wheezing             Label `json:"wheezing"`
	Coughing             Label `json:"coughing"`
	ShortnessOfBreath    Label `json:"shortness_of_breath"`
	SwallowingDifficulty Label `json:"swallowing_difficulty"`
	ChestPain            Label `json:"chest_pain"`
}

var labelFields = map[string]func(RiskRequest) Label{
	"gender":                func(r RiskRequest) Label { return r.Gender },
	"age_category":          func(r RiskRequest) Label { return r.AgeCategory },
	"exercise":              func(r RiskRequest) Label { return r.Exercise },
	"general_health":        func(r RiskRequest) Label { return r.GeneralHealth },
	"diabetes":              func(r RiskRequest) Label { return r.Diabetes },
	"smoking_history":       func(r RiskRequest) Label { return r.SmokingHistory },
	"alcohol_consumption":   func(r RiskRequest) Label { return r.AlcoholConsumption },
	"yellow_fingers":        func(r RiskRequest) Label { return r.YellowFingers },
	"anxiety":               func(r RiskRequest) Label { return r.Anxiety },
	"chronic_disease":       func(r RiskRequest) Label { return r.ChronicDisease },
	"fatigue":               func(r RiskRequest) Label { return r.Fatigue },
	"wheezing":              func(r RiskRequest) Label { return r.Wheezing },
	"coughing":              func(r RiskRequest) Label { return r.Coughing },
	"shortness_of_breath":   func(r RiskRequest) Label { return r.ShortnessOfBreath },
	"swallowing_difficulty": func(r RiskRequest) Label { return r.SwallowingDifficulty },
	"chest_pain":            func(r RiskRequest) Label { return r.ChestPain },
}

var numberFields = map[string]func(RiskRequest) Number{
	"age":                   func(r RiskRequest) Number { return r.Age },
	"weight_kg":             func(r RiskRequest) Number { return r.WeightKg },
	"height_cm":             func(r RiskRequest) Number { return r.HeightCm },
	"bmi":                   func(r RiskRequest) Number { return r.BMI },
	"fruit_consumption":     func(r RiskRequest) Number { return r.FruitConsumption },
	"green_veg_consumption": func(r RiskRequest) Number { return r.GreenVegConsumption },
	"hba1c_level":           func(r RiskRequest) Number { return r.HbA1cLevel },
	"blood_glucose_level":   func(r RiskRequest) Number { return r.BloodGlucoseLevel },
}

// Label returns the categorical field with the given JSON name.
func (r RiskRequest) Label(field string) Label {
	if get, ok := labelFields[field]; ok {
		return get(r)
	}
	return Label{}
}

// Number returns the numeric field with the given JSON name.
func (r RiskRequest) Number(field string) Number {
	if get, ok := numberFields[field]; ok {
		return get(r)
	}
	return Number{}
}
