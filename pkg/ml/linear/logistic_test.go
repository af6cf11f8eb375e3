package linear

import (
	"math"
	"testing"
)

func TestPredictProbaSumsToOne(t *testing.T) {
	w := Weights{Bias: -1.5, Coefficients: []float64{0.8, -0.2, 0.05}}
	proba, err := PredictProba(w, []float64{1, 2, 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(proba[0]+proba[1]-1) > 1e-12 {
		t.Fatalf("probabilities do not sum to one: %v", proba)
	}
	want := 1 / (1 + math.Exp(-(-1.5 + 0.8 - 0.4 + 1.5)))
	if math.Abs(proba[1]-want) > 1e-12 {
		t.Fatalf("positive class = %v, want %v", proba[1], want)
	}
}

func TestPredictProbaRejectsWrongWidth(t *testing.T) {
	w := Weights{Coefficients: []float64{1, 2}}
	if _, err := PredictProba(w, []float64{1}); err == nil {
		t.Fatal("expected width mismatch error")
	}
}

func TestPredictZeroWeights(t *testing.T) {
	if p := Predict(Weights{Coefficients: []float64{0, 0}}, []float64{5, 7}); p != 0.5 {
		t.Fatalf("expected 0.5, got %v", p)
	}
}
