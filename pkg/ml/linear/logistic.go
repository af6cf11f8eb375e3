package linear

import (
	"fmt"
	"math"
)

// Weights are the fitted parameters of a binary logistic regression.
type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

func (w Weights) FeatureCount() int {
	return len(w.Coefficients)
}

// Predict returns the positive-class probability for a sample.
func Predict(weights Weights, sample []float64) float64 {
	return sigmoid(dot(weights.Coefficients, sample) + weights.Bias)
}

// PredictProba returns [p(negative), p(positive)] and rejects samples whose
// width does not match the model.
func PredictProba(weights Weights, sample []float64) ([2]float64, error) {
	if len(sample) != len(weights.Coefficients) {
		return [2]float64{}, fmt.Errorf("expected %d features, got %d", len(weights.Coefficients), len(sample))
	}
	p := Predict(weights, sample)
	return [2]float64{1 - p, p}, nil
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
