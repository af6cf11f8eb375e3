package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aarogya-ai/platform/pkg/ml/linear"
)

// Artifact is the JSON export of a fitted risk classifier.
type Artifact struct {
	Model struct {
		Type         string         `json:"type"`
		Algorithm    string         `json:"algorithm"`
		FeatureNames []string       `json:"feature_names"`
		Weights      linear.Weights `json:"weights"`
	} `json:"model"`
}

var ErrEmptyArtifact = errors.New("artifact has no coefficients")

// RiskModel is a loaded, read-only logistic regression. It is safe for
// concurrent use.
type RiskModel struct {
	name      string
	path      string
	algorithm string
	features  []string
	weights   linear.Weights
}

// Load reads and validates an artifact from disk.
func Load(name, path string) (*RiskModel, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	model, err := FromArtifact(name, artifact)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	model.path = path
	return model, nil
}

func FromArtifact(name string, artifact Artifact) (*RiskModel, error) {
	weights := artifact.Model.Weights
	if len(weights.Coefficients) == 0 {
		return nil, ErrEmptyArtifact
	}
	names := artifact.Model.FeatureNames
	if len(names) > 0 && len(names) != len(weights.Coefficients) {
		return nil, fmt.Errorf("artifact declares %d feature names but %d coefficients", len(names), len(weights.Coefficients))
	}
	algorithm := artifact.Model.Algorithm
	if algorithm == "" {
		algorithm = "logistic_regression"
	}
	return &RiskModel{
		name:      name,
		algorithm: algorithm,
		features:  append([]string(nil), names...),
		weights: linear.Weights{
			Bias:         weights.Bias,
			Coefficients: append([]float64(nil), weights.Coefficients...),
		},
	}, nil
}

func (m *RiskModel) Name() string { return m.name }

func (m *RiskModel) Path() string { return m.path }

func (m *RiskModel) Algorithm() string { return m.algorithm }

// FeatureNames returns the names the model was fitted with, if it declares any.
func (m *RiskModel) FeatureNames() []string {
	return append([]string(nil), m.features...)
}

func (m *RiskModel) FeatureCount() int {
	return m.weights.FeatureCount()
}

// PredictProba returns [p(negative), p(positive)] for one row.
func (m *RiskModel) PredictProba(values []float64) ([2]float64, error) {
	proba, err := linear.PredictProba(m.weights, values)
	if err != nil {
		return proba, fmt.Errorf("%s: %w", m.name, err)
	}
	return proba, nil
}
