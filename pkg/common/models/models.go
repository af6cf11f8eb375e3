package models

import (
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // prediction.completed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// ImageResult is returned by the X-ray endpoints. Label is only set by models
// with a thresholded binary output.
type ImageResult struct {
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence"`
}

// RiskResult is returned by the questionnaire endpoints.
type RiskResult struct {
	RiskPercentage float64 `json:"risk_percentage"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Model kinds
const (
	KindImage = "image"
	KindRisk  = "risk"
)

// ModelInfo describes a loaded model for the /models listing.
type ModelInfo struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Path         string   `json:"path"`
	Algorithm    string   `json:"algorithm,omitempty"`
	FeatureSpec  string   `json:"feature_spec,omitempty"`
	FeatureNames []string `json:"feature_names,omitempty"`
	FeatureCount int      `json:"feature_count,omitempty"`
	InputShape   []int64  `json:"input_shape,omitempty"`
	OutputShape  []int64  `json:"output_shape,omitempty"`
}
