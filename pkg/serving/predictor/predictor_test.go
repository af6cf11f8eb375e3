package predictor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeArtifact(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestLoadArtifact(t *testing.T) {
	path := writeArtifact(t, `{"model": {"type": "classification", "algorithm": "logistic_regression",
		"feature_names": ["a", "b"], "weights": {"bias": 0.5, "coefficients": [1.0, -2.0]}}}`)
	model, err := Load("toy", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.Name() != "toy" || model.Path() != path || model.FeatureCount() != 2 {
		t.Fatalf("unexpected model %+v", model)
	}
	names := model.FeatureNames()
	names[0] = "mutated"
	if model.FeatureNames()[0] != "a" {
		t.Fatal("feature names must not be mutable through the accessor")
	}

	first, err := model.PredictProba([]float64{1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := model.PredictProba([]float64{1, 1})
	if first != second {
		t.Fatalf("predictions differ for identical input: %v vs %v", first, second)
	}
	if first[1] >= 0.5 {
		t.Fatalf("expected negative lean for bias 0.5 + 1 - 2, got %v", first[1])
	}
}

func TestLoadRejectsBadArtifacts(t *testing.T) {
	if _, err := Load("missing", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Load("broken", writeArtifact(t, "{not json")); err == nil {
		t.Fatal("expected parse error")
	}
	_, err := Load("empty", writeArtifact(t, `{"model": {"weights": {"bias": 1}}}`))
	if !errors.Is(err, ErrEmptyArtifact) {
		t.Fatalf("expected ErrEmptyArtifact, got %v", err)
	}
	if _, err := Load("skewed", writeArtifact(t, `{"model": {"feature_names": ["a"], "weights": {"coefficients": [1, 2]}}}`)); err == nil {
		t.Fatal("expected names/coefficients mismatch error")
	}
}

func TestPredictProbaWidthMismatch(t *testing.T) {
	var artifact Artifact
	artifact.Model.Weights.Coefficients = []float64{1, 2, 3}
	model, err := FromArtifact("width", artifact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.Algorithm() != "logistic_regression" {
		t.Fatalf("unexpected default algorithm %s", model.Algorithm())
	}
	if _, err := model.PredictProba([]float64{1, 2}); err == nil {
		t.Fatal("expected width mismatch")
	}
}
