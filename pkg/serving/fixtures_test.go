package serving

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aarogya-ai/platform/pkg/common/logger"
	"github.com/aarogya-ai/platform/pkg/imaging"
	"github.com/aarogya-ai/platform/pkg/serving/onnx"
)

type fakeImageModel struct {
	mu     sync.Mutex
	output []float32
	err    error
	calls  int
	shape  []int64
}

func (m *fakeImageModel) Predict(t imaging.Tensor) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.shape = t.Shape
	if m.err != nil {
		return nil, m.err
	}
	return append([]float32(nil), m.output...), nil
}

func (m *fakeImageModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
	sets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	c.sets++
	return nil
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	return false, errors.New("redis down")
}

func (failingCache) Set(ctx context.Context, key string, value interface{}) error {
	return errors.New("redis down")
}

type publishedEvent struct {
	eventType string
	source    string
	data      map[string]interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, source: source, data: data})
	return p.err
}

var heartFeatureNames = []string{
	"General_Health", "Checkup", "Exercise", "Skin_Cancer", "Other_Cancer",
	"Depression", "Diabetes", "Arthritis", "Sex", "Age_Category",
	"Height_(cm)", "Weight_(kg)", "BMI", "Smoking_History",
	"Alcohol_Consumption", "Fruit_Consumption",
	"Green_Vegetables_Consumption", "FriedPotato_Consumption",
}

func artifactJSON(t *testing.T, names []string, bias float64, coefficients []float64) []byte {
	t.Helper()
	body := map[string]interface{}{
		"model": map[string]interface{}{
			"type":          "classification",
			"algorithm":     "logistic_regression",
			"feature_names": names,
			"weights": map[string]interface{}{
				"bias":         bias,
				"coefficients": coefficients,
			},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	return data
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

const testManifest = `
models:
  - name: lung_xray
    kind: image
    path: best_lung_model.onnx
    output_shape: [1, 1]
  - name: bones_xray
    kind: image
    path: best_custom_cnn.onnx
    output_shape: [1, 3]
  - name: kidney_xray
    kind: image
    path: kidney_model.onnx
    output_shape: [1, 4]
  - name: heart
    kind: risk
    path: heart_model.json
    features: heart
  - name: diabetes
    kind: risk
    path: diabetes_model.json
    features: diabetes
  - name: lung_cancer
    kind: risk
    path: lung_model.json
    features: lung_cancer
`

type testModels struct {
	dir    string
	lung   *fakeImageModel
	bones  *fakeImageModel
	kidney *fakeImageModel
}

func writeModelDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"models.yaml":         []byte(testManifest),
		"heart_model.json":    artifactJSON(t, heartFeatureNames, -3.2, []float64{-0.4, 0.1, -0.3, 0.2, 0.2, 0.1, 0.6, 0.2, 0.5, 0.25, -0.01, 0.005, 0.04, 0.3, -0.05, -0.002, -0.003, 0.01}),
		"diabetes_model.json": artifactJSON(t, nil, -9.5, []float64{0.2, 0.04, 0.08, -0.3, 0.15, 0.05, 0.9, 0.02}),
		"lung_model.json":     artifactJSON(t, nil, -2.0, append(filled(13, 0.3), 0, 0)),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func newTestService(t *testing.T, cache ResultCache, events EventPublisher) (*Service, testModels) {
	t.Helper()
	logger.Silence()

	tm := testModels{
		dir:    writeModelDir(t),
		lung:   &fakeImageModel{output: []float32{0.73}},
		bones:  &fakeImageModel{output: []float32{0.1, 0.85, 0.05}},
		kidney: &fakeImageModel{output: []float32{0.2, 0.1, 0.6, 0.1}},
	}
	fakes := map[string]*fakeImageModel{LungXRay: tm.lung, BonesXRay: tm.bones, KidneyXRay: tm.kidney}

	manifest, err := LoadManifest(filepath.Join(tm.dir, "models.yaml"))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	registry, err := BuildRegistry(manifest, func(cfg onnx.Config) (ImageModel, error) {
		model, ok := fakes[cfg.Name]
		if !ok {
			return nil, errors.New("unexpected image model " + cfg.Name)
		}
		return model, nil
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	if err := registry.Require(RequiredModels...); err != nil {
		t.Fatalf("registry incomplete: %v", err)
	}
	return NewService(registry, cache, events), tm
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
