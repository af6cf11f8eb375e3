package serving

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aarogya-ai/platform/pkg/common/logger"
	"github.com/aarogya-ai/platform/pkg/common/models"
	"github.com/aarogya-ai/platform/pkg/features"
	"github.com/aarogya-ai/platform/pkg/imaging"
	"github.com/aarogya-ai/platform/pkg/serving/onnx"
	"github.com/aarogya-ai/platform/pkg/serving/predictor"
)

// ImageModel is an X-ray classifier returning raw output activations.
type ImageModel interface {
	Predict(t imaging.Tensor) ([]float32, error)
}

// RiskModel is a tabular classifier exposing class probabilities.
type RiskModel interface {
	FeatureNames() []string
	FeatureCount() int
	PredictProba(values []float64) ([2]float64, error)
}

// ImageLoader builds an image model from its manifest entry.
type ImageLoader func(cfg onnx.Config) (ImageModel, error)

var ErrModelNotLoaded = errors.New("model not loaded")

type riskEntry struct {
	model RiskModel
	spec  features.FeatureSpec
	names []string
}

// Registry holds every model handle for the life of the process. It is filled
// before the server starts and only read afterwards.
type Registry struct {
	images map[string]ImageModel
	risks  map[string]riskEntry
	infos  map[string]models.ModelInfo
}

func NewRegistry() *Registry {
	return &Registry{
		images: make(map[string]ImageModel),
		risks:  make(map[string]riskEntry),
		infos:  make(map[string]models.ModelInfo),
	}
}

func (r *Registry) AddImage(name string, model ImageModel, info models.ModelInfo) {
	info.Name = name
	info.Kind = models.KindImage
	r.images[name] = model
	r.infos[name] = info
}

// AddRisk registers a risk model after checking that its feature spec can
// produce the row the model expects.
func (r *Registry) AddRisk(name string, model RiskModel, spec features.FeatureSpec, info models.ModelInfo) error {
	names := model.FeatureNames()
	if err := spec.Compatible(names, model.FeatureCount()); err != nil {
		return fmt.Errorf("model %s: %w", name, err)
	}
	info.Name = name
	info.Kind = models.KindRisk
	info.FeatureSpec = spec.Name
	info.FeatureNames = names
	if len(names) == 0 {
		info.FeatureNames = spec.SlotNames()
	}
	info.FeatureCount = model.FeatureCount()
	r.risks[name] = riskEntry{model: model, spec: spec, names: names}
	r.infos[name] = info
	return nil
}

func (r *Registry) Image(name string) (ImageModel, error) {
	model, ok := r.images[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrModelNotLoaded)
	}
	return model, nil
}

func (r *Registry) risk(name string) (riskEntry, error) {
	entry, ok := r.risks[name]
	if !ok {
		return riskEntry{}, fmt.Errorf("%s: %w", name, ErrModelNotLoaded)
	}
	return entry, nil
}

// Require fails when any of the named models is missing.
func (r *Registry) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := r.infos[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrModelNotLoaded, missing)
	}
	return nil
}

// Models lists loaded models sorted by name.
func (r *Registry) Models() []models.ModelInfo {
	out := make([]models.ModelInfo, 0, len(r.infos))
	for _, info := range r.infos {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close releases image models that hold native resources.
func (r *Registry) Close() error {
	var errs []error
	for name, model := range r.images {
		if closer, ok := model.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ONNXLoader is the production ImageLoader.
func ONNXLoader(cfg onnx.Config) (ImageModel, error) {
	classifier, err := onnx.New(cfg)
	if err != nil {
		return nil, err
	}
	return classifier, nil
}

// BuildRegistry loads every model in the manifest. Any failure aborts start-up.
func BuildRegistry(manifest Manifest, loadImage ImageLoader) (*Registry, error) {
	registry := NewRegistry()
	for _, entry := range manifest.Models {
		switch entry.Kind {
		case models.KindImage:
			cfg := onnx.Config{
				Name:        entry.Name,
				Path:        entry.Path,
				InputName:   entry.InputName,
				OutputName:  entry.OutputName,
				InputShape:  entry.InputShape,
				OutputShape: entry.OutputShape,
			}
			if err := cfg.Validate(); err != nil {
				registry.Close()
				return nil, err
			}
			model, err := loadImage(cfg)
			if err != nil {
				registry.Close()
				return nil, fmt.Errorf("load image model %s: %w", entry.Name, err)
			}
			inputShape := cfg.InputShape
			if len(inputShape) == 0 {
				inputShape = []int64{1, imaging.Size, imaging.Size, 3}
			}
			registry.AddImage(entry.Name, model, models.ModelInfo{
				Path:        entry.Path,
				Algorithm:   "onnx",
				InputShape:  inputShape,
				OutputShape: entry.OutputShape,
			})
		case models.KindRisk:
			spec, ok := features.LookupSpec(entry.Features)
			if !ok {
				registry.Close()
				return nil, fmt.Errorf("model %s: unknown features spec %q (known: %v)", entry.Name, entry.Features, features.SpecNames())
			}
			model, err := predictor.Load(entry.Name, entry.Path)
			if err != nil {
				registry.Close()
				return nil, fmt.Errorf("load risk model %s: %w", entry.Name, err)
			}
			if err := registry.AddRisk(entry.Name, model, spec, models.ModelInfo{
				Path:      entry.Path,
				Algorithm: model.Algorithm(),
			}); err != nil {
				registry.Close()
				return nil, err
			}
		}

		logger.Log.WithFields(map[string]interface{}{
			"model": entry.Name,
			"kind":  entry.Kind,
			"path":  entry.Path,
		}).Info("Model loaded")
	}
	return registry, nil
}
