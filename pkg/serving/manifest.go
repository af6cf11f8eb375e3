package serving

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aarogya-ai/platform/pkg/common/models"
	"gopkg.in/yaml.v3"
)

// Model names the dispatcher resolves.
const (
	LungXRay   = "lung_xray"
	BonesXRay  = "bones_xray"
	KidneyXRay = "kidney_xray"
	HeartRisk  = "heart"
	Diabetes   = "diabetes"
	LungCancer = "lung_cancer"
)

// RequiredModels must all be present before the service accepts traffic.
var RequiredModels = []string{LungXRay, BonesXRay, KidneyXRay, HeartRisk, Diabetes, LungCancer}

// ModelEntry is one model in the manifest.
type ModelEntry struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`

	// risk models
	Features string `yaml:"features"`

	// image models
	InputName   string  `yaml:"input_name"`
	OutputName  string  `yaml:"output_name"`
	InputShape  []int64 `yaml:"input_shape"`
	OutputShape []int64 `yaml:"output_shape"`
}

type Manifest struct {
	Models []ModelEntry `yaml:"models"`
}

// LoadManifest reads the YAML model manifest. Relative artifact paths are
// resolved against the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	manifest, err := ParseManifest(content)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range manifest.Models {
		if p := manifest.Models[i].Path; p != "" && !filepath.IsAbs(p) {
			manifest.Models[i].Path = filepath.Join(base, p)
		}
	}
	return manifest, nil
}

func ParseManifest(content []byte) (Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if len(manifest.Models) == 0 {
		return Manifest{}, errors.New("no models configured")
	}
	seen := map[string]struct{}{}
	for _, entry := range manifest.Models {
		if entry.Name == "" {
			return Manifest{}, errors.New("model entry without name")
		}
		if _, dup := seen[entry.Name]; dup {
			return Manifest{}, fmt.Errorf("model %s listed twice", entry.Name)
		}
		seen[entry.Name] = struct{}{}
		switch entry.Kind {
		case models.KindImage:
		case models.KindRisk:
			if entry.Features == "" {
				return Manifest{}, fmt.Errorf("risk model %s needs a features spec", entry.Name)
			}
		default:
			return Manifest{}, fmt.Errorf("model %s has unknown kind %q", entry.Name, entry.Kind)
		}
		if entry.Path == "" {
			return Manifest{}, fmt.Errorf("model %s has no path", entry.Name)
		}
	}
	return manifest, nil
}
