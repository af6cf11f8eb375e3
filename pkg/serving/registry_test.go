package serving

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aarogya-ai/platform/pkg/common/logger"
	"github.com/aarogya-ai/platform/pkg/common/models"
	"github.com/aarogya-ai/platform/pkg/serving/onnx"
)

type closingModel struct {
	fakeImageModel
	closed bool
}

func (m *closingModel) Close() error {
	m.closed = true
	return nil
}

func riskManifest(dir, file, spec string) Manifest {
	return Manifest{Models: []ModelEntry{{
		Name:     "candidate",
		Kind:     "risk",
		Path:     filepath.Join(dir, file),
		Features: spec,
	}}}
}

func noImages(cfg onnx.Config) (ImageModel, error) {
	return nil, errors.New("no image models expected")
}

func TestBuildRegistryRiskFailures(t *testing.T) {
	logger.Silence()
	dir := t.TempDir()
	write := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("short.json", artifactJSON(t, nil, 0, filled(7, 0.1)))
	write("dup.json", artifactJSON(t, []string{"Sex", "Sex"}, 0, filled(2, 0.1)))
	write("garbage.json", []byte("{not json"))
	write("ok.json", artifactJSON(t, nil, 0, filled(8, 0.1)))

	cases := []struct {
		file, spec, want string
	}{
		{"ok.json", "kidney", "unknown features spec"},
		{"short.json", "diabetes", "candidate"},
		{"dup.json", "heart", "candidate"},
		{"garbage.json", "diabetes", "load risk model"},
		{"missing.json", "diabetes", "load risk model"},
	}
	for _, tc := range cases {
		_, err := BuildRegistry(riskManifest(dir, tc.file, tc.spec), noImages)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s/%s: expected error containing %q, got %v", tc.file, tc.spec, tc.want, err)
		}
	}

	registry, err := BuildRegistry(riskManifest(dir, "ok.json", "diabetes"), noImages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := registry.Require("candidate"); err != nil {
		t.Fatalf("candidate should be loaded: %v", err)
	}
}

func TestBuildRegistryImageFailureClosesLoaded(t *testing.T) {
	logger.Silence()
	first := &closingModel{}
	manifest := Manifest{Models: []ModelEntry{
		{Name: "first", Kind: "image", Path: "first.onnx", OutputShape: []int64{1, 2}},
		{Name: "second", Kind: "image", Path: "second.onnx", OutputShape: []int64{1, 2}},
	}}
	_, err := BuildRegistry(manifest, func(cfg onnx.Config) (ImageModel, error) {
		if cfg.Name == "first" {
			return first, nil
		}
		return nil, errors.New("corrupt graph")
	})
	if err == nil || !strings.Contains(err.Error(), "second") {
		t.Fatalf("expected load failure for second, got %v", err)
	}
	if !first.closed {
		t.Fatal("already loaded models must be released on failure")
	}
}

func TestRegistryRequireAndLookup(t *testing.T) {
	registry := NewRegistry()
	registry.AddImage(LungXRay, &fakeImageModel{}, models.ModelInfo{Path: "lung.onnx"})

	err := registry.Require(LungXRay, HeartRisk)
	if !errors.Is(err, ErrModelNotLoaded) || !strings.Contains(err.Error(), HeartRisk) {
		t.Fatalf("expected missing heart model, got %v", err)
	}
	if _, err := registry.Image(BonesXRay); !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("expected ErrModelNotLoaded, got %v", err)
	}
	if _, err := registry.Image(LungXRay); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if infos := registry.Models(); len(infos) != 1 || infos[0].Kind != "image" {
		t.Fatalf("unexpected model listing %+v", infos)
	}
}
