package serving

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseManifestRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"empty":        "models: []",
		"no name":      "models:\n  - kind: image\n    path: a.onnx",
		"duplicate":    "models:\n  - {name: a, kind: image, path: a.onnx}\n  - {name: a, kind: image, path: b.onnx}",
		"unknown kind": "models:\n  - {name: a, kind: audio, path: a.onnx}",
		"risk no spec": "models:\n  - {name: a, kind: risk, path: a.json}",
		"no path":      "models:\n  - {name: a, kind: image}",
		"invalid yaml": "models: [",
	}
	for name, content := range cases {
		if _, err := ParseManifest([]byte(content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadManifestResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	content := "models:\n  - {name: lung_xray, kind: image, path: lung.onnx}\n  - {name: heart, kind: risk, path: /opt/heart.json, features: heart}\n"
	path := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := manifest.Models[0].Path; got != filepath.Join(dir, "lung.onnx") {
		t.Fatalf("relative path not resolved: %s", got)
	}
	if got := manifest.Models[1].Path; got != "/opt/heart.json" {
		t.Fatalf("absolute path rewritten: %s", got)
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read manifest") {
		t.Fatalf("expected read error, got %v", err)
	}
}
