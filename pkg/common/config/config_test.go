package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODELS_DIR", "")
	t.Setenv("MODEL_MANIFEST", "")
	t.Setenv("CACHE_ENABLED", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MAX_IMAGE_PIXELS", "")

	cfg := Load()
	if cfg.ServerPort != "5000" {
		t.Fatalf("expected default port 5000, got %s", cfg.ServerPort)
	}
	if cfg.ModelManifest != filepath.Join("models", "models.yaml") {
		t.Fatalf("unexpected manifest path %s", cfg.ModelManifest)
	}
	if cfg.CacheEnabled {
		t.Fatal("expected cache disabled by default")
	}
	if cfg.MaxImagePixels != 178956970 {
		t.Fatalf("unexpected pixel limit %d", cfg.MaxImagePixels)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODELS_DIR", "/srv/models")
	t.Setenv("MODEL_MANIFEST", "")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("MAX_IMAGE_PIXELS", "4000000")

	cfg := Load()
	if cfg.ModelManifest != filepath.Join("/srv/models", "models.yaml") {
		t.Fatalf("manifest should follow MODELS_DIR, got %s", cfg.ModelManifest)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != 90*time.Second {
		t.Fatalf("unexpected cache settings %v %v", cfg.CacheEnabled, cfg.CacheTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("invalid REDIS_DB should fall back to 0, got %d", cfg.RedisDB)
	}
	if cfg.MaxImagePixels != 4000000 {
		t.Fatalf("unexpected pixel limit %d", cfg.MaxImagePixels)
	}
}
