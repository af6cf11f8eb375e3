package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Models
	ModelsDir      string
	ModelManifest  string
	ONNXRuntimeLib string
	MaxImagePixels int

	// Redis result cache
	CacheEnabled  bool
	CacheTTL      time.Duration
	CachePrefix   string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka prediction events
	EventsEnabled bool
	KafkaBrokers  []string
	EventsTopic   string
}

func Load() *Config {
	modelsDir := getEnv("MODELS_DIR", "models")
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 60*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 16*1024*1024)),

		ModelsDir:      modelsDir,
		ModelManifest:  getEnv("MODEL_MANIFEST", filepath.Join(modelsDir, "models.yaml")),
		ONNXRuntimeLib: getEnv("ONNX_RUNTIME_LIB", ""),
		MaxImagePixels: getIntEnv("MAX_IMAGE_PIXELS", 178956970),

		CacheEnabled:  getBoolEnv("CACHE_ENABLED", false),
		CacheTTL:      getDuration("CACHE_TTL", 10*time.Minute),
		CachePrefix:   getEnv("CACHE_PREFIX", "aarogya:prediction"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		EventsEnabled: getBoolEnv("EVENTS_ENABLED", false),
		KafkaBrokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		EventsTopic:   getEnv("PREDICTION_EVENTS_TOPIC", "prediction.completed"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getStringSliceEnv splits a comma separated list, e.g. "kafka-1:9092,kafka-2:9092".
func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
