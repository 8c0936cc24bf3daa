package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort       = "8080"
	DefaultModelPath  = "models/pcos_model.json"
	DefaultSchemaPath = "models/feature_order.json"
)

// Artifacts locates the files produced by the training pipeline.
type Artifacts struct {
	ModelPath    string
	SchemaPath   string
	DefaultsPath string
}

type Config struct {
	Port        string
	GinMode     string
	DatabaseURL string
	EnableDB    bool
	LogLevel    string
	Artifacts   Artifacts
}

// Load reads the environment, seeded from .env when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        GetEnv("PORT", DefaultPort),
		GinMode:     GetEnv("GIN_MODE", "release"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(GetEnv("ENABLE_DB", "false"), "true"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		Artifacts:   ArtifactsFromEnv(),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return cfg, nil
}

// ArtifactsFromEnv returns artifact paths from MODEL_PATH,
// FEATURE_ORDER_PATH and CLINICAL_DEFAULTS_PATH.
func ArtifactsFromEnv() Artifacts {
	return Artifacts{
		ModelPath:    GetEnv("MODEL_PATH", DefaultModelPath),
		SchemaPath:   GetEnv("FEATURE_ORDER_PATH", DefaultSchemaPath),
		DefaultsPath: os.Getenv("CLINICAL_DEFAULTS_PATH"),
	}
}

func GetEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
