package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Version is the bootpack release version.
const Version = "0.1.0"

type Config struct {
	DataDir      string
	BuildRoot    string
	ManifestPath string
	Alignment    int
	MaxImageSize string
	LogLevel     string
	LogFormat    string
	LogFile      string
	OtelEnabled  bool
	OtelEndpoint string
	OtelInsecure bool
	OtelService  string
	Version      string
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() *Config {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:      getEnv("BOOTPACK_DATA_DIR", "dist"),
		BuildRoot:    getEnv("BOOTPACK_BUILD_ROOT", "."),
		ManifestPath: getEnv("BOOTPACK_MANIFEST", "bootpack.yaml"),
		Alignment:    getEnvInt("BOOTPACK_ALIGNMENT", 8),
		MaxImageSize: getEnv("BOOTPACK_MAX_IMAGE_SIZE", "64MB"),
		LogLevel:     getEnv("BOOTPACK_LOG_LEVEL", "info"),
		LogFormat:    getEnv("BOOTPACK_LOG_FORMAT", "text"),
		LogFile:      getEnv("BOOTPACK_LOG_FILE", ""),
		OtelEnabled:  getEnvBool("BOOTPACK_OTEL_ENABLED", false),
		OtelEndpoint: getEnv("BOOTPACK_OTEL_ENDPOINT", "localhost:4317"),
		OtelInsecure: getEnvBool("BOOTPACK_OTEL_INSECURE", true),
		OtelService:  getEnv("BOOTPACK_OTEL_SERVICE_NAME", "bootpack"),
		Version:      Version,
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
