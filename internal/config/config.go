package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration for one pipeline
// invocation.
type AppConfig struct {
	BlobStoreRoot     string
	SourceRoot        string
	PublisherBaseURL  string
	PublisherToken    string
	LogDir            string
	CacheDir          string
	RequestTimeout    time.Duration
	SourceMaxConnWait time.Duration
	EnsembleSize      int
}

// Load loads the configuration from .env files and environment variables,
// trying the executable's own directory first and the working directory
// second, matching how operators colocate a .env next to the binary in a
// cron deployment.
func Load() (*AppConfig, error) {
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("loaded configuration from binary directory")
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	dataPath := getEnv("DATA_PATH", "")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("failed to create cache directory")
	}

	requestTimeoutSecs, _ := strconv.Atoi(getEnv("PUBLISHER_REQUEST_TIMEOUT_SECONDS", "30"))
	maxConnWaitSecs, _ := strconv.Atoi(getEnv("SOURCE_MAX_CONN_WAIT_SECONDS", "60"))
	ensembleSize, _ := strconv.Atoi(getEnv("ENSEMBLE_SIZE", "51"))

	cfg := &AppConfig{
		BlobStoreRoot:     getEnv("BLOBSTORE_ROOT", filepath.Join(dataPath, "blobstore")),
		SourceRoot:        getEnv("SOURCE_ROOT", filepath.Join(dataPath, "source")),
		PublisherBaseURL:  getEnv("PUBLISHER_BASE_URL", ""),
		PublisherToken:    getEnv("PUBLISHER_TOKEN", ""),
		LogDir:            logDir,
		CacheDir:          cacheDir,
		RequestTimeout:    time.Duration(requestTimeoutSecs) * time.Second,
		SourceMaxConnWait: time.Duration(maxConnWaitSecs) * time.Second,
		EnsembleSize:      ensembleSize,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
