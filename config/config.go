package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Хранилища локального состояния (маркеры голосов и итоги турниров).
const (
	MarkerStoreMemory   = "memory"
	MarkerStorePostgres = "postgres"
	MarkerStoreR2       = "r2"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	APIBaseURL     string
	ServerPort     int
	JWTSecretKey   string
	AllowedOrigins []string

	CacheTTL         time.Duration
	APIRateLimit     float64
	APITimeout       time.Duration
	AllowResultReset bool
	Location         *time.Location

	MarkerStore string
	DatabaseURL string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	apiURL := strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/")
	if apiURL == "" {
		return nil, fmt.Errorf("API_BASE_URL environment variable is not set")
	}
	if u, err := url.Parse(apiURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", apiURL)
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cacheTTL, err := durationEnv("CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	if cacheTTL < 0 {
		return nil, fmt.Errorf("CACHE_TTL must not be negative, got %s", cacheTTL)
	}

	apiTimeout, err := durationEnv("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	if apiTimeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT must be positive, got %s", apiTimeout)
	}

	rateLimit := 20.0
	if raw := os.Getenv("API_RATE_LIMIT"); raw != "" {
		rateLimit, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid API_RATE_LIMIT environment variable: %w", err)
		}
		if rateLimit < 0 {
			return nil, fmt.Errorf("API_RATE_LIMIT must not be negative, got %v", rateLimit)
		}
	}

	allowReset := false
	if raw := os.Getenv("ALLOW_RESULT_RESET"); raw != "" {
		allowReset, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOW_RESULT_RESET environment variable: %w", err)
		}
	}

	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE environment variable: %w", err)
		}
	}

	cfg := &Config{
		APIBaseURL:        apiURL,
		ServerPort:        port,
		JWTSecretKey:      os.Getenv("JWT_SECRET_KEY"),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		CacheTTL:          cacheTTL,
		APIRateLimit:      rateLimit,
		APITimeout:        apiTimeout,
		AllowResultReset:  allowReset,
		Location:          loc,
		MarkerStore:       strings.ToLower(strings.TrimSpace(os.Getenv("MARKER_STORE"))),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
	}
	if cfg.MarkerStore == "" {
		cfg.MarkerStore = MarkerStoreMemory
	}

	switch cfg.MarkerStore {
	case MarkerStoreMemory:
	case MarkerStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for MARKER_STORE=%s", cfg.MarkerStore)
		}
	case MarkerStoreR2:
		if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME are required for MARKER_STORE=%s", cfg.MarkerStore)
		}
	default:
		return nil, fmt.Errorf("unknown MARKER_STORE %q (expected memory, postgres or r2)", cfg.MarkerStore)
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
