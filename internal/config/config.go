package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/logging"
)

const (
	ProfileStoreSQLite   = "sqlite"
	ProfileStorePostgres = "postgres"

	minSecretKeyLength = 32
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production": {},
	"changeme":                {},
	"secret":                  {},
}

type Config struct {
	Port         string
	SecretKey    string
	DBPath       string
	ProfileStore string
	DatabaseURL  string
	CookieSecure bool
	PublicURL    string

	GateTimeout     time.Duration
	GateRefererMode gate.RefererMode

	FulfillmentURL     string
	FulfillmentAPIKey  string
	FulfillmentTimeout time.Duration

	Log logging.Config
}

// LoadDotEnv reads .env when present. A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func Load() (Config, error) {
	secretKey, err := resolveSecretKey()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		SecretKey:         secretKey,
		DBPath:            getEnv("DB_PATH", filepath.Join("data", "vitaminpack.db")),
		ProfileStore:      strings.ToLower(getEnv("PROFILE_STORE", ProfileStoreSQLite)),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		GateRefererMode:   gate.ParseRefererMode(getEnv("GATE_REFERER_MODE", string(gate.RefererStrict))),
		FulfillmentURL:    getEnv("FULFILLMENT_API_URL", ""),
		FulfillmentAPIKey: getEnv("FULFILLMENT_API_KEY", ""),
	}
	cfg.Log = logging.Config{
		Level: getEnv("LOG_LEVEL", ""),
		Dev:   getEnv("LOG_DEV", "") == "1",
		File:  getEnv("LOG_FILE", ""),
	}

	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.GateTimeout, err = getDuration("GATE_TIMEOUT", gate.DefaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.FulfillmentTimeout, err = getDuration("FULFILLMENT_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	cfg.PublicURL = strings.TrimSuffix(getEnv("PUBLIC_URL", "http://localhost:"+cfg.Port), "/")
	if parsed, err := url.Parse(cfg.PublicURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Config{}, fmt.Errorf("PUBLIC_URL must be an absolute http(s) URL, got %q", cfg.PublicURL)
	}

	switch cfg.ProfileStore {
	case ProfileStoreSQLite:
	case ProfileStorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required when PROFILE_STORE=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unsupported PROFILE_STORE %q", cfg.ProfileStore)
	}

	return cfg, nil
}

func resolveSecretKey() (string, error) {
	secretKey := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secretKey == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secretKey)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secretKey) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secretKey, nil
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return value, nil
}
