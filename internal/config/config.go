package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL      = "https://www.geodair.fr/api-ext"
	defaultDataDir      = "./data"
	defaultSchema       = "airwatch"
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 5 * time.Second
	defaultMaxPolls     = 24
	defaultInterval     = 24 * time.Hour
	defaultPort         = 8080
	defaultLimit        = 500
)

// Config holds runtime configuration for both the watcher and the API.
type Config struct {
	// Persistence: DatabaseURL selects the Postgres dataset store when set,
	// otherwise datasets live as CSV files under DataDir.
	DatabaseURL string
	DataDir     string
	Schema      string

	// Acquisition.
	GeodairBaseURL string
	GeodairAPIKey  string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	MaxPolls       int

	// Watcher daemon mode.
	FetchInterval time.Duration

	// API.
	Port         int
	BearerToken  string
	DefaultLimit int

	Debug bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DataDir:        getenvDefault("DATA_DIR", defaultDataDir),
		Schema:         getenvDefault("PG_SCHEMA", defaultSchema),
		GeodairBaseURL: getenvDefault("GEODAIR_BASE_URL", defaultBaseURL),
		GeodairAPIKey:  strings.TrimSpace(os.Getenv("GEODAIR_API_KEY")),
		RequestTimeout: defaultTimeout,
		PollInterval:   defaultPollInterval,
		MaxPolls:       defaultMaxPolls,
		FetchInterval:  defaultInterval,
		Port:           defaultPort,
		DefaultLimit:   defaultLimit,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	var err error
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return cfg, err
	}
	if cfg.PollInterval, err = getenvDuration("DOWNLOAD_POLL_INTERVAL", cfg.PollInterval); err != nil {
		return cfg, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", cfg.FetchInterval); err != nil {
		return cfg, err
	}
	if cfg.MaxPolls, err = getenvInt("DOWNLOAD_MAX_POLLS", cfg.MaxPolls); err != nil {
		return cfg, err
	}
	if cfg.Port, err = getenvInt("PORT", cfg.Port); err != nil {
		return cfg, err
	}
	if cfg.DefaultLimit, err = getenvInt("API_DEFAULT_LIMIT", cfg.DefaultLimit); err != nil {
		return cfg, err
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	debug := strings.TrimSpace(os.Getenv("DEBUG"))
	cfg.Debug = debug == "1" || strings.EqualFold(debug, "true")

	if cfg.DatabaseURL == "" && cfg.DataDir == "" {
		return cfg, errors.New("either DATABASE_URL or DATA_DIR is required")
	}
	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def, fmt.Errorf("invalid %s: %s", key, v)
	}
	return n, nil
}
