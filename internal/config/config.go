package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported upstream providers.
const (
	ProviderNatStat      = "natstat"
	ProviderSportsDataIO = "sportsdataio"
)

// Config holds all application configuration
type Config struct {
	// Provider selection
	Provider string `envconfig:"PROVIDER" default:"natstat"`
	League   string `envconfig:"LEAGUE" default:"pfb"`
	Season   string `envconfig:"SEASON" default:"2024"`

	// NatStat API
	NatStatAPIKey  string `envconfig:"NATSTAT_API_KEY" default:""`
	NatStatBaseURL string `envconfig:"NATSTAT_BASE_URL" default:"https://interst.at"`

	// SportsDataIO API
	SportsDataIOAPIKey  string `envconfig:"SPORTSDATAIO_API_KEY" default:""`
	SportsDataIOBaseURL string `envconfig:"SPORTSDATAIO_BASE_URL" default:"https://api.sportsdata.io/v3/nfl"`

	// Fetching
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	APIRateLimit      float64       `envconfig:"API_RATE_LIMIT" default:"20"`
	APIBurstLimit     int           `envconfig:"API_BURST_LIMIT" default:"20"`
	FanOutConcurrency int           `envconfig:"FANOUT_CONCURRENCY" default:"100"`
	UpsertBatchSize   int           `envconfig:"UPSERT_BATCH_SIZE" default:"500"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBName     string `envconfig:"DB_NAME" default:"sportsync"`
	DBUser     string `envconfig:"DB_USER" default:"sportsync"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Scheduler
	JobInterval time.Duration `envconfig:"JOB_INTERVAL" default:"168h"`
	EnabledJobs []string      `envconfig:"ENABLED_JOBS" default:"teams,players,games,participants,timeframes,statlines"`

	// Caching
	CacheTTLTeams time.Duration `envconfig:"CACHE_TTL_TEAMS" default:"336h"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderNatStat:
	case ProviderSportsDataIO:
		if c.SportsDataIOAPIKey == "" {
			return fmt.Errorf("SPORTSDATAIO_API_KEY is required when PROVIDER=%s", ProviderSportsDataIO)
		}
	default:
		return fmt.Errorf("unsupported PROVIDER %q", c.Provider)
	}

	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	if c.FanOutConcurrency < 1 {
		return fmt.Errorf("FANOUT_CONCURRENCY must be positive, got %d", c.FanOutConcurrency)
	}

	if c.UpsertBatchSize < 1 {
		return fmt.Errorf("UPSERT_BATCH_SIZE must be positive, got %d", c.UpsertBatchSize)
	}

	if c.JobInterval <= 0 {
		return fmt.Errorf("JOB_INTERVAL must be positive, got %s", c.JobInterval)
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// JobEnabled reports whether the named job is listed in ENABLED_JOBS.
func (c *Config) JobEnabled(name string) bool {
	for _, j := range c.EnabledJobs {
		if strings.EqualFold(strings.TrimSpace(j), name) {
			return true
		}
	}
	return false
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
