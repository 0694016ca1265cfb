package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/civix-app/civix-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	EmbeddingConnectorCfg  EmbeddingConnectorConfig  `envPrefix:"EMBEDDING_"`
	CompletionConnectorCfg CompletionConnectorConfig `envPrefix:"COMPLETION_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Structured rules configuration
	RulesDataDir string `env:"RULES_DATA_DIR" envDefault:"data/rules"`

	// Retrieval configuration
	DefaultTopK int `env:"DEFAULT_TOP_K" envDefault:"5"`
	MaxTopK     int `env:"MAX_TOP_K" envDefault:"20"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Environment (set from flag, not from env var)
	Environment string
}

// EmbeddingConnectorConfig configures the Gemini embedding service client.
type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Model string               `env:"MODEL" envDefault:"text-embedding-004"`
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// CompletionConnectorConfig configures the answer-synthesis model client.
// Provider selects which backend the builder wires in.
type CompletionConnectorConfig struct {
	HTTPClientConfig
	Provider    string               `env:"PROVIDER" envDefault:"anthropic"`
	Model       string               `env:"MODEL,notEmpty"`
	MaxTokens   int                  `env:"MAX_TOKENS" envDefault:"2000"`
	Temperature float64              `env:"TEMPERATURE" envDefault:"0.2"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT,notEmpty"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT,notEmpty"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE,notEmpty"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT,notEmpty"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT,notEmpty"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	// Validate retrieval configuration
	if cfg.DefaultTopK < 1 || cfg.DefaultTopK > cfg.MaxTopK {
		errors = append(errors, fmt.Sprintf("DEFAULT_TOP_K must be between 1 and MAX_TOP_K(%d), got %d", cfg.MaxTopK, cfg.DefaultTopK))
	}

	// Validate completion provider selection
	switch cfg.CompletionConnectorCfg.Provider {
	case "anthropic", "gemini", "openai":
	default:
		errors = append(errors, fmt.Sprintf("COMPLETION_PROVIDER must be anthropic, gemini or openai, got %q", cfg.CompletionConnectorCfg.Provider))
	}

	if cfg.CompletionConnectorCfg.Temperature < 0 || cfg.CompletionConnectorCfg.Temperature > 1 {
		errors = append(errors, fmt.Sprintf("COMPLETION_TEMPERATURE must be between 0 and 1, got %g", cfg.CompletionConnectorCfg.Temperature))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
