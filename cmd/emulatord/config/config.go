// Package config provides configuration parsing for the emulator daemon.
//
// It handles both command-line flags and environment variables, with flags
// taking precedence over environment variables. The Config struct contains
// all runtime configuration for emulatord including:
//   - HTTP listen address and TLS settings
//   - Model bundle location (local directory or remote repository URL)
//   - Prediction cache backend (memory or redis) and TTL
//   - Sampling defaults and limits
//   - Logging configuration (level, format)
//
// Supported configuration sources (in order of precedence):
//  1. Command-line flags
//  2. Environment variables
//  3. Default values
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cosmohub/subgridemu/pkg/tls"
)

// Config holds all emulatord configuration.
type Config struct {
	Listen    string
	LogFormat string
	LogLevel  string

	// ModelDir is a local directory holding the trained model bundle.
	// Mutually exclusive with ModelURL; exactly one must be set.
	ModelDir string

	// ModelURL is the base URL of a remote artifact repository with a
	// manifest.json index.
	ModelURL string

	Storage       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// DefaultSamples is the posterior sample count used when a request
	// does not specify one.
	DefaultSamples int

	// MaxSamples caps the per-request posterior sample count.
	MaxSamples int

	TLS tls.Config
}

// ParseFlags parses command-line flags and environment variables into a
// Config. Environment variables are used as fallbacks when flags are not
// provided.
func ParseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ":8083"), "HTTP listen address")

	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.StringVar(&cfg.ModelDir, "model-dir", getEnv("MODEL_DIR", ""), "Local directory holding the trained model bundle")
	flag.StringVar(&cfg.ModelURL, "model-url", getEnv("MODEL_URL", ""), "Base URL of a remote artifact repository")

	flag.StringVar(&cfg.Storage, "storage", getEnv("STORAGE", "memory"), "Prediction cache backend: memory or redis")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis server address")
	flag.StringVar(&cfg.RedisPassword, "redis-password", getEnv("REDIS_PASSWORD", ""), "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database number")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", getEnvDuration("CACHE_TTL", 30*time.Minute), "Prediction cache TTL")

	flag.IntVar(&cfg.DefaultSamples, "samples", getEnvInt("SAMPLES", 100), "Default posterior sample count per prediction")
	flag.IntVar(&cfg.MaxSamples, "max-samples", getEnvInt("MAX_SAMPLES", 2000), "Maximum posterior sample count per prediction")

	flag.BoolVar(&cfg.TLS.Enabled, "tls-enabled", getEnvBool("TLS_ENABLED", false), "Enable TLS for HTTP server")
	flag.StringVar(&cfg.TLS.CertFile, "tls-cert-file", getEnv("TLS_CERT_FILE", ""), "TLS certificate file")
	flag.StringVar(&cfg.TLS.KeyFile, "tls-key-file", getEnv("TLS_KEY_FILE", ""), "TLS private key file")
	flag.StringVar(&cfg.TLS.CAFile, "tls-ca-file", getEnv("TLS_CA_FILE", ""), "TLS CA certificate file for client verification")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return cfg
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.ModelDir == "" && c.ModelURL == "" {
		return fmt.Errorf("one of --model-dir or --model-url is required")
	}
	if c.ModelDir != "" && c.ModelURL != "" {
		return fmt.Errorf("--model-dir and --model-url are mutually exclusive")
	}

	if c.Storage != "memory" && c.Storage != "redis" {
		return fmt.Errorf("invalid storage %q (must be memory or redis)", c.Storage)
	}

	if c.DefaultSamples <= 0 {
		return fmt.Errorf("samples must be > 0")
	}
	if c.MaxSamples < c.DefaultSamples {
		return fmt.Errorf("max-samples (%d) < samples (%d)", c.MaxSamples, c.DefaultSamples)
	}

	if err := c.TLS.Validate(); err != nil {
		return err
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
