package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External data providers
	Binance      BinanceConfig
	Yahoo        YahooConfig
	MOEX         MOEXConfig
	AlphaVantage AlphaVantageConfig

	// Scoring
	Scoring ScoringConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// BinanceConfig holds Binance public API configuration.
type BinanceConfig struct {
	BaseURL string
}

// YahooConfig holds Yahoo Finance chart API configuration.
type YahooConfig struct {
	BaseURL string
}

// MOEXConfig holds MOEX ISS API configuration.
type MOEXConfig struct {
	BaseURL string
}

// AlphaVantageConfig holds Alpha Vantage API configuration.
// News sentiment and stock fundamentals are skipped when APIKey is empty.
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
}

// ScoringConfig holds scoring cycle configuration.
type ScoringConfig struct {
	// Interval between scheduled scoring cycles.
	CycleInterval time.Duration
	// Tracked assets in "TICKER:class:source" form, comma separated,
	// e.g. "AAPL:stock:yahoo,BTCUSDT:crypto:binance". Empty uses the
	// built-in default list.
	TrackedAssets string
	// Lookback window of daily bars requested from providers.
	LookbackBars int
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Binance: BinanceConfig{
			BaseURL: getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
		},

		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},

		MOEX: MOEXConfig{
			BaseURL: getEnv("MOEX_BASE_URL", "https://iss.moex.com"),
		},

		AlphaVantage: AlphaVantageConfig{
			APIKey:  getEnv("ALPHA_VANTAGE_API_KEY", ""),
			BaseURL: getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co"),
		},

		Scoring: ScoringConfig{
			CycleInterval: getEnvAsDuration("SCORING_CYCLE_INTERVAL", "15m"),
			TrackedAssets: getEnv("TRACKED_ASSETS", ""),
			LookbackBars:  getEnvAsInt("SCORING_LOOKBACK_BARS", 90),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scoring.CycleInterval < time.Minute {
		return fmt.Errorf("SCORING_CYCLE_INTERVAL must be at least 1m")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
