package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported marketplace providers
const (
	ProviderProductHunt = "producthunt"
	ProviderG2          = "g2"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Marketplace MarketplaceConfig
	ProductHunt ProductHuntConfig
	G2          G2Config
	Fetch       FetchConfig
	Enrichment  EnrichmentConfig
	Log         LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	StaticDir      string   `mapstructure:"static_dir"`
}

// MarketplaceConfig selects which upstream adapter serves candidates
type MarketplaceConfig struct {
	Provider string `mapstructure:"provider"` // "producthunt" or "g2"
}

// ProductHuntConfig holds Product Hunt GraphQL API configuration
type ProductHuntConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

// G2Config holds G2 REST API configuration
type G2Config struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

// FetchConfig bounds upstream pagination
type FetchConfig struct {
	MaxRecords  int           `mapstructure:"max_records"`
	MaxRequests int           `mapstructure:"max_requests"`
	PageSize    int           `mapstructure:"page_size"`
	PageDelay   time.Duration `mapstructure:"page_delay"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// EnrichmentConfig controls website highlight lookups for top results
type EnrichmentConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files.
// A .env file in the working directory, if present, is applied first without
// overriding variables that are already set.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/toolfinder/")

	// Environment variable settings
	v.SetEnvPrefix("TOOLFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment. A missing file is
// not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.static_dir", "./web")

	// Marketplace defaults
	v.SetDefault("marketplace.provider", ProviderProductHunt)
	v.SetDefault("producthunt.token", "")
	v.SetDefault("producthunt.base_url", "https://api.producthunt.com/v2/api/graphql")
	v.SetDefault("g2.token", "")
	v.SetDefault("g2.base_url", "https://data.g2.com/api/v1")

	// Fetch defaults
	v.SetDefault("fetch.max_records", 100)
	v.SetDefault("fetch.max_requests", 5)
	v.SetDefault("fetch.page_size", 20)
	v.SetDefault("fetch.page_delay", "1s")
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.timeout", "30s")

	// Enrichment defaults
	v.SetDefault("enrichment.enabled", true)
	v.SetDefault("enrichment.timeout", "5s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Marketplace.Provider {
	case ProviderProductHunt:
		if config.ProductHunt.Token == "" {
			return fmt.Errorf("Product Hunt token is required (set TOOLFINDER_PRODUCTHUNT_TOKEN)")
		}
	case ProviderG2:
		if config.G2.Token == "" {
			return fmt.Errorf("G2 token is required (set TOOLFINDER_G2_TOKEN)")
		}
	default:
		return fmt.Errorf("marketplace provider must be '%s' or '%s', got: %s",
			ProviderProductHunt, ProviderG2, config.Marketplace.Provider)
	}

	if config.Fetch.MaxRecords <= 0 {
		return fmt.Errorf("fetch.max_records must be positive, got: %d", config.Fetch.MaxRecords)
	}
	if config.Fetch.MaxRequests <= 0 {
		return fmt.Errorf("fetch.max_requests must be positive, got: %d", config.Fetch.MaxRequests)
	}
	if config.Fetch.PageSize <= 0 {
		return fmt.Errorf("fetch.page_size must be positive, got: %d", config.Fetch.PageSize)
	}
	if config.Fetch.PageDelay < 0 {
		return fmt.Errorf("fetch.page_delay cannot be negative, got: %s", config.Fetch.PageDelay)
	}

	return nil
}
