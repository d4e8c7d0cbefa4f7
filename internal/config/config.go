package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server" json:"server"`
	Log      LogConfig      `mapstructure:"log" json:"log"`
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Cache    CacheConfig    `mapstructure:"cache" json:"cache"`
	Retry    RetryConfig    `mapstructure:"retry" json:"retry"`
	Client   ClientConfig   `mapstructure:"client" json:"client"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port               int      `mapstructure:"port" json:"port"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" json:"cors_allowed_origins"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn" json:"dsn"`
}

// CacheConfig holds response cache settings
type CacheConfig struct {
	DefaultTTL      time.Duration `mapstructure:"default_ttl" json:"default_ttl"`
	MaxSize         int           `mapstructure:"max_size" json:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" json:"cleanup_interval"`
}

// RetryConfig holds retry/backoff settings for outbound API calls
type RetryConfig struct {
	MaxRetries        int           `mapstructure:"max_retries" json:"max_retries"`
	BaseDelay         time.Duration `mapstructure:"base_delay" json:"base_delay"`
	MaxDelay          time.Duration `mapstructure:"max_delay" json:"max_delay"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier" json:"backoff_multiplier"`
}

// ClientConfig holds outbound HTTP client settings
type ClientConfig struct {
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// Load reads configuration from the given YAML file (optional) with
// environment variable overrides and built-in defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults and environment variables
		} else if configPath == "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override with environment variables for sensitive data
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=widgets port=5432 sslmode=disable")

	v.SetDefault("cache.default_ttl", 5*time.Minute)
	v.SetDefault("cache.max_size", 50)
	v.SetDefault("cache.cleanup_interval", 2*time.Minute)

	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", 1*time.Second)
	v.SetDefault("retry.max_delay", 30*time.Second)
	v.SetDefault("retry.backoff_multiplier", 2.0)

	v.SetDefault("client.timeout", 15*time.Second)
}
