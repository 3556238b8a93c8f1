package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Scan       ScanConfig       `mapstructure:"scan"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig holds database configuration. Driver is one of postgres,
// sqlite or memory.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GeneratorConfig configures the generative text endpoint
type GeneratorConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ClassifierConfig configures the sentiment classification endpoint
type ClassifierConfig struct {
	Provider string        `mapstructure:"provider"`
	APIToken string        `mapstructure:"api_token"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ScanConfig holds scan behaviour settings
type ScanConfig struct {
	DefaultMode      string        `mapstructure:"default_mode"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	MaxUploadBytes   int64         `mapstructure:"max_upload_bytes"`
	SeedDemoData     bool          `mapstructure:"seed_demo_data"`
	HistoryLimit     int           `mapstructure:"history_limit"`
	LeaderboardLimit int           `mapstructure:"leaderboard_limit"`
}

// RateLimitConfig holds per-client rate limit settings for scan endpoints
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

var (
	validDrivers     = map[string]bool{"postgres": true, "sqlite": true, "memory": true}
	validGenerators  = map[string]bool{"gemini": true, "genai": true, "openai": true}
	validClassifiers = map[string]bool{"huggingface": true, "vader": true}
	validModes       = map[string]bool{"analysis": true, "sentiment": true}
)

// Load reads configuration from an optional .env file, an optional config
// file and ECOSCAN_ prefixed environment variables, in increasing priority.
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ECOSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyProviderDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ecoscan")
	v.SetDefault("database.password", "ecoscan")
	v.SetDefault("database.dbname", "ecoscan")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "ecoscan.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("generator.provider", "gemini")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.model", "")
	v.SetDefault("generator.base_url", "")
	v.SetDefault("generator.timeout", 60*time.Second)

	v.SetDefault("classifier.provider", "huggingface")
	v.SetDefault("classifier.api_token", "")
	v.SetDefault("classifier.model", "distilbert-base-uncased-finetuned-sst-2-english")
	v.SetDefault("classifier.base_url", "")
	v.SetDefault("classifier.timeout", 30*time.Second)

	v.SetDefault("scan.default_mode", "analysis")
	v.SetDefault("scan.cache_ttl", 6*time.Hour)
	v.SetDefault("scan.max_upload_bytes", 5<<20)
	v.SetDefault("scan.seed_demo_data", true)
	v.SetDefault("scan.history_limit", 10)
	v.SetDefault("scan.leaderboard_limit", 5)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 30)
	v.SetDefault("ratelimit.burst", 5)
}

var defaultGeneratorModels = map[string]string{
	"gemini": "gemini-pro",
	"genai":  "gemini-2.0-flash",
	"openai": "gpt-4o-mini",
}

// applyProviderDefaults picks the provider's default model and falls back to
// its conventional API key variable when nothing was configured explicitly.
func applyProviderDefaults(cfg *Config) {
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = defaultGeneratorModels[cfg.Generator.Provider]
	}
	if cfg.Generator.APIKey == "" {
		switch cfg.Generator.Provider {
		case "gemini", "genai":
			cfg.Generator.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			cfg.Generator.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if cfg.Classifier.APIToken == "" {
		cfg.Classifier.APIToken = os.Getenv("HF_API_TOKEN")
	}
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("invalid database driver %q", c.Database.Driver)
	}
	if !validGenerators[c.Generator.Provider] {
		return fmt.Errorf("invalid generator provider %q", c.Generator.Provider)
	}
	if !validClassifiers[c.Classifier.Provider] {
		return fmt.Errorf("invalid classifier provider %q", c.Classifier.Provider)
	}
	if !validModes[c.Scan.DefaultMode] {
		return fmt.Errorf("invalid default scan mode %q", c.Scan.DefaultMode)
	}
	if c.Scan.MaxUploadBytes <= 0 {
		return fmt.Errorf("scan.max_upload_bytes must be positive")
	}
	return nil
}
