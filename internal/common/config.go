// Package common provides shared utilities for Workpal
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Workpal
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Monitor     MonitorConfig   `toml:"monitor"`
	Finance     FinanceConfig   `toml:"finance"`
	Documents   DocumentsConfig `toml:"documents"`
	Auth        AuthConfig      `toml:"auth"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	StaticDir string `toml:"static_dir"` // optional marketing page directory
}

// StorageConfig holds path configuration for the 2 storage areas.
type StorageConfig struct {
	Internal AreaConfig `toml:"internal"` // credentials + system KV (BadgerHold)
	User     AreaConfig `toml:"user"`     // named JSON collections (BadgerHold)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
	Google       GoogleConfig       `toml:"google"`
	Gemini       GeminiConfig       `toml:"gemini"`
}

// AlphaVantageConfig holds quote API configuration
type AlphaVantageConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per minute (free tier: 5)
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AlphaVantageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GoogleConfig holds Google Workspace API configuration
type GoogleConfig struct {
	ClientID string `toml:"client_id"` // OAuth client identifier shown to the UI
	Timeout  string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GoogleConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration (optional daily digest)
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// MonitorConfig holds alert evaluation loop configuration
type MonitorConfig struct {
	Interval    string `toml:"interval"`     // cycle cadence, default "5m"
	SymbolDelay string `toml:"symbol_delay"` // inter-symbol fetch delay, default "1s"
	WebhookURL  string `toml:"webhook_url"`  // optional push notification endpoint
}

// GetInterval parses and returns the cycle interval
func (c *MonitorConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// GetSymbolDelay parses and returns the inter-symbol delay
func (c *MonitorConfig) GetSymbolDelay() time.Duration {
	d, err := time.ParseDuration(c.SymbolDelay)
	if err != nil {
		return time.Second
	}
	return d
}

// FinanceConfig holds household ledger configuration
type FinanceConfig struct {
	LedgerFileName string `toml:"ledger_file_name"` // workbook searched by exact name in Drive
}

// DocumentsConfig holds Drive document tracking configuration
type DocumentsConfig struct {
	PointsFolder     string `toml:"points_folder"`
	PointsFileName   string `toml:"points_file_name"`
	PointsCell       string `toml:"points_cell"`
	RequiredPoints   int    `toml:"required_points"`
	AttendanceFolder string `toml:"attendance_folder"`
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Internal: AreaConfig{Path: "data/internal"},
			User:     AreaConfig{Path: "data/user"},
		},
		Clients: ClientsConfig{
			AlphaVantage: AlphaVantageConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Google: GoogleConfig{
				Timeout: "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Monitor: MonitorConfig{
			Interval:    "5m",
			SymbolDelay: "1s",
		},
		Finance: FinanceConfig{
			LedgerFileName: "家計簿.xlsx",
		},
		Documents: DocumentsConfig{
			PointsFolder:     "勉強会参加証明書",
			PointsFileName:   "ポイント管理エクセル.xlsx",
			PointsCell:       "C17",
			RequiredPoints:   60,
			AttendanceFolder: "勤務表",
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("WORKPAL_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("WORKPAL_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("WORKPAL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("WORKPAL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("WORKPAL_DATA_PATH"); path != "" {
		config.Storage.Internal.Path = path + "/internal"
		config.Storage.User.Path = path + "/user"
	}

	if v := os.Getenv("WORKPAL_FINANCE_API_KEY"); v != "" {
		config.Clients.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("WORKPAL_GOOGLE_CLIENT_ID"); v != "" {
		config.Clients.Google.ClientID = v
	}
	if v := os.Getenv("WORKPAL_GEMINI_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}
	if v := os.Getenv("WORKPAL_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("WORKPAL_MONITOR_WEBHOOK_URL"); v != "" {
		config.Monitor.WebhookURL = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
