package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/anstrom/scangate/internal/errors"
	"github.com/anstrom/scangate/internal/logging"
)

const (
	configDirPerm  = 0750
	configFilePerm = 0600

	// Slack between the scan budget and the HTTP write deadline, so a scan
	// that hits its timeout can still answer.
	writeTimeoutMargin = 30 * time.Second
)

// Config represents the complete service configuration
type Config struct {
	// Scanning configuration
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`

	// API configuration
	API APIConfig `yaml:"api" json:"api"`

	// Logging configuration
	Logging logging.Config `yaml:"logging" json:"logging"`
}

// ScanningConfig holds scanning-related settings
type ScanningConfig struct {
	// Path to the nmap binary; empty means nmap on PATH
	NmapPath string `yaml:"nmap_path" json:"nmap_path"`

	// Wall-clock budget per scan
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Maximum simultaneously running nmap processes
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent"`
}

// APIConfig holds API server settings
type APIConfig struct {
	// Enable API server
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Listen address
	Host string `yaml:"host" json:"host"`

	// Listen port
	Port int `yaml:"port" json:"port"`

	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`

	// Maximum request body size in bytes
	MaxRequestSize int64 `yaml:"max_request_size" json:"max_request_size"`

	// CORS settings
	CORS CORSConfig `yaml:"cors" json:"cors"`

	// Rate limiting
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Authentication
	Auth AuthConfig `yaml:"auth" json:"auth"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Limits applied to every route
	Global []LimitRule `yaml:"global" json:"global"`

	// Additional limits for scan and download routes
	Scan []LimitRule `yaml:"scan" json:"scan"`
}

// LimitRule allows Requests per Window for one client.
type LimitRule struct {
	Requests int           `yaml:"requests" json:"requests"`
	Window   time.Duration `yaml:"window" json:"window"`
}

// String renders the rule the way it appears in metrics, e.g. "5/1m0s".
func (r LimitRule) String() string {
	return fmt.Sprintf("%d/%s", r.Requests, r.Window)
}

// AuthConfig holds API key settings
type AuthConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// bcrypt hashes of accepted API keys
	KeyHashes []string `yaml:"key_hashes" json:"key_hashes"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Scanning: ScanningConfig{
			NmapPath:      "",
			Timeout:       300 * time.Second,
			MaxConcurrent: 4,
		},
		API: APIConfig{
			Enabled:        true,
			Host:           "127.0.0.1",
			Port:           5000,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   300*time.Second + writeTimeoutMargin,
			IdleTimeout:    60 * time.Second,
			MaxRequestSize: 64 * 1024,
			CORS: CORSConfig{
				Enabled:        false,
				AllowedOrigins: []string{},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-API-Key"},
			},
			RateLimit: RateLimitConfig{
				Enabled: true,
				Global: []LimitRule{
					{Requests: 50, Window: time.Hour},
					{Requests: 1, Window: time.Second},
				},
				Scan: []LimitRule{
					{Requests: 5, Window: time.Minute},
				},
			},
			Auth: AuthConfig{
				Enabled:   false,
				KeyHashes: []string{},
			},
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	// Start with defaults
	config := Default()

	// Return defaults if no config file
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to read config file", err)
	}

	// YAML is a superset of JSON, so one decoder covers both extensions.
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			fmt.Sprintf("failed to parse config %s", filepath.Base(path)), err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Scanning.Timeout <= 0 {
		return errors.ErrConfigInvalid("scanning.timeout", c.Scanning.Timeout)
	}
	if c.Scanning.MaxConcurrent <= 0 {
		return errors.ErrConfigInvalid("scanning.max_concurrent", c.Scanning.MaxConcurrent)
	}

	if c.API.Enabled {
		if c.API.Port <= 0 || c.API.Port > 65535 {
			return errors.ErrConfigInvalid("api.port", c.API.Port)
		}
		if c.API.Host == "" {
			return errors.ErrConfigMissing("api.host")
		}
		if c.API.WriteTimeout <= c.Scanning.Timeout {
			return errors.NewConfigFieldError(errors.CodeConfiguration,
				fmt.Sprintf("write timeout must exceed scan timeout %s", c.Scanning.Timeout),
				"api.write_timeout", c.API.WriteTimeout)
		}
		if err := validateRules("api.rate_limit.global", c.API.RateLimit.Global); err != nil {
			return err
		}
		if err := validateRules("api.rate_limit.scan", c.API.RateLimit.Scan); err != nil {
			return err
		}
		if c.API.Auth.Enabled && len(c.API.Auth.KeyHashes) == 0 {
			return errors.NewConfigFieldError(errors.CodeConfiguration,
				"at least one key hash is required when auth is enabled", "api.auth.key_hashes", nil)
		}
	}

	validLogLevels := map[logging.LogLevel]bool{
		logging.LevelDebug: true,
		logging.LevelInfo:  true,
		logging.LevelWarn:  true,
		logging.LevelError: true,
	}
	if !validLogLevels[c.Logging.Level] {
		return errors.ErrConfigInvalid("logging.level", c.Logging.Level)
	}

	if c.Logging.Format != logging.FormatText && c.Logging.Format != logging.FormatJSON {
		return errors.ErrConfigInvalid("logging.format", c.Logging.Format)
	}

	return nil
}

func validateRules(field string, rules []LimitRule) error {
	for i, rule := range rules {
		if rule.Requests <= 0 || rule.Window <= 0 {
			return errors.ErrConfigInvalid(fmt.Sprintf("%s[%d]", field, i), rule.String())
		}
	}
	return nil
}

// GetAPIAddress returns the full API address
func (c *Config) GetAPIAddress() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// IsAPIEnabled returns true if API server is enabled
func (c *Config) IsAPIEnabled() bool {
	return c.API.Enabled
}
