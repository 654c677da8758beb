package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/fpm-logcheck/pkg/types"
)

// Config holds all configuration for fpm-logcheck
type Config struct {
	// Reader settings
	Timeout time.Duration `yaml:"timeout" env:"FPM_LOGCHECK_TIMEOUT"`

	// Expectation defaults
	Limit            int         `yaml:"limit" env:"FPM_LOGCHECK_LIMIT"`
	Level            types.Level `yaml:"level" env:"FPM_LOGCHECK_LEVEL"`
	Pool             string      `yaml:"pool" env:"FPM_LOGCHECK_POOL"`
	PipeClosedSuffix bool        `yaml:"pipe_closed_suffix"`
	IgnoreFor        string      `yaml:"ignore_for"`

	// Diagnostics
	Trace  bool   `yaml:"trace" env:"FPM_LOGCHECK_TRACE"`
	Output string `yaml:"output"`
}

const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout:   3 * time.Second,
		Limit:     1024,
		Level:     types.DefaultLevel,
		Pool:      "unconfined",
		IgnoreFor: string(types.Debug),
		Output:    OutputStdout,
	}
}

// Load loads configuration from the default file location and environment
func Load() (*Config, error) {
	return LoadFile(getConfigPath())
}

// LoadFile loads configuration from path, if it exists, and environment
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check for explicit config path
	if path := os.Getenv("FPM_LOGCHECK_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fpm-logcheck", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "fpm-logcheck", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file, or a TOML file when
// path ends in .toml
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (flag, env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return loadFromTOML(cfg, data)
	}
	return yaml.Unmarshal(data, cfg)
}

// loadFromTOML applies the keys present in a TOML document. Durations are
// written as strings such as "500ms".
func loadFromTOML(cfg *Config, data []byte) error {
	var raw struct {
		Timeout          *string `toml:"timeout"`
		Limit            *int    `toml:"limit"`
		Level            *string `toml:"level"`
		Pool             *string `toml:"pool"`
		PipeClosedSuffix *bool   `toml:"pipe_closed_suffix"`
		IgnoreFor        *string `toml:"ignore_for"`
		Trace            *bool   `toml:"trace"`
		Output           *string `toml:"output"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if raw.Timeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*raw.Timeout))
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if raw.Limit != nil {
		cfg.Limit = *raw.Limit
	}
	if raw.Level != nil {
		cfg.Level = types.Level(*raw.Level)
	}
	if raw.Pool != nil {
		cfg.Pool = strings.TrimSpace(*raw.Pool)
	}
	if raw.PipeClosedSuffix != nil {
		cfg.PipeClosedSuffix = *raw.PipeClosedSuffix
	}
	if raw.IgnoreFor != nil {
		cfg.IgnoreFor = *raw.IgnoreFor
	}
	if raw.Trace != nil {
		cfg.Trace = *raw.Trace
	}
	if raw.Output != nil {
		cfg.Output = strings.TrimSpace(*raw.Output)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if timeout := os.Getenv("FPM_LOGCHECK_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid FPM_LOGCHECK_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	if limit := os.Getenv("FPM_LOGCHECK_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return fmt.Errorf("invalid FPM_LOGCHECK_LIMIT: %w", err)
		}
		cfg.Limit = n
	}

	if level := os.Getenv("FPM_LOGCHECK_LEVEL"); level != "" {
		l, err := types.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid FPM_LOGCHECK_LEVEL: %w", err)
		}
		cfg.Level = l
	}

	if pool := os.Getenv("FPM_LOGCHECK_POOL"); pool != "" {
		cfg.Pool = pool
	}

	if trace := os.Getenv("FPM_LOGCHECK_TRACE"); trace != "" {
		switch trace {
		case "true", "1", "yes":
			cfg.Trace = true
		case "false", "0", "no":
			cfg.Trace = false
		default:
			return fmt.Errorf("invalid FPM_LOGCHECK_TRACE value: %q (use true/false)", trace)
		}
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if cfg.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}

	level, err := types.ParseLevel(string(cfg.Level.OrDefault()))
	if err != nil {
		return err
	}
	cfg.Level = level

	if cfg.Pool == "" {
		return fmt.Errorf("pool must not be empty")
	}

	switch cfg.Output {
	case "", OutputStdout, OutputStderr:
	default:
		return fmt.Errorf("output must be %q or %q", OutputStdout, OutputStderr)
	}

	return nil
}
