package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harrison/caserun/internal/executor"
	"github.com/harrison/caserun/internal/logger"
	"gopkg.in/yaml.v3"
)

// Config represents caserun configuration options
type Config struct {
	// Mode is the default comparison mode (exact or fuzzy)
	Mode string `yaml:"mode"`

	// Timeout bounds each case's command (0 = wait forever)
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables the per-run log file when non-empty
	LogDir string `yaml:"log_dir"`

	// Color is auto, always or never
	Color string `yaml:"color"`

	// ShowDiff appends a line-level diff to mismatch reports
	ShowDiff bool `yaml:"show_diff"`

	// StripANSI removes ANSI escape sequences before fuzzy comparison
	StripANSI bool `yaml:"strip_ansi"`

	// SpreadSingleElementArgs spreads one-element args lists instead of
	// appending the list as a single argument
	SpreadSingleElementArgs bool `yaml:"spread_single_element_args"`

	// Strict makes a missing case file argument an error
	Strict bool `yaml:"strict"`

	// ReportPath writes a JSON run report when non-empty
	ReportPath string `yaml:"report_path"`

	// BaseDir is where commands run and relative answer files resolve
	// (empty = current directory)
	BaseDir string `yaml:"base_dir"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Mode:     "fuzzy",
		Timeout:  0,
		LogLevel: "info",
		LogDir:   "",
		Color:    "auto",
	}
}

// yamlConfig mirrors Config with the timeout as a duration string.
type yamlConfig struct {
	Mode                    string `yaml:"mode"`
	Timeout                 string `yaml:"timeout"`
	LogLevel                string `yaml:"log_level"`
	LogDir                  string `yaml:"log_dir"`
	Color                   string `yaml:"color"`
	ShowDiff                bool   `yaml:"show_diff"`
	StripANSI               bool   `yaml:"strip_ansi"`
	SpreadSingleElementArgs bool   `yaml:"spread_single_element_args"`
	Strict                  bool   `yaml:"strict"`
	ReportPath              string `yaml:"report_path"`
	BaseDir                 string `yaml:"base_dir"`
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Mode != "" {
		cfg.Mode = yamlCfg.Mode
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.Color != "" {
		cfg.Color = yamlCfg.Color
	}
	if yamlCfg.ReportPath != "" {
		cfg.ReportPath = yamlCfg.ReportPath
	}
	if yamlCfg.BaseDir != "" {
		cfg.BaseDir = yamlCfg.BaseDir
	}
	cfg.ShowDiff = yamlCfg.ShowDiff
	cfg.StripANSI = yamlCfg.StripANSI
	cfg.SpreadSingleElementArgs = yamlCfg.SpreadSingleElementArgs
	cfg.Strict = yamlCfg.Strict

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .caserun/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".caserun", "config.yaml"))
}

// Flags carries CLI overrides. Nil fields leave the configuration untouched.
type Flags struct {
	Mode       *string
	Timeout    *time.Duration
	LogLevel   *string
	LogDir     *string
	Color      *string
	ShowDiff   *bool
	Strict     *bool
	ReportPath *string
	SpreadArgs *bool
	BaseDir    *string
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(f Flags) {
	if f.Mode != nil {
		c.Mode = *f.Mode
	}
	if f.Timeout != nil {
		c.Timeout = *f.Timeout
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.Color != nil {
		c.Color = *f.Color
	}
	if f.ShowDiff != nil {
		c.ShowDiff = *f.ShowDiff
	}
	if f.Strict != nil {
		c.Strict = *f.Strict
	}
	if f.ReportPath != nil {
		c.ReportPath = *f.ReportPath
	}
	if f.SpreadArgs != nil {
		c.SpreadSingleElementArgs = *f.SpreadArgs
	}
	if f.BaseDir != nil {
		c.BaseDir = *f.BaseDir
	}
}

// Validate checks that the configuration values are valid
func (c *Config) Validate() error {
	if _, err := executor.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("mode must be exact or fuzzy, got %q", c.Mode)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level must be one of trace, debug, info, warn, error, got %q", c.LogLevel)
	}

	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}

	return nil
}
