package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.yaml"

	// DefaultConfigDir is the default directory for tmplmin configuration
	// This will be ~/.config/tmplmin/ on Unix systems
	DefaultConfigDir = ".config/tmplmin"
)

// Config represents the tmplmin configuration. Command-line flags
// override these values per invocation.
type Config struct {
	// Extensions are the file extensions scanned when an input is a
	// directory
	Extensions []string `yaml:"extensions,omitempty" validate:"dive,startswith=."`

	// Excludes are glob patterns skipped during directory scans
	Excludes []string `yaml:"excludes,omitempty" validate:"dive,required"`

	// Jobs is the default worker count (0 means one per CPU)
	Jobs int `yaml:"jobs,omitempty" validate:"min=0,max=256"`

	// CachePath overrides the default cache database location
	CachePath string `yaml:"cache_path,omitempty"`

	// KeepComments keeps markup comments instead of stripping them
	KeepComments bool `yaml:"keep_comments,omitempty"`

	// Version tracks the config file version for future migrations
	Version string `yaml:"version,omitempty"`
}

var validate = validator.New()

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Extensions: []string{".html", ".tmpl", ".gohtml"},
		Excludes:   []string{},
		Jobs:       0,
		Version:    "1.0",
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetConfigDir returns the directory containing the config file
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, DefaultConfigDir), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// LoadConfig loads the configuration from the config file
// If the file doesn't exist, returns a default config
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config file doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	return config, nil
}

// ParseConfig parses YAML config bytes, fills defaults for missing
// fields, and validates the result
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults for missing fields
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".html", ".tmpl", ".gohtml"}
	}
	if config.Version == "" {
		config.Version = "1.0"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig saves the configuration to the config file
func SaveConfig(config *Config) error {
	// Ensure config directory exists
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration against its struct tags and
// surfaces violations as readable errors
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid config: %w", err)
	}

	var msgs []string
	for _, e := range validationErrs {
		field := strings.ToLower(e.Field())

		switch e.Tag() {
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		case "startswith":
			msgs = append(msgs, fmt.Sprintf("%s entries must start with %q", field, e.Param()))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s entries must not be empty", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}

	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// MatchesExtension reports whether path carries one of the configured
// template extensions
func (c *Config) MatchesExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Excluded reports whether path or its base name matches one of the
// configured exclude globs
func (c *Config) Excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range c.Excludes {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
