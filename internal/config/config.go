package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/livefir/gridkit/webdriver"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.yaml"

	// DefaultConfigDir is the default directory for gridkit configuration,
	// ~/.config/gridkit on Unix systems
	DefaultConfigDir = ".config/gridkit"

	// DotEnvFile is loaded from the working directory when present
	DotEnvFile = ".env"
)

// Environment variables that override the file
const (
	EnvUsername     = "LT_USERNAME"
	EnvAccessKey    = "LT_ACCESS_KEY"
	EnvGridURL      = "LT_GRID_URL"
	EnvCapabilities = "GRIDKIT_CAPABILITIES"
	EnvScriptsDir   = "GRIDKIT_SCRIPTS_DIR"
	EnvLogLevel     = "GRIDKIT_LOG_LEVEL"
)

// Config represents the gridkit configuration
type Config struct {
	// Grid holds the hub address and credentials
	Grid webdriver.Config `yaml:"grid" validate:"-"`

	// Capabilities is the base key=value list sessions start from;
	// $CAPS is merged on top at use time
	Capabilities string `yaml:"capabilities,omitempty"`

	// ScriptsDir holds the artifact verification scripts
	ScriptsDir string `yaml:"scripts_dir,omitempty"`

	// ScreenshotsDir is where saved screenshots go
	ScreenshotsDir string `yaml:"screenshots_dir,omitempty"`

	LogLevel string `yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Grid: webdriver.Config{
			GridURL: "hub.lambdatest.com/wd/hub",
			Scheme:  "https",
		},
		ScriptsDir:     "scripts",
		ScreenshotsDir: "test-artifacts/screenshots",
		LogLevel:       "info",
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// GetConfigDir returns the directory containing the config file
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir), nil
}

// Load builds the configuration from defaults, the YAML file at path (the
// default location when path is empty), a .env file in the working
// directory and finally the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := os.Stat(DotEnvFile); err == nil {
		// Load never overrides variables that are already set
		if err := godotenv.Load(DotEnvFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
		}
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Grid.Username, EnvUsername)
	set(&c.Grid.AccessKey, EnvAccessKey)
	set(&c.Grid.GridURL, EnvGridURL)
	set(&c.Capabilities, EnvCapabilities)
	set(&c.ScriptsDir, EnvScriptsDir)
	set(&c.LogLevel, EnvLogLevel)
}

// Save writes the configuration to path, creating its directory
func Save(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file holds the access key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks the settings every command relies on
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidateGrid additionally requires complete grid credentials
func (c *Config) ValidateGrid() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.Grid.Validate()
}

// ValidateScripts requires ScriptsDir to be an existing directory
func (c *Config) ValidateScripts() error {
	if err := validate.Var(c.ScriptsDir, "required,dir"); err != nil {
		return fmt.Errorf("invalid scripts directory %q: %w", c.ScriptsDir, err)
	}
	return nil
}

// SlogLevel maps LogLevel onto slog, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
