package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file on top of the built-in defaults, applies
// environment overrides (a .env file next to the process is honoured) and
// validates the result. A missing config file is not an error.
func NewConfig(configPath string) (*Config, error) {
	modelConfig := models.DefaultMConfig()

	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// 2. Unmarshal data into the models struct
		if err := yaml.Unmarshal(data, &modelConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Environment overrides
	_ = godotenv.Load(".env")
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides listener and logging settings from the environment.
// PORT is the single setting the hosting platform is expected to provide.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return helpers.NewConfigurationError("invalid PORT %q", v)
		}
		c.Port = port
	}
	if v, ok := lookup("HOST"); ok && strings.TrimSpace(v) != "" {
		c.Host = strings.TrimSpace(v)
	}
	if v, ok := lookup("GRPC_PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return helpers.NewConfigurationError("invalid GRPC_PORT %q", v)
		}
		c.GrpcPort = port
	}
	if v, ok := lookup("LOG_LEVEL"); ok && strings.TrimSpace(v) != "" {
		c.LogLevel = strings.ToUpper(strings.TrimSpace(v))
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return helpers.NewConfigurationError("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return helpers.NewConfigurationError("server host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return helpers.NewConfigurationError("invalid server port number: %d (must be between 1 and 65535)", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return helpers.NewConfigurationError("invalid grpc port number: %d", c.GrpcPort)
	}
	if c.GrpcPort != 0 && c.GrpcPort == c.Port {
		return helpers.NewConfigurationError("grpc port %d collides with http port", c.GrpcPort)
	}

	// Generator
	if c.Generator.NoiseScale < 0 {
		return helpers.NewConfigurationError("noise scale cannot be negative")
	}
	if c.Generator.MaxPoints <= 0 {
		return helpers.NewConfigurationError("max points must be greater than 0")
	}

	// Render
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return helpers.NewConfigurationError("image size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.Scale <= 0 {
		return helpers.NewConfigurationError("image scale must be greater than 0")
	}
	if c.Render.HeatmapBinsX <= 0 || c.Render.HeatmapBinsY <= 0 {
		return helpers.NewConfigurationError("heatmap bins must be greater than 0")
	}

	// UI
	if strings.TrimSpace(c.UI.DefaultSymbol) == "" {
		return helpers.NewConfigurationError("default symbol cannot be empty")
	}
	if c.UI.DefaultRangeDays < 0 {
		return helpers.NewConfigurationError("default range days cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
