package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig represents SQLite configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig represents attachment storage configuration
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
}

// ScheduleConfig represents holiday calendar configuration
type ScheduleConfig struct {
	Region string `mapstructure:"region"` // only "DE-NW" is supported
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file. A missing config file is not an error;
// the defaults describe a complete local setup.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.workshop-planner")
		v.AddConfigPath("/etc/workshop-planner")
	}

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "workshop.db")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("schedule.region", "DE-NW")
	v.SetDefault("logging.level", "info")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}
	if c.Schedule.Region != "DE-NW" {
		return fmt.Errorf("schedule.region must be 'DE-NW', got '%s'", c.Schedule.Region)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got '%s'", c.Logging.Level)
	}

	return nil
}

// ListenAddr returns the host:port address the HTTP server binds to
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
