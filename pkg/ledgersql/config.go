package ledgersql

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a ledgersql session.
type Config struct {
	// Database contains the connection configuration.
	Database DatabaseConfig `yaml:"database" json:"database"`

	// TimestampFormat is the fixed-width layout used for timestamp columns,
	// in Go reference-time form. There is rarely a reason to change it.
	TimestampFormat string `yaml:"timestamp_format,omitempty" json:"timestamp_format,omitempty"`

	// ProgressPerSec bounds how often the progress callback fires during
	// bulk loads and saves. Zero means unthrottled.
	ProgressPerSec float64 `yaml:"progress_per_sec,omitempty" json:"progress_per_sec,omitempty"`
}

// DatabaseConfig contains configuration for the persistent database.
type DatabaseConfig struct {
	// Type specifies the database type. Currently supports "mysql" or "sqlite".
	Type string `yaml:"type" json:"type"`

	// Path is the database file path for sqlite. Use ":memory:" for an
	// in-memory database.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Host is the database host address (mysql).
	Host string `yaml:"host,omitempty" json:"host,omitempty"`

	// Port is the database port number (mysql).
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	// Database is the database name (mysql).
	Database string `yaml:"database,omitempty" json:"database,omitempty"`

	// Username is the database username (mysql).
	Username string `yaml:"username,omitempty" json:"username,omitempty"`

	// Password is the database password (mysql).
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int `yaml:"max_open_conns,omitempty" json:"max_open_conns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int `yaml:"max_idle_conns,omitempty" json:"max_idle_conns,omitempty"`

	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty" json:"conn_max_lifetime,omitempty"`

	// ConnectionTimeout is the timeout for establishing database connections.
	ConnectionTimeout time.Duration `yaml:"connection_timeout,omitempty" json:"connection_timeout,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type:              "sqlite",
			Path:              ":memory:",
			Host:              "localhost",
			Port:              3306,
			MaxOpenConns:      25,
			MaxIdleConns:      5,
			ConnMaxLifetime:   5 * time.Minute,
			ConnectionTimeout: 10 * time.Second,
		},
		ProgressPerSec: 10,
	}
}

// LoadConfigFile reads a YAML configuration file over the defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for missing or inconsistent settings.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for mysql")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required for mysql")
		}
		if c.Database.Username == "" {
			return fmt.Errorf("database.username is required for mysql")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.ProgressPerSec < 0 {
		return fmt.Errorf("progress_per_sec cannot be negative")
	}
	return nil
}
