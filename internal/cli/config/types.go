// Package config provides configuration management for the approuter CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Shell    ShellConfig    `koanf:"shell"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig selects the app store.
type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// ShellConfig controls the app shell bundle.
type ShellConfig struct {
	EditorTitle string `koanf:"editor_title"`
	// Dir serves the bundle from disk instead of the embedded build.
	Dir   string `koanf:"dir"`
	Watch bool   `koanf:"watch"`
}

// Default configuration values.
const (
	DefaultAddr              = ":8080"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultDriver            = "sqlite"
	DefaultDSN               = "approuter.db"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultEditorTitle       = "App Studio"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "APPROUTER_"
