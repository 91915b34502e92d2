// Package config provides unified configuration for the labtrack server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (LABTRACK_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the labtrack server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics  MetricsConfig `yaml:"metrics"`
	LogLevel string        `yaml:"log_level"` // ERROR, WARN, INFO, DEBUG, or TRACE, default: "INFO"
	Debug    string        `yaml:"debug"`     // comma-separated debug categories
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 60s
	MaxBodySize  int64         `yaml:"max_body_size"` // request body limit in bytes, default: 1 MiB
}

// StorageConfig holds sample persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// AuthConfig holds token signing and user credential settings.
type AuthConfig struct {
	Secret          string       `yaml:"secret"`
	SecretFile      string       `yaml:"secret_file"` // _file variant for secret
	Algorithm       string       `yaml:"algorithm"`   // "HS256", "HS384", or "HS512", default: "HS256"
	TokenTTLMinutes int          `yaml:"token_ttl_minutes"` // default: 30
	Users           []UserConfig `yaml:"users"`
}

// UserConfig describes a single login principal.
type UserConfig struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`      // plaintext or bcrypt hash ($2 prefix)
	PasswordFile string `yaml:"password_file"` // _file variant for password
	Subject      string `yaml:"subject"`       // token subject, defaults to username
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxBodySize:  1 << 20,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:       25,
				MigrateOnStart: true,
			},
		},
		Auth: AuthConfig{
			Algorithm:       "HS256",
			TokenTTLMinutes: 30,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			LogLevel: "INFO",
		},
	}
}
