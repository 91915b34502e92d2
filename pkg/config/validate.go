package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// auth.secret is required for token signing.
	if c.Auth.Secret == "" && c.Auth.SecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.secret or auth.secret_file is required"))
	}

	// auth.algorithm must be a supported HMAC variant.
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512", "":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.algorithm must be \"HS256\", \"HS384\", or \"HS512\", got %q", c.Auth.Algorithm))
	}

	// auth.token_ttl_minutes must be positive.
	if c.Auth.TokenTTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl_minutes must be > 0, got %d", c.Auth.TokenTTLMinutes))
	}

	// Every user needs a username and some form of password.
	for i, u := range c.Auth.Users {
		if u.Username == "" {
			errs = append(errs, fmt.Errorf("auth.users[%d].username is required", i))
		}
		if u.Password == "" && u.PasswordFile == "" {
			errs = append(errs, fmt.Errorf("auth.users[%d].password or password_file is required", i))
		}
	}

	return errors.Join(errs...)
}
