package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/approuter/internal/store"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ReadHeaderTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if err := store.ValidateDriver(c.Database.Driver); err != nil {
		errs = append(errs, fmt.Errorf("database.driver: %w", err))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if !oneOf(c.Log.Level, validLogLevels) {
		errs = append(errs, fmt.Errorf("log.level must be one of %s, got %q", strings.Join(validLogLevels, "|"), c.Log.Level))
	}
	if !oneOf(c.Log.Format, validLogFormats) {
		errs = append(errs, fmt.Errorf("log.format must be one of %s, got %q", strings.Join(validLogFormats, "|"), c.Log.Format))
	}

	return errors.Join(errs...)
}

func oneOf(s string, valid []string) bool {
	for _, v := range valid {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
