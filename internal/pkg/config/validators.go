// internal/pkg/config/validators.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// check inspects one aspect of a loaded configuration
type check func(c *Config) error

// Validate runs the basic checks, plus the production checks when running
// in production.
func (c *Config) Validate() error {
	checks := []check{checkRequired, checkLimits}
	if c.IsProduction() {
		checks = append(checks, checkProduction, checkSecurity)
	}
	for _, fn := range checks {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// missing reports empty values and the MISSING_ placeholders the secrets
// loader leaves behind.
func missing(v string) bool {
	return v == "" || strings.HasPrefix(v, "MISSING_")
}

func checkRequired(c *Config) error {
	required := []struct {
		name  string
		value string
	}{
		{"app.name", c.App.Name},
		{"database.host", c.Database.Host},
		{"database.port", c.Database.Port},
		{"database.user", c.Database.User},
		{"database.name", c.Database.Name},
		{"redis.host", c.Redis.Host},
		{"redis.port", c.Redis.Port},
		{"server.port", c.Server.Port},
	}
	for _, r := range required {
		if missing(r.value) {
			return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, r.name)
		}
	}
	if c.Kafka.Enabled() && c.Kafka.SalesTopic == "" {
		return fmt.Errorf("%w: kafka sales topic", ErrMissingRequiredConfig)
	}
	return nil
}

func checkLimits(c *Config) error {
	switch {
	case c.Database.MaxConnections < c.Database.MinConnections:
		return fmt.Errorf("database max_connections must be >= min_connections")
	case c.Database.LockTimeout < 0:
		return fmt.Errorf("database lock_timeout cannot be negative")
	case c.Redis.PoolSize <= 0:
		return fmt.Errorf("redis pool_size must be positive")
	case c.Security.RateLimitRequests <= 0:
		return fmt.Errorf("rate_limit_requests must be positive")
	case c.Security.SessionTTL <= 0:
		return fmt.Errorf("session_ttl must be positive")
	case c.App.LogSample < 0 || c.App.LogSample > 1:
		return fmt.Errorf("log sample rate must be between 0 and 1")
	case c.Import.MaxRows < 0:
		return fmt.Errorf("import max_rows cannot be negative")
	}
	return nil
}

func checkProduction(c *Config) error {
	switch {
	case missing(c.Database.Password):
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	case c.Database.SSLMode == "disable":
		return fmt.Errorf("database SSL must be enabled in production")
	case !c.Security.SecureHeaders:
		return fmt.Errorf("secure headers must be enabled in production")
	case len(c.Security.AllowedOrigins) == 0:
		return fmt.Errorf("allowed origins must be configured in production")
	case c.AWS.S3Bucket == "":
		return fmt.Errorf("%w: S3 bucket for product images", ErrMissingRequiredConfig)
	case len(c.Mail.LowStockTo) > 0 && c.Mail.SMTPHost == "":
		return fmt.Errorf("%w: smtp host for low stock alerts", ErrMissingRequiredConfig)
	}
	return nil
}

func checkSecurity(c *Config) error {
	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 15 {
		return fmt.Errorf("bcrypt cost must be between 10 and 15")
	}
	if c.Security.SessionTTL > 7*24*time.Hour {
		return fmt.Errorf("session_ttl must not exceed 7 days")
	}
	for _, origin := range c.Security.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}
	return nil
}
