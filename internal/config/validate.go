package config

import (
	"fmt"
	"net/url"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration for errors.
// Returns nil if valid, or ValidationErrors if invalid.
func Validate(cfg Config) error {
	var errs ValidationErrors

	// STAT_URL must be an absolute http(s) URL
	if u, err := url.Parse(cfg.StatURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "STAT_URL",
			Message: fmt.Sprintf("invalid url: %v", err),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "STAT_URL",
			Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
		})
	} else if u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "STAT_URL",
			Message: "missing host",
		})
	}

	errs = appendDurationErrors(errs, "POLL_INTERVAL", cfg.PollIntervalStr)
	errs = appendDurationErrors(errs, "HTTP_TIMEOUT", cfg.HTTPTimeoutStr)
	errs = appendDurationErrors(errs, "HTTP_SHUTDOWN_TIMEOUT", cfg.HTTPShutdownTimeoutStr)
	if cfg.RedisAddr != "" {
		errs = appendDurationErrors(errs, "REDIS_TTL", cfg.RedisTTLStr)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "LOG_LEVEL",
			Message: fmt.Sprintf("must be debug, info, warn or error, got %q", cfg.LogLevel),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// appendDurationErrors validates a duration field: it must parse and be
// positive.
func appendDurationErrors(errs ValidationErrors, field, value string) ValidationErrors {
	if value == "" {
		return errs
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}
	if d <= 0 {
		return append(errs, ValidationError{
			Field:   field,
			Message: "must be positive",
		})
	}
	return errs
}
