package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		StatURL:         "http://localhost:11334/stat",
		PollIntervalStr: "1s",
		HTTPTimeoutStr:  "1s",
		LogLevel:        "warn",
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("valid config should not return error, got: %v", err)
	}
}

func TestValidate_BadStatURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"unsupported scheme", "ftp://host/stat", "scheme must be http or https"},
		{"no host", "http://", "missing host"},
		{"not a url", "http://%zz", "invalid url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.StatURL = tt.url

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error for stat_url=%q", tt.url)
			}
			if !strings.Contains(err.Error(), "STAT_URL") {
				t.Errorf("error should mention STAT_URL: %q", err.Error())
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_InvalidPollInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		wantErr  string
	}{
		{"non-parseable", "invalid", "invalid duration"},
		{"negative", "-1s", "must be positive"},
		{"zero", "0s", "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.PollIntervalStr = tt.interval

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error for poll_interval=%q", tt.interval)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "verbose"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for log_level=verbose")
	}
	if !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("error should mention LOG_LEVEL: %q", err.Error())
	}
}

func TestValidate_RedisTTLOnlyCheckedWhenRedisConfigured(t *testing.T) {
	cfg := validConfig()
	cfg.RedisTTLStr = "bogus"

	if err := Validate(cfg); err != nil {
		t.Errorf("redis ttl should be ignored without REDIS_ADDR, got: %v", err)
	}

	cfg.RedisAddr = "localhost:6379"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for invalid REDIS_TTL with REDIS_ADDR set")
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.StatURL = "ftp://host/stat"
	cfg.PollIntervalStr = "invalid"
	cfg.LogLevel = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected errors")
	}

	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(errs) != 3 {
		t.Errorf("expected 3 validation errors, got %d: %v", len(errs), errs)
	}
}

func TestValidationError_Format(t *testing.T) {
	err := ValidationError{Field: "STAT_URL", Message: "missing host"}
	got := err.Error()
	want := "STAT_URL: missing host"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_Format(t *testing.T) {
	// Single error
	single := ValidationErrors{{Field: "F1", Message: "M1"}}
	if single.Error() != "F1: M1" {
		t.Errorf("single error = %q, want 'F1: M1'", single.Error())
	}

	// Multiple errors
	multi := ValidationErrors{
		{Field: "F1", Message: "M1"},
		{Field: "F2", Message: "M2"},
	}
	got := multi.Error()
	if !strings.Contains(got, "2 validation errors") {
		t.Errorf("multi error should contain '2 validation errors': %q", got)
	}
	if !strings.Contains(got, "F1: M1") || !strings.Contains(got, "F2: M2") {
		t.Errorf("multi error should contain both errors: %q", got)
	}

	// Empty
	empty := ValidationErrors{}
	if empty.Error() != "" {
		t.Errorf("empty errors should return empty string, got %q", empty.Error())
	}
}
