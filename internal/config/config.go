package config

import (
	"encoding/json"
	"log"
	"net/url"
	"os"
	"time"
)

// Config holds all configuration for the monitor.
// Values are loaded from environment variables; see printUsage() for the full list.
type Config struct {
	StatURL string `json:"stat_url"`

	PollInterval    time.Duration `json:"-"`
	PollIntervalStr string        `json:"poll_interval"`

	HTTPTimeout    time.Duration `json:"-"`
	HTTPTimeoutStr string        `json:"http_timeout"`

	// WindowSize bounds every series window and therefore the chart width.
	WindowSize  int `json:"window_size"`
	ChartHeight int `json:"chart_height"`

	// MaxConsecutiveFailures: polling aborts once this many cycles in a
	// row have failed.
	MaxConsecutiveFailures int `json:"max_consecutive_failures"`

	LogLevel string `json:"log_level"`

	HTTPAddr               string        `json:"http_addr"`
	HTTPShutdownTimeout    time.Duration `json:"-"`
	HTTPShutdownTimeoutStr string        `json:"http_shutdown_timeout"`

	MetricsEnabled bool   `json:"metrics_enabled"`
	MetricsPath    string `json:"metrics_path"`
	MetricsPort    string `json:"metrics_port"`

	RedisAddr   string        `json:"redis_addr,omitempty"`
	RedisTTL    time.Duration `json:"-"`
	RedisTTLStr string        `json:"redis_ttl"`

	// MetricsFile: optional YAML file overriding the built-in tracked
	// metric set.
	MetricsFile string `json:"metrics_file,omitempty"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	cfg := Config{
		StatURL:                os.Getenv("STAT_URL"),
		PollIntervalStr:        os.Getenv("POLL_INTERVAL"),
		HTTPTimeoutStr:         os.Getenv("HTTP_TIMEOUT"),
		LogLevel:               os.Getenv("LOG_LEVEL"),
		HTTPAddr:               os.Getenv("HTTP_ADDR"),
		HTTPShutdownTimeoutStr: os.Getenv("HTTP_SHUTDOWN_TIMEOUT"),
		MetricsEnabled:         os.Getenv("METRICS_ENABLED") == "true",
		MetricsPath:            os.Getenv("METRICS_PATH"),
		MetricsPort:            os.Getenv("METRICS_PORT"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisTTLStr:            os.Getenv("REDIS_TTL"),
		MetricsFile:            os.Getenv("METRICS_FILE"),
	}

	if sizeStr := os.Getenv("WINDOW_SIZE"); sizeStr != "" {
		if n, err := parseInt(sizeStr); err == nil && n > 0 {
			cfg.WindowSize = n
		} else {
			log.Printf("config: invalid WINDOW_SIZE %q (must be a positive integer), using default 80", sizeStr)
		}
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = 80
	}

	if heightStr := os.Getenv("CHART_HEIGHT"); heightStr != "" {
		if n, err := parseInt(heightStr); err == nil && n > 0 {
			cfg.ChartHeight = n
		} else {
			log.Printf("config: invalid CHART_HEIGHT %q (must be a positive integer), using default 6", heightStr)
		}
	}
	if cfg.ChartHeight == 0 {
		cfg.ChartHeight = 6
	}

	if failuresStr := os.Getenv("MAX_CONSECUTIVE_FAILURES"); failuresStr != "" {
		if n, err := parseInt(failuresStr); err == nil && n > 0 {
			cfg.MaxConsecutiveFailures = n
		} else {
			log.Printf("config: invalid MAX_CONSECUTIVE_FAILURES %q (must be a positive integer), using default 5", failuresStr)
		}
	}
	if cfg.MaxConsecutiveFailures == 0 {
		cfg.MaxConsecutiveFailures = 5
	}

	if cfg.StatURL == "" {
		cfg.StatURL = "http://localhost:11334/stat"
	}
	if cfg.PollIntervalStr == "" {
		cfg.PollIntervalStr = "1s"
	}
	if cfg.HTTPTimeoutStr == "" {
		cfg.HTTPTimeoutStr = "1s"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.HTTPShutdownTimeoutStr == "" {
		cfg.HTTPShutdownTimeoutStr = "10s"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.MetricsPort == "" {
		cfg.MetricsPort = "9090"
	}
	if cfg.RedisTTLStr == "" {
		cfg.RedisTTLStr = "10s"
	}

	// Parse durations; validation is handled separately by Validate().
	if d, err := time.ParseDuration(cfg.PollIntervalStr); err == nil {
		cfg.PollInterval = d
	}
	if d, err := time.ParseDuration(cfg.HTTPTimeoutStr); err == nil {
		cfg.HTTPTimeout = d
	}
	if d, err := time.ParseDuration(cfg.HTTPShutdownTimeoutStr); err == nil {
		cfg.HTTPShutdownTimeout = d
	}
	if d, err := time.ParseDuration(cfg.RedisTTLStr); err == nil {
		cfg.RedisTTL = d
	}

	return cfg
}

// parseInt parses a string as an integer.
func parseInt(s string) (int, error) {
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, os.ErrInvalid
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// MaskedJSON returns the configuration as JSON with secrets masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := struct {
		StatURL                string `json:"stat_url"`
		PollInterval           string `json:"poll_interval"`
		HTTPTimeout            string `json:"http_timeout"`
		WindowSize             int    `json:"window_size"`
		ChartHeight            int    `json:"chart_height"`
		MaxConsecutiveFailures int    `json:"max_consecutive_failures"`
		LogLevel               string `json:"log_level"`
		HTTPAddr               string `json:"http_addr"`
		HTTPShutdownTimeout    string `json:"http_shutdown_timeout"`
		MetricsEnabled         bool   `json:"metrics_enabled"`
		MetricsPath            string `json:"metrics_path"`
		MetricsPort            string `json:"metrics_port"`
		RedisAddr              string `json:"redis_addr,omitempty"`
		RedisTTL               string `json:"redis_ttl"`
		MetricsFile            string `json:"metrics_file,omitempty"`
	}{
		StatURL:                maskURL(c.StatURL),
		PollInterval:           c.PollIntervalStr,
		HTTPTimeout:            c.HTTPTimeoutStr,
		WindowSize:             c.WindowSize,
		ChartHeight:            c.ChartHeight,
		MaxConsecutiveFailures: c.MaxConsecutiveFailures,
		LogLevel:               c.LogLevel,
		HTTPAddr:               c.HTTPAddr,
		HTTPShutdownTimeout:    c.HTTPShutdownTimeoutStr,
		MetricsEnabled:         c.MetricsEnabled,
		MetricsPath:            c.MetricsPath,
		MetricsPort:            c.MetricsPort,
		RedisAddr:              c.RedisAddr,
		RedisTTL:               c.RedisTTLStr,
		MetricsFile:            c.MetricsFile,
	}
	return json.MarshalIndent(masked, "", "  ")
}

// maskURL hides the password of a URL's userinfo section, if any.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
