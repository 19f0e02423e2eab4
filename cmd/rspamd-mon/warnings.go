package main

import (
	"log"
	"time"

	"github.com/rspamd/rspamd-mon/internal/config"
)

// logConfigWarnings flags configuration combinations that load fine but
// are probably not what the operator wants.
func logConfigWarnings(cfg config.Config) {
	if cfg.PollInterval > 0 && cfg.PollInterval < 100*time.Millisecond {
		log.Printf("WARNING: POLL_INTERVAL=%s hammers the stat endpoint; rates over sub-100ms windows are mostly noise",
			cfg.PollIntervalStr)
	}

	if cfg.HTTPTimeout > cfg.PollInterval {
		log.Printf("WARNING: HTTP_TIMEOUT=%s exceeds POLL_INTERVAL=%s; one slow response stalls the whole cycle",
			cfg.HTTPTimeoutStr, cfg.PollIntervalStr)
	}

	if cfg.WindowSize < 2 {
		log.Printf("WARNING: WINDOW_SIZE=%d keeps almost no history; charts and summaries will be flat",
			cfg.WindowSize)
	}

	if !cfg.MetricsEnabled {
		log.Printf("INFO: METRICS_ENABLED=false; poller health is only visible in logs")
	}
}
