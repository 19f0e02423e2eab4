package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rspamd/rspamd-mon/internal/api"
	"github.com/rspamd/rspamd-mon/internal/config"
	"github.com/rspamd/rspamd-mon/internal/export"
	"github.com/rspamd/rspamd-mon/internal/logging"
	"github.com/rspamd/rspamd-mon/internal/metrics"
	"github.com/rspamd/rspamd-mon/internal/poller"
	"github.com/rspamd/rspamd-mon/internal/render"
	"github.com/rspamd/rspamd-mon/internal/stats"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitRuntimeError)
	}

	cmd := os.Args[1]

	switch cmd {
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "serve":
		os.Exit(runServe())
	case "validate":
		os.Exit(runValidate())
	case "config":
		os.Exit(runConfig())
	case "version":
		os.Exit(runVersion())
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(exitRuntimeError)
	}
}

func printUsage() {
	fmt.Println(`rspamd-mon - terminal monitor for rspamd statistics

Usage:
  rspamd-mon <command> [args]

Commands:
  watch [url]  Poll a stat endpoint and chart message rates in the terminal
  serve        Poll headless and expose series windows over HTTP
  validate     Validate configuration (no connections made)
  config       Print effective configuration as JSON (secrets masked)
  version      Print version information

Environment Variables:
  STAT_URL                  Statistics endpoint (default: "http://localhost:11334/stat")
  POLL_INTERVAL             Poll cadence (default: "1s")
  HTTP_TIMEOUT              Per-request timeout (default: "1s")
  WINDOW_SIZE               Points kept per series (default: "80")
  CHART_HEIGHT              Chart height in rows (default: "6")
  MAX_CONSECUTIVE_FAILURES  Failed polls tolerated in a row (default: "5")
  LOG_LEVEL                 debug, info, warn or error (default: "warn")
  METRICS_FILE              YAML file overriding the tracked metric set (optional)

  HTTP_ADDR                 API server address for serve (default: ":8080")
  HTTP_SHUTDOWN_TIMEOUT     Graceful HTTP shutdown timeout (default: "10s")

  METRICS_ENABLED           Enable Prometheus metrics (default: "false")
  METRICS_PATH              Metrics endpoint path (default: "/metrics")
  METRICS_PORT              Metrics server port (default: "9090")

  REDIS_ADDR                Redis address for the latest-value mirror (optional)
  REDIS_TTL                 TTL on mirrored values (default: "10s")`)
}

func runWatch(args []string) int {
	cfg := config.Load()
	if len(args) > 0 {
		cfg.StatURL = args[0]
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	logConfigWarnings(cfg)

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		return exitInvalidConfig
	}
	defer logger.Sync()

	specs, err := config.LoadMetricSet(cfg.MetricsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "metric set error: %v\n", err)
		return exitInvalidConfig
	}

	agg := stats.NewAggregator(specs, cfg.WindowSize)
	fetcher := poller.NewHTTPFetcher(cfg.StatURL, cfg.HTTPTimeout)

	mon := poller.New(
		poller.Config{Interval: cfg.PollInterval, MaxFailures: cfg.MaxConsecutiveFailures},
		fetcher,
		agg,
		logger,
	).WithRenderer(render.NewTerminal(cfg.ChartHeight))

	metricsSink, metricsServer := setupMetrics(cfg, logger)
	if metricsSink != nil {
		mon = mon.WithMetrics(metricsSink)
	}

	redisClient, publisher := setupRedis(cfg, logger)
	if publisher != nil {
		mon = mon.WithPublisher(publisher)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	logger.Info("watching",
		zap.String("url", cfg.StatURL),
		zap.Duration("interval", cfg.PollInterval),
		zap.Int("window", cfg.WindowSize))

	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()

	pollErr := make(chan error, 1)
	var pollWg sync.WaitGroup
	pollWg.Add(1)
	go func() {
		defer pollWg.Done()
		pollErr <- mon.Run(pollCtx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	exit := exitSuccess
	select {
	case received := <-sig:
		logger.Info("received signal, shutting down", zap.Stringer("signal", received))
		cancelPoll()
		pollWg.Wait()
	case err := <-pollErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "polling stopped: %v\n", err)
			exit = exitRuntimeError
		}
	}

	shutdownServer(metricsServer, cfg.HTTPShutdownTimeout, logger, "metrics server")

	return exit
}

func runServe() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	logConfigWarnings(cfg)

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		return exitInvalidConfig
	}
	defer logger.Sync()

	specs, err := config.LoadMetricSet(cfg.MetricsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "metric set error: %v\n", err)
		return exitInvalidConfig
	}

	agg := stats.NewAggregator(specs, cfg.WindowSize)
	fetcher := poller.NewHTTPFetcher(cfg.StatURL, cfg.HTTPTimeout)

	mon := poller.New(
		poller.Config{Interval: cfg.PollInterval, MaxFailures: cfg.MaxConsecutiveFailures},
		fetcher,
		agg,
		logger,
	)

	metricsSink, metricsServer := setupMetrics(cfg, logger)
	if metricsSink != nil {
		mon = mon.WithMetrics(metricsSink)
	}

	redisClient, publisher := setupRedis(cfg, logger)
	if publisher != nil {
		mon = mon.WithPublisher(publisher)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Three missed cycles marks the poller stale in verbose health.
	staleAfter := 3 * cfg.PollInterval
	apiHandler := api.NewHandler(agg, logger).WithPollStatus(mon, staleAfter)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiHandler,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	logger.Info("serving",
		zap.String("url", cfg.StatURL),
		zap.Duration("interval", cfg.PollInterval),
		zap.String("http", cfg.HTTPAddr))

	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()

	pollErr := make(chan error, 1)
	var pollWg sync.WaitGroup
	pollWg.Add(1)
	go func() {
		defer pollWg.Done()
		pollErr <- mon.Run(pollCtx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	exit := exitSuccess
	select {
	case received := <-sig:
		logger.Info("received signal, shutting down", zap.Stringer("signal", received))
	case err := <-pollErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "polling stopped: %v\n", err)
			exit = exitRuntimeError
		}
	}

	// Phase 1: stop polling so no new updates land.
	cancelPoll()
	pollWg.Wait()
	logger.Info("poller stopped")

	// Phase 2: stop the API server.
	shutdownServer(httpServer, cfg.HTTPShutdownTimeout, logger, "http server")

	// Phase 3: stop the metrics server.
	shutdownServer(metricsServer, cfg.HTTPShutdownTimeout, logger, "metrics server")

	logger.Info("stopped")
	return exit
}

func runValidate() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvalidConfig
	}

	fmt.Println("configuration valid")
	return exitSuccess
}

func runConfig() int {
	cfg := config.Load()

	data, err := cfg.MaskedJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal config: %v\n", err)
		return exitRuntimeError
	}

	fmt.Println(string(data))
	return exitSuccess
}

func runVersion() int {
	fmt.Printf("rspamd-mon version %s (commit: %s)\n", version, commit)
	return exitSuccess
}

// setupMetrics starts the Prometheus endpoint when METRICS_ENABLED is
// set. Returns a nil sink when metrics are disabled.
func setupMetrics(cfg config.Config, logger *zap.Logger) (*metrics.PrometheusSink, *http.Server) {
	if !cfg.MetricsEnabled {
		logger.Info("METRICS_ENABLED not set; metrics disabled")
		return nil, nil
	}

	sink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)

	mux := http.NewServeMux()
	mux.Handle(cfg.MetricsPath, promhttp.Handler())
	srv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: mux,
	}
	go func() {
		logger.Info("metrics server listening",
			zap.String("addr", srv.Addr),
			zap.String("path", cfg.MetricsPath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	return sink, srv
}

// setupRedis wires the latest-value mirror when REDIS_ADDR is set.
func setupRedis(cfg config.Config, logger *zap.Logger) (*redis.Client, *export.RedisPublisher) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set; mirror disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	logger.Info("mirror enabled", zap.String("redis", cfg.RedisAddr))
	return client, export.NewRedisPublisher(client, cfg.RedisTTL, logger)
}

func shutdownServer(srv *http.Server, timeout time.Duration, logger *zap.Logger, name string) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn(name+" shutdown error", zap.Error(err))
	}
}
