// Package main is the entry point for the opmux demo service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opmux/opmux/internal/config"
	"github.com/opmux/opmux/internal/health"
	"github.com/opmux/opmux/internal/middleware"
	"github.com/opmux/opmux/internal/observability"
	"github.com/opmux/opmux/internal/server"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)
	app := initApplication(cfg, logger)

	run(app, flags.configPath, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("OPMUX_CONFIG_PATH", "configs/opmux.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("OPMUX_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("OPMUX_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information and exits.
func printVersion() {
	fmt.Printf("opmux version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadAndValidateConfig loads and validates the configuration. A
// missing config file falls back to defaults.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.ServiceConfig {
	logger.Info("starting opmux",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("config file not found, using defaults",
				observability.String("path", configPath),
			)
			return config.DefaultConfig()
		}
		logger.Fatal("failed to load configuration", observability.Error(err))
	}

	if err := config.ValidateConfig(cfg); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	logger.Info("configuration loaded",
		observability.String("address", cfg.Server.Address),
		observability.Bool("metrics", cfg.Metrics.Enabled),
		observability.Bool("tracing", cfg.Tracing.Enabled),
		observability.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	return cfg
}

// application holds all application components.
type application struct {
	server        *server.Server
	metricsServer *server.MetricsServer
	healthChecker *health.Checker
	metrics       *observability.Metrics
	tracer        *observability.Tracer
	config        *config.ServiceConfig
}

// initApplication initializes all application components.
func initApplication(cfg *config.ServiceConfig, logger observability.Logger) *application {
	metrics := observability.NewMetrics("opmux")
	tracer := initTracer(cfg.Tracing, logger)
	healthChecker := health.NewChecker(version)

	store := newArtifactStore()
	rt, err := buildRouter(store, logger)
	if err != nil {
		logger.Fatal("failed to build router", observability.Error(err))
	}
	healthChecker.RegisterCheck("router", func() health.Check {
		if rt.Routes() == 0 {
			return health.Check{Status: health.StatusUnhealthy, Message: "no routes registered"}
		}
		return health.Check{Status: health.StatusHealthy}
	})

	srv := server.NewServer(cfg.Server, rt, logger,
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		observability.TracingMiddleware(tracer),
		observability.MetricsMiddleware(metrics),
		middleware.RateLimitFromConfig(cfg.RateLimit, logger),
	)

	app := &application{
		server:        srv,
		healthChecker: healthChecker,
		metrics:       metrics,
		tracer:        tracer,
		config:        cfg,
	}

	if cfg.Metrics.Enabled {
		app.metricsServer = server.NewMetricsServer(cfg.Metrics, metrics, healthChecker, logger)
	}

	return app
}

// initTracer initializes the tracer.
func initTracer(cfg config.TracingConfig, logger observability.Logger) *observability.Tracer {
	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.SamplingRate,
		Enabled:      cfg.Enabled,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracer", observability.Error(err))
	}
	return tracer
}

// run starts the servers and the config watcher, then waits for a
// shutdown signal.
func run(app *application, configPath string, logger observability.Logger) {
	go func() {
		if err := app.server.Start(context.Background()); err != nil {
			logger.Fatal("server error", observability.Error(err))
		}
	}()

	if app.metricsServer != nil {
		go func() {
			if err := app.metricsServer.Start(); err != nil {
				logger.Error("metrics server error", observability.Error(err))
			}
		}()
	}

	watcher := startConfigWatcher(configPath, logger)

	waitForShutdown(app, watcher, logger)
}

// startConfigWatcher starts the configuration watcher. Reloads only
// apply the logging level; listener changes need a restart.
func startConfigWatcher(configPath string, logger observability.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.ServiceConfig) {
		if err := logger.SetLevel(newCfg.Logging.Level); err != nil {
			logger.Error("failed to apply new log level", observability.Error(err))
			return
		}
		logger.Info("log level updated",
			observability.String("level", newCfg.Logging.Level),
		)
	}, config.WithLogger(logger))

	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(context.Background()); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
	}

	return watcher
}

// waitForShutdown waits for a shutdown signal and performs graceful
// shutdown.
func waitForShutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", observability.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		app.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	if app.metricsServer != nil {
		if err := app.metricsServer.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop metrics server", observability.Error(err))
		}
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("opmux stopped")
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
