package config

import (
	"strings"

	"github.com/opmux/opmux/internal/util"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validLogOutputs = map[string]bool{
	"stdout": true,
	"stderr": true,
}

// ValidateConfig validates a loaded configuration. It reports all
// problems at once rather than stopping at the first one.
func ValidateConfig(cfg *ServiceConfig) error {
	verr := util.NewValidationError("invalid service configuration")

	if cfg == nil {
		return util.NewValidationError("configuration is nil")
	}

	if !strings.Contains(cfg.Server.Address, ":") {
		verr.AddField("server.address", "must be a host:port address")
	}
	if cfg.Server.ReadTimeout < 0 {
		verr.AddField("server.readTimeout", "must not be negative")
	}
	if cfg.Server.WriteTimeout < 0 {
		verr.AddField("server.writeTimeout", "must not be negative")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		verr.AddField("server.shutdownTimeout", "must be positive")
	}

	if cfg.Metrics.Enabled {
		if !strings.Contains(cfg.Metrics.Address, ":") {
			verr.AddField("metrics.address", "must be a host:port address")
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			verr.AddField("metrics.path", "must start with /")
		}
		if cfg.Metrics.Address == cfg.Server.Address {
			verr.AddField("metrics.address", "must differ from server.address")
		}
	}

	if !validLogLevels[cfg.Logging.Level] {
		verr.AddField("logging.level", "must be one of debug, info, warn, error")
	}
	if !validLogFormats[cfg.Logging.Format] {
		verr.AddField("logging.format", "must be json or console")
	}
	if !validLogOutputs[cfg.Logging.Output] {
		verr.AddField("logging.output", "must be stdout or stderr")
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.ServiceName == "" {
			verr.AddField("tracing.serviceName", "must not be empty")
		}
		if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
			verr.AddField("tracing.samplingRate", "must be between 0 and 1")
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond <= 0 {
			verr.AddField("rateLimit.requestsPerSecond", "must be positive")
		}
		if cfg.RateLimit.Burst < cfg.RateLimit.RequestsPerSecond {
			verr.AddField("rateLimit.burst", "must be at least requestsPerSecond")
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
