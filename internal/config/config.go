package config

import "time"

// ServiceConfig is the top-level configuration for the service.
type ServiceConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

// ServerConfig configures the main HTTP listener.
type ServerConfig struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
	MaxHeaderBytes  int      `yaml:"maxHeaderBytes"`
}

// MetricsConfig configures the metrics and health listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// RateLimitConfig configures the request rate limiter.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requestsPerSecond"`
	Burst             int  `yaml:"burst"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
			MaxHeaderBytes:  1 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9090",
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  "opmux",
			SamplingRate: 1.0,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 100,
			Burst:             200,
		},
	}
}

// applyDefaults fills zero-valued fields from the defaults.
func applyDefaults(cfg *ServiceConfig) {
	def := DefaultConfig()

	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = def.Server.IdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = def.Server.MaxHeaderBytes
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = def.Metrics.Address
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = def.Metrics.Path
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = def.Logging.Output
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = def.Tracing.ServiceName
	}
	if cfg.Tracing.SamplingRate == 0 {
		cfg.Tracing.SamplingRate = def.Tracing.SamplingRate
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = def.RateLimit.RequestsPerSecond
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = def.RateLimit.Burst
	}
}
