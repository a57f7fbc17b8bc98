package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmux/opmux/internal/util"
)

func TestValidateConfig_Defaults(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateConfig(DefaultConfig()))
}

func TestValidateConfig_Nil(t *testing.T) {
	t.Parallel()

	assert.Error(t, ValidateConfig(nil))
}

func TestValidateConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ServiceConfig)
		field  string
	}{
		{
			name:   "bad server address",
			mutate: func(c *ServiceConfig) { c.Server.Address = "8080" },
			field:  "server.address",
		},
		{
			name:   "negative read timeout",
			mutate: func(c *ServiceConfig) { c.Server.ReadTimeout = Duration(-time.Second) },
			field:  "server.readTimeout",
		},
		{
			name:   "zero shutdown timeout",
			mutate: func(c *ServiceConfig) { c.Server.ShutdownTimeout = 0 },
			field:  "server.shutdownTimeout",
		},
		{
			name: "metrics address clashes with server",
			mutate: func(c *ServiceConfig) {
				c.Metrics.Enabled = true
				c.Metrics.Address = c.Server.Address
			},
			field: "metrics.address",
		},
		{
			name:   "unknown log level",
			mutate: func(c *ServiceConfig) { c.Logging.Level = "loud" },
			field:  "logging.level",
		},
		{
			name:   "unknown log format",
			mutate: func(c *ServiceConfig) { c.Logging.Format = "xml" },
			field:  "logging.format",
		},
		{
			name: "sampling rate out of range",
			mutate: func(c *ServiceConfig) {
				c.Tracing.Enabled = true
				c.Tracing.SamplingRate = 2
			},
			field: "tracing.samplingRate",
		},
		{
			name: "burst below rate",
			mutate: func(c *ServiceConfig) {
				c.RateLimit.Enabled = true
				c.RateLimit.RequestsPerSecond = 100
				c.RateLimit.Burst = 10
			},
			field: "rateLimit.burst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, &util.ValidationError{})
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
