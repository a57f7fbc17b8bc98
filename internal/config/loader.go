package config

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opmux/opmux/internal/util"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// LoadConfig loads configuration from a file path.
func LoadConfig(path string) (*ServiceConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, util.NewConfigErrorWithCause("", "failed to resolve config path", err)
	}

	data, err := os.ReadFile(absPath) //nolint:gosec // path is validated via filepath.Abs
	if err != nil {
		return nil, util.NewConfigErrorWithCause("", "failed to read config file", err)
	}

	return parseConfig(data)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*ServiceConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, util.NewConfigErrorWithCause("", "failed to read config", err)
	}

	return parseConfig(data)
}

// parseConfig parses YAML data into a ServiceConfig.
func parseConfig(data []byte) (*ServiceConfig, error) {
	content := substituteEnvVars(string(data))

	var cfg ServiceConfig
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, util.NewConfigErrorWithCause("", "failed to parse YAML", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment variable values. "$$" escapes a literal dollar sign.
func substituteEnvVars(content string) string {
	content = strings.ReplaceAll(content, "$$", "\x00ESCAPED_DOLLAR\x00")

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""
		if len(submatches) >= 3 {
			defaultValue = submatches[2]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return defaultValue
	})

	return strings.ReplaceAll(result, "\x00ESCAPED_DOLLAR\x00", "$")
}
