// Package config defines the service configuration model, the YAML
// loader with environment variable substitution, validation, and a
// file watcher for hot reload.
package config
