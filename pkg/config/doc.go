// Package config defines the service configuration, loaded from YAML
// with MERIDIAN_* environment variable overrides.
//
// Loading applies defaults first, then the file, then the environment,
// and validates the final result. A zero-value file is therefore a
// valid configuration.
package config
