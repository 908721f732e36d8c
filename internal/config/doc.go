// Package config loads and validates application configuration from
// environment variables (MENUPICK_ prefix) and an optional config.yaml,
// with environment variables taking precedence.
package config
