// Package config loads, normalizes, and validates TOML configuration for
// the storyloom daemon and CLI.
package config
