package testsupport

import (
	"path/filepath"
	"testing"

	"storyloom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Jobs.StepDelayMS = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithStepDelayMS overrides the job runner step delay on the test config.
func WithStepDelayMS(ms int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Jobs.StepDelayMS = ms
	}
}
