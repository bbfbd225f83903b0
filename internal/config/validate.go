package config

import (
	"errors"
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}

	if strings.TrimSpace(c.Episodes.DefaultTitle) == "" {
		c.Episodes.DefaultTitle = defaultEpisodeTitle
	}
	if c.Episodes.DefaultDurationSec <= 0 {
		c.Episodes.DefaultDurationSec = defaultEpisodeDurationSec
	}
	if c.Episodes.MinDurationSec <= 0 {
		c.Episodes.MinDurationSec = defaultMinDurationSec
	}
	if c.Episodes.MaxDurationSec <= 0 {
		c.Episodes.MaxDurationSec = defaultMaxDurationSec
	}

	if c.Jobs.StepDelayMS < 0 {
		c.Jobs.StepDelayMS = defaultStepDelayMS
	}
	if c.Jobs.QueueCapacity <= 0 {
		c.Jobs.QueueCapacity = defaultQueueCapacity
	}

	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Episodes.MinDurationSec > c.Episodes.MaxDurationSec {
		return errors.New("episodes.min_duration_sec must not exceed episodes.max_duration_sec")
	}
	if c.Episodes.DefaultDurationSec < c.Episodes.MinDurationSec || c.Episodes.DefaultDurationSec > c.Episodes.MaxDurationSec {
		return fmt.Errorf(
			"episodes.default_duration_sec must be within [%d, %d]",
			c.Episodes.MinDurationSec, c.Episodes.MaxDurationSec,
		)
	}
	if !strings.Contains(c.Paths.APIBind, ":") {
		return fmt.Errorf("paths.api_bind %q must be a host:port address", c.Paths.APIBind)
	}
	return nil
}
