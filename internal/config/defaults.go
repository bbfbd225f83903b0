package config

const (
	defaultDataDir            = "~/.local/share/storyloom"
	defaultLogDir             = "~/.local/share/storyloom/logs"
	defaultAPIBind            = "127.0.0.1:7317"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultEpisodeTitle       = "Generated Episode"
	defaultEpisodeDurationSec = 15
	defaultMinDurationSec     = 5
	defaultMaxDurationSec     = 120
	defaultStepDelayMS        = 100
	defaultQueueCapacity      = 64
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Episodes: Episodes{
			DefaultTitle:       defaultEpisodeTitle,
			DefaultDurationSec: defaultEpisodeDurationSec,
			MinDurationSec:     defaultMinDurationSec,
			MaxDurationSec:     defaultMaxDurationSec,
		},
		Jobs: Jobs{
			StepDelayMS:   defaultStepDelayMS,
			QueueCapacity: defaultQueueCapacity,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
