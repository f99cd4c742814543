package config

const (
	defaultConfigPath       = "~/.config/ripfeed/config.toml"
	defaultStateDir         = "~/.local/share/ripfeed"
	defaultLogDir           = "~/.local/share/ripfeed/logs"
	defaultOutputDir        = "~/ripfeed"
	defaultLockDir          = "~/.local/share/ripfeed/locks"
	defaultMinFreeMB        = 512
	defaultOpticalDrive     = "/dev/sr0"
	defaultDiscManifest     = "disc.toml"
	defaultVideoQueue       = 256
	defaultAudioQueue       = 256
	defaultSubtitleQueue    = 64
	defaultPollIntervalMS   = 50
	defaultProgressBucket   = 5
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
			OutputDir: defaultOutputDir,
			LockDir:   defaultLockDir,
			MinFreeMB: defaultMinFreeMB,
		},
		Source: Source{
			OpticalDrive: defaultOpticalDrive,
			DiscManifest: defaultDiscManifest,
		},
		Reader: Reader{
			VideoQueue:     defaultVideoQueue,
			AudioQueue:     defaultAudioQueue,
			SubtitleQueue:  defaultSubtitleQueue,
			PollIntervalMS: defaultPollIntervalMS,
		},
		Scan: Scan{
			ProgressBucket: defaultProgressBucket,
			Persist:        true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
			JobLogs:       true,
		},
	}
}
