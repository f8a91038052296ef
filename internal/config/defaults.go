package config

const (
	defaultDataDir          = "~/.local/share/imagesieve"
	defaultLogDir           = "~/.local/share/imagesieve/logs"
	defaultSimilarityWindow = 5
	defaultHashDistance     = 10
	defaultCommitMethod     = "copy"
	defaultCacheCapacity    = 64
	defaultMaxWidth         = 800
	defaultMaxHeight        = 600
	defaultPrefetchCount    = 2
	defaultPrefetchWorkers  = 2
	defaultWatchSettleMS    = 500
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Sieve: Sieve{
			SimilarityWindow: defaultSimilarityWindow,
			HashDistance:     defaultHashDistance,
			CommitMethod:     defaultCommitMethod,
		},
		Cache: Cache{
			Capacity:        defaultCacheCapacity,
			MaxWidth:        defaultMaxWidth,
			MaxHeight:       defaultMaxHeight,
			PrefetchCount:   defaultPrefetchCount,
			PrefetchWorkers: defaultPrefetchWorkers,
		},
		Watch: Watch{
			Enabled:  false,
			SettleMS: defaultWatchSettleMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
