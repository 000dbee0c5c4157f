package config

const (
	defaultBaseURL         = "https://api.github.com"
	defaultUploadBaseURL   = "https://raw.githubusercontent.com"
	defaultBranch          = "main"
	defaultRequestTimeout  = 15
	defaultLabel           = "audio-needed"
	defaultTitlePrefix     = "Add Audio for: "
	defaultMaxCreations    = 25
	defaultPaceMillis      = 1500
	defaultRetryAttempts   = 3
	defaultRetryBaseMillis = 2000
	defaultOnRateLimit     = RateLimitRetry
	defaultDuplicatePolicy = DuplicateClose
	defaultAudioExtension  = ".mp3"
	defaultDatasetFile     = "dictionary.json"
	defaultAudioDir        = "assets/audio"
	defaultAudioURLPath    = "assets/audio"
	defaultStateDir        = "~/.local/share/ekwe"
	defaultLogDir          = "~/.local/share/ekwe/logs"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		GitHub: GitHub{
			BaseURL:        defaultBaseURL,
			UploadBaseURL:  defaultUploadBaseURL,
			Branch:         defaultBranch,
			RequestTimeout: defaultRequestTimeout,
		},
		Reconcile: Reconcile{
			Label:           defaultLabel,
			TitlePrefix:     defaultTitlePrefix,
			MaxCreations:    defaultMaxCreations,
			PaceMillis:      defaultPaceMillis,
			RetryAttempts:   defaultRetryAttempts,
			RetryBaseMillis: defaultRetryBaseMillis,
			OnRateLimit:     defaultOnRateLimit,
			DuplicatePolicy: defaultDuplicatePolicy,
		},
		Harvest: Harvest{
			AudioExtension: defaultAudioExtension,
		},
		Paths: Paths{
			DatasetFile:  defaultDatasetFile,
			AudioDir:     defaultAudioDir,
			AudioURLPath: defaultAudioURLPath,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
