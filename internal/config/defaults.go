package config

const (
	defaultDataDir   = "~/.local/share/lessonforge/data"
	defaultLogDir    = "~/.local/share/lessonforge/logs"
	defaultAPIBind   = "127.0.0.1:7642"
	defaultLogFormat = "text"
	defaultLogLevel  = "info"

	defaultContentBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultContentModel   = "google/gemini-3-flash-preview"
	defaultContentTitle   = "Lessonforge Script Generator"
	defaultSpeechBaseURL  = "https://api.elevenlabs.io/v1/text-to-speech"
	defaultAvatarBaseURL  = "https://api.heygen.com/v2/video"
	defaultRenderBaseURL  = "http://127.0.0.1:8188/render"
	defaultResearchURL    = "https://api.tavily.com/search"

	defaultProviderTimeoutSeconds = 120
	defaultMaxRetries             = 3
	defaultRetryBaseMs            = 1000
	defaultRetryMaxMs             = 30000
	defaultMinIntervalMs          = 1000

	// The content provider throttles bursts aggressively, so its retry budget
	// is wider than the other stages.
	defaultContentMaxRetries  = 4
	defaultContentRetryBaseMs = 3000
	defaultContentRetryMaxMs  = 60000

	defaultAvatarPollInitialMs   = 5000
	defaultAvatarPollGrowth      = 1.2
	defaultAvatarPollGrowthEvery = 3
	defaultAvatarPollMaxMs       = 20000
	defaultAvatarPollMaxAttempts = 40

	defaultRenderPollIntervalMs       = 10000
	defaultRenderPollInitialWaitMs    = 10000
	defaultRenderPollMaxAttempts      = 120
	defaultRenderPollTransientDelayMs = 15000

	defaultResearchMaxResults        = 5
	defaultResearchMaxCharsPerSource = 4000
	defaultResearchFetchTimeout      = 10

	defaultStoragePresignHours = 72

	defaultNotifyRequestTimeout = 10

	defaultNativeLanguage = "en"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Providers: Providers{
			Content: ContentProvider{
				BaseURL:        defaultContentBaseURL,
				Model:          defaultContentModel,
				Title:          defaultContentTitle,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
				MaxRetries:     defaultContentMaxRetries,
				RetryBaseMs:    defaultContentRetryBaseMs,
				RetryMaxMs:     defaultContentRetryMaxMs,
				MinIntervalMs:  defaultMinIntervalMs,
			},
			Speech: SpeechProvider{
				BaseURL:        defaultSpeechBaseURL,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
				MaxRetries:     defaultMaxRetries,
				RetryBaseMs:    defaultRetryBaseMs,
				RetryMaxMs:     defaultRetryMaxMs,
				MinIntervalMs:  defaultMinIntervalMs,
			},
			Avatar: AvatarProvider{
				BaseURL:         defaultAvatarBaseURL,
				TimeoutSeconds:  defaultProviderTimeoutSeconds,
				MaxRetries:      defaultMaxRetries,
				RetryBaseMs:     defaultRetryBaseMs,
				RetryMaxMs:      defaultRetryMaxMs,
				MinIntervalMs:   defaultMinIntervalMs,
				PollInitialMs:   defaultAvatarPollInitialMs,
				PollGrowth:      defaultAvatarPollGrowth,
				PollGrowthEvery: defaultAvatarPollGrowthEvery,
				PollMaxMs:       defaultAvatarPollMaxMs,
				PollMaxAttempts: defaultAvatarPollMaxAttempts,
			},
			Render: RenderProvider{
				BaseURL:              defaultRenderBaseURL,
				TimeoutSeconds:       defaultProviderTimeoutSeconds,
				MaxRetries:           defaultMaxRetries,
				RetryBaseMs:          defaultRetryBaseMs,
				RetryMaxMs:           defaultRetryMaxMs,
				MinIntervalMs:        defaultMinIntervalMs,
				PollIntervalMs:       defaultRenderPollIntervalMs,
				PollInitialWaitMs:    defaultRenderPollInitialWaitMs,
				PollMaxAttempts:      defaultRenderPollMaxAttempts,
				PollTransientDelayMs: defaultRenderPollTransientDelayMs,
			},
		},
		Research: Research{
			BaseURL:             defaultResearchURL,
			MaxResults:          defaultResearchMaxResults,
			MaxCharsPerSource:   defaultResearchMaxCharsPerSource,
			FetchTimeoutSeconds: defaultResearchFetchTimeout,
		},
		Storage: Storage{
			PresignHours: defaultStoragePresignHours,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Stages:         true,
			Completion:     true,
			Errors:         true,
		},
		Workflow: Workflow{
			DefaultNativeLanguage: defaultNativeLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
