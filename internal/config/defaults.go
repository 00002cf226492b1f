package config

const (
	defaultConfigPath          = "~/.config/overloader/config.toml"
	defaultHevyBaseURL         = "https://api.hevyapp.com"
	defaultHevyTimeoutSeconds  = 30
	defaultServerBind          = "0.0.0.0"
	defaultServerPort          = "3000"
	defaultLLMProvider         = "gemini"
	defaultGeminiModel         = "gemini-2.5-pro"
	defaultOpenRouterBaseURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel     = "google/gemini-2.5-pro"
	defaultLLMReferer          = "https://github.com/dylanvanh/hevy-progressive-overloader"
	defaultLLMTitle            = "Hevy Progressive Overloader"
	defaultLLMTimeoutSeconds   = 120
	defaultDeloadIntensity     = 0.60
	defaultHistoryPageSize     = 10
	defaultHistoryMaxPages     = 10
	defaultSyncIntervalMinutes = 15
	defaultSyncLookbackHours   = 24
	defaultSyncPageSize        = 10
	defaultMaxConcurrent       = 4
	defaultShutdownTimeout     = 30
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultStateDir            = "~/.local/state/overloader"
	defaultLogDir              = "~/.local/share/overloader/logs"
)

// LLM providers accepted by llm.provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Hevy: Hevy{
			BaseURL:        defaultHevyBaseURL,
			TimeoutSeconds: defaultHevyTimeoutSeconds,
		},
		Server: Server{
			Bind: defaultServerBind,
			Port: defaultServerPort,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			Model:          defaultGeminiModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Cycle: Cycle{
			DeloadIntensity: defaultDeloadIntensity,
			HistoryPageSize: defaultHistoryPageSize,
			HistoryMaxPages: defaultHistoryMaxPages,
		},
		Sync: Sync{
			IntervalMinutes: defaultSyncIntervalMinutes,
			LookbackHours:   defaultSyncLookbackHours,
			PageSize:        defaultSyncPageSize,
			RunOnStart:      true,
		},
		Processing: Processing{
			MaxConcurrent:      defaultMaxConcurrent,
			ShutdownTimeoutSec: defaultShutdownTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RoutineUpdated: true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
	}
}
