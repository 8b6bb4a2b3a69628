package config

const (
	defaultDataDir             = "~/.local/share/vidscope/data"
	defaultWorkDir             = "~/.local/share/vidscope/work"
	defaultLogDir              = "~/.local/share/vidscope/logs"
	defaultYouTubeBaseURL      = "https://www.googleapis.com/youtube/v3"
	defaultCommentLimit        = 1000
	defaultYouTubeTimeout      = 30
	defaultDownloaderBinary    = "yt-dlp"
	defaultWhisperBinary       = "whisper"
	defaultWhisperModel        = "base"
	defaultWhisperTimeout      = 1800
	defaultLLMProvider         = "openrouter"
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "google/gemini-3-flash-preview"
	defaultLLMReferer          = "https://github.com/vidscope/vidscope"
	defaultLLMTitle            = "Vidscope Analyzer"
	defaultLLMTimeoutSeconds   = 60
	defaultGeminiModel         = "gemini-1.5-flash"
	defaultAnalysisType        = "detailed"
	defaultNotifyTimeout       = 10
	defaultQueuePollInterval   = 5
	defaultErrorRetryInterval  = 10
	defaultHeartbeatInterval   = 15
	defaultHeartbeatTimeout    = 120
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		YouTube: YouTube{
			BaseURL:          defaultYouTubeBaseURL,
			CommentLimit:     defaultCommentLimit,
			RequestTimeout:   defaultYouTubeTimeout,
			DownloaderBinary: defaultDownloaderBinary,
		},
		Transcription: Transcription{
			Binary:         defaultWhisperBinary,
			Model:          defaultWhisperModel,
			TimeoutSeconds: defaultWhisperTimeout,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Gemini: Gemini{
			Model: defaultGeminiModel,
		},
		Analysis: Analysis{
			DefaultType: defaultAnalysisType,
			MaxComments: defaultCommentLimit,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
