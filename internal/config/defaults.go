package config

const (
	defaultDataDir                   = "~/.local/share/stockmate"
	defaultExportDir                 = "~/stockmate/exports"
	defaultLogDir                    = "~/.local/share/stockmate/logs"
	defaultReviewDir                 = "~/stockmate/review"
	defaultLogRetentionDays          = 60
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
	defaultVisionBaseURL             = "https://api.openai.com/v1/chat/completions"
	defaultVisionModel               = "gpt-4o-mini"
	defaultVisionTimeoutSeconds      = 60
	defaultVisionTemperature         = 0.7
	defaultGeneratorProvider         = "auto"
	defaultGeneratorMaxKeywords      = 50
	defaultAnalyzerDedupeThreshold   = 10
	defaultAnalyzerMinMegapixels     = 4.0
	defaultUploaderMinInterval       = 2
	defaultUploaderTimeoutSeconds    = 120
	defaultNotifyRequestTimeout      = 10
	defaultWorkflowPollInterval      = 5
	defaultWorkflowErrorRetry        = 10
	defaultWorkflowHeartbeatInterval = 15
	defaultWorkflowHeartbeatTimeout  = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
			ReviewDir: defaultReviewDir,
		},
		Vision: Vision{
			BaseURL:        defaultVisionBaseURL,
			Model:          defaultVisionModel,
			TimeoutSeconds: defaultVisionTimeoutSeconds,
			Temperature:    defaultVisionTemperature,
		},
		Generator: Generator{
			Provider:          defaultGeneratorProvider,
			Languages:         []string{"en"},
			MaxKeywords:       defaultGeneratorMaxKeywords,
			FallbackHeuristic: true,
		},
		Platforms: Platforms{
			Targets: []string{"shutterstock", "adobe_stock"},
		},
		Analyzer: Analyzer{
			DedupeEnabled:   true,
			DedupeThreshold: defaultAnalyzerDedupeThreshold,
			MinMegapixels:   defaultAnalyzerMinMegapixels,
		},
		Embedder: Embedder{
			Enabled:      true,
			WriteEXIF:    true,
			WriteSidecar: true,
		},
		Uploader: Uploader{
			MinIntervalSeconds: defaultUploaderMinInterval,
			TimeoutSeconds:     defaultUploaderTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Batch:          true,
			Review:         true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultWorkflowPollInterval,
			ErrorRetryInterval: defaultWorkflowErrorRetry,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
