package config

const (
	defaultServerType           = "jellyfin"
	defaultObservedPeriodDays   = 30
	defaultServerRequestTimeout = 30
	defaultTMDBBaseURL          = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL     = "https://image.tmdb.org/t/p/w500"
	defaultTMDBLanguage         = "en-US"
	defaultTMDBRequestTimeout   = 15
	defaultSMTPPort             = 587
	defaultTemplateLanguage     = "en"
	defaultTemplateSubject      = "Recently added to the library"
	defaultTemplateTitle        = "Recently Added"
	defaultRunTimeoutSeconds    = 300
	defaultEnrichmentWorkers    = 4
	defaultContextMaxBytes      = 1 << 20
	defaultLockPath             = "~/.local/share/newsreel/newsreel.lock"
	defaultNtfyRequestTimeout   = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogDir               = "~/.local/share/newsreel/logs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Type:               defaultServerType,
			ObservedPeriodDays: defaultObservedPeriodDays,
			RequestTimeout:     defaultServerRequestTimeout,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			ImageBaseURL:   defaultTMDBImageBaseURL,
			Language:       defaultTMDBLanguage,
			RequestTimeout: defaultTMDBRequestTimeout,
		},
		Email: Email{
			SMTPPort: defaultSMTPPort,
		},
		Template: Template{
			Language: defaultTemplateLanguage,
			Subject:  defaultTemplateSubject,
			Title:    defaultTemplateTitle,
		},
		Pipeline: Pipeline{
			RunTimeoutSeconds: defaultRunTimeoutSeconds,
			EnrichmentWorkers: defaultEnrichmentWorkers,
			ContextMaxBytes:   defaultContextMaxBytes,
			LockPath:          defaultLockPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			RunCompleted:   true,
			RunFailed:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}
