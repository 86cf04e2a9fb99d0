package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	if err := c.normalizeTMDB(); err != nil {
		return err
	}
	c.normalizeEmail()
	if err := c.normalizeTemplate(); err != nil {
		return err
	}
	if err := c.normalizePipeline(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeServer() error {
	c.Server.Type = strings.ToLower(strings.TrimSpace(c.Server.Type))
	if c.Server.Type == "" {
		c.Server.Type = defaultServerType
	}
	c.Server.URL = strings.TrimRight(strings.TrimSpace(c.Server.URL), "/")
	if c.Server.APIToken == "" {
		if value, ok := os.LookupEnv("NEWSREEL_API_TOKEN"); ok {
			c.Server.APIToken = value
		}
	}
	c.Server.FilmFolders = trimFolderNames(c.Server.FilmFolders)
	c.Server.TVFolders = trimFolderNames(c.Server.TVFolders)
	if c.Server.ObservedPeriodDays == 0 {
		c.Server.ObservedPeriodDays = defaultObservedPeriodDays
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaultServerRequestTimeout
	}
	return nil
}

func (c *Config) normalizeTMDB() error {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.RequestTimeout <= 0 {
		c.TMDB.RequestTimeout = defaultTMDBRequestTimeout
	}
	return nil
}

func (c *Config) normalizeEmail() {
	c.Email.SMTPServer = strings.TrimSpace(c.Email.SMTPServer)
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = defaultSMTPPort
	}
	if c.Email.Password == "" {
		if value, ok := os.LookupEnv("NEWSREEL_SMTP_PASSWORD"); ok {
			c.Email.Password = value
		}
	}
	recipients := make([]string, 0, len(c.Email.Recipients))
	for _, recipient := range c.Email.Recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient != "" {
			recipients = append(recipients, recipient)
		}
	}
	c.Email.Recipients = recipients
}

func (c *Config) normalizeTemplate() error {
	var err error
	if c.Template.Dir != "" {
		if c.Template.Dir, err = expandPath(c.Template.Dir); err != nil {
			return fmt.Errorf("template.dir: %w", err)
		}
	}
	c.Template.Name = strings.TrimSpace(c.Template.Name)
	c.Template.Language = strings.TrimSpace(c.Template.Language)
	if c.Template.Language == "" {
		c.Template.Language = defaultTemplateLanguage
	}
	if strings.TrimSpace(c.Template.Subject) == "" {
		c.Template.Subject = defaultTemplateSubject
	}
	if strings.TrimSpace(c.Template.Title) == "" {
		c.Template.Title = defaultTemplateTitle
	}
	return nil
}

func (c *Config) normalizePipeline() error {
	if c.Pipeline.RunTimeoutSeconds <= 0 {
		c.Pipeline.RunTimeoutSeconds = defaultRunTimeoutSeconds
	}
	if c.Pipeline.EnrichmentWorkers <= 0 {
		c.Pipeline.EnrichmentWorkers = defaultEnrichmentWorkers
	}
	if c.Pipeline.ContextMaxBytes <= 0 {
		c.Pipeline.ContextMaxBytes = defaultContextMaxBytes
	}
	if strings.TrimSpace(c.Pipeline.LockPath) == "" {
		c.Pipeline.LockPath = defaultLockPath
	}
	var err error
	if c.Pipeline.LockPath, err = expandPath(c.Pipeline.LockPath); err != nil {
		return fmt.Errorf("pipeline.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = defaultLogDir
	}
	if expanded, err := expandPath(c.Logging.Dir); err == nil {
		c.Logging.Dir = expanded
	}
}

func trimFolderNames(folders []string) []string {
	out := make([]string, 0, len(folders))
	for _, folder := range folders {
		folder = strings.TrimSpace(folder)
		if folder != "" {
			out = append(out, folder)
		}
	}
	return out
}
