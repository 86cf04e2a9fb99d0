package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	if err := c.validateTemplate(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	switch c.Server.Type {
	case "jellyfin", "emby":
	default:
		return fmt.Errorf("server.type must be \"jellyfin\" or \"emby\", got %q", c.Server.Type)
	}
	if c.Server.URL == "" {
		return errors.New("server.url must be set")
	}
	parsed, err := url.Parse(c.Server.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("server.url must be an http or https URL, got %q", c.Server.URL)
	}
	if c.Server.APIToken == "" {
		return errors.New("server.api_token is required. Set NEWSREEL_API_TOKEN env var or edit the config file")
	}
	if len(c.Server.FilmFolders) == 0 && len(c.Server.TVFolders) == 0 {
		return errors.New("server.film_folders or server.tv_folders must name at least one library folder")
	}
	if c.Server.ObservedPeriodDays < 1 {
		return errors.New("server.observed_period_days must be at least 1")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/newsreel/config.toml"
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'newsreel config init')", defaultPath)
	}
	return nil
}

// validateEmail only enforces SMTP settings when recipients are configured;
// preview and dry runs never touch the delivery channel.
func (c *Config) validateEmail() error {
	if len(c.Email.Recipients) == 0 {
		return nil
	}
	if c.Email.SMTPServer == "" {
		return errors.New("email.smtp_server must be set when recipients are configured")
	}
	if c.Email.SMTPPort < 1 || c.Email.SMTPPort > 65535 {
		return errors.New("email.smtp_port must be between 1 and 65535")
	}
	if c.Email.Username == "" {
		return errors.New("email.smtp_username must be set when recipients are configured")
	}
	if c.Email.Password == "" {
		return errors.New("email.smtp_password is required. Set NEWSREEL_SMTP_PASSWORD env var or edit the config file")
	}
	if c.Email.SenderEmail == "" {
		return errors.New("email.smtp_sender_email must be set when recipients are configured")
	}
	if _, err := mail.ParseAddress(c.Email.SenderEmail); err != nil {
		return errors.New("email.smtp_sender_email is not a valid address")
	}
	for _, recipient := range c.Email.Recipients {
		if _, err := mail.ParseAddress(recipient); err != nil {
			return errors.New("email.recipients contains an invalid address")
		}
	}
	return nil
}

func (c *Config) validateTemplate() error {
	if _, err := language.Parse(c.Template.Language); err != nil {
		return fmt.Errorf("template.language %q is not a valid language tag", c.Template.Language)
	}
	if c.Template.Name != "" && strings.ContainsAny(c.Template.Name, "/\\") {
		return errors.New("template.name must be a bare file name, not a path")
	}
	if c.Template.Name != "" && c.Template.Dir == "" {
		return errors.New("template.name requires template.dir to be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.EnrichmentWorkers > 64 {
		return errors.New("pipeline.enrichment_workers must be 64 or fewer")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
}
