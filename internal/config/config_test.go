package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newsreel/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
[server]
url = "http://media.local:8096"
api_token = "server-token"
film_folders = ["Movies"]

[tmdb]
api_key = "tmdb-key"
`

func TestLoadMinimalConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, path)
	}
	if cfg.Server.Type != "jellyfin" {
		t.Fatalf("expected default server type jellyfin, got %q", cfg.Server.Type)
	}
	if cfg.Server.ObservedPeriodDays != 30 {
		t.Fatalf("unexpected observed period: %d", cfg.Server.ObservedPeriodDays)
	}
	if cfg.TMDB.BaseURL != config.Default().TMDB.BaseURL {
		t.Fatalf("unexpected TMDB base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.ImageBaseURL != "https://image.tmdb.org/t/p/w500" {
		t.Fatalf("unexpected image base url: %q", cfg.TMDB.ImageBaseURL)
	}
	if cfg.Email.SMTPPort != 587 {
		t.Fatalf("unexpected smtp port default: %d", cfg.Email.SMTPPort)
	}
	if cfg.Pipeline.EnrichmentWorkers != 4 {
		t.Fatalf("unexpected worker default: %d", cfg.Pipeline.EnrichmentWorkers)
	}
	if !filepath.IsAbs(cfg.Pipeline.LockPath) {
		t.Fatalf("lock path not expanded: %q", cfg.Pipeline.LockPath)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q %q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadUsesEnvFallbacksForSecrets(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-tmdb")
	t.Setenv("NEWSREEL_API_TOKEN", "env-token")
	path := writeConfig(t, `
[server]
url = "https://media.local"
tv_folders = ["Shows"]
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.APIToken != "env-token" {
		t.Fatalf("expected api token from env, got %q", cfg.Server.APIToken)
	}
	if cfg.TMDB.APIKey != "env-tmdb" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
}

func TestLoadNormalizesServerURLAndFolders(t *testing.T) {
	path := writeConfig(t, `
[server]
type = "Emby"
url = "http://media.local:8096/"
api_token = "token"
film_folders = [" Movies ", "", "4K Movies"]

[tmdb]
api_key = "key"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Type != "emby" {
		t.Fatalf("server type not lowercased: %q", cfg.Server.Type)
	}
	if cfg.Server.URL != "http://media.local:8096" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.Server.URL)
	}
	want := []string{"Movies", "4K Movies"}
	if len(cfg.Server.FilmFolders) != len(want) {
		t.Fatalf("unexpected folders: %v", cfg.Server.FilmFolders)
	}
	for i, folder := range want {
		if cfg.Server.FilmFolders[i] != folder {
			t.Fatalf("unexpected folders: %v", cfg.Server.FilmFolders)
		}
	}
}

func TestValidateRejectsSecretlessConfigWithoutEchoingValues(t *testing.T) {
	path := writeConfig(t, `
[server]
url = "http://media.local"
film_folders = ["Movies"]

[tmdb]
api_key = "key"
`)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected missing api_token error")
	}
	if !strings.Contains(err.Error(), "server.api_token") {
		t.Fatalf("error should name the key: %v", err)
	}
}

func TestValidateRejectsUnknownServerType(t *testing.T) {
	path := writeConfig(t, `
[server]
type = "plex"
url = "http://media.local"
api_token = "token"
film_folders = ["Movies"]

[tmdb]
api_key = "key"
`)

	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "server.type") {
		t.Fatalf("expected server.type error, got %v", err)
	}
}

func TestValidateRequiresWatchedFolders(t *testing.T) {
	path := writeConfig(t, `
[server]
url = "http://media.local"
api_token = "token"

[tmdb]
api_key = "key"
`)

	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "library folder") {
		t.Fatalf("expected watched folder error, got %v", err)
	}
}

func TestValidateEmailOnlyWhenRecipientsConfigured(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[email]
recipients = ["reader@example.com"]
`)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected smtp validation error")
	}
	if !strings.Contains(err.Error(), "email.smtp_server") {
		t.Fatalf("error should name email.smtp_server: %v", err)
	}
	if strings.Contains(err.Error(), "reader@example.com") {
		t.Fatalf("error must not echo recipient values: %v", err)
	}
}

func TestValidateSMTPPasswordErrorNeverEchoesSecret(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[email]
smtp_server = "smtp.example.com"
smtp_username = "mailer"
smtp_sender_email = "news@example.com"
recipients = ["reader@example.com"]
`)

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "email.smtp_password") {
		t.Fatalf("expected smtp_password error, got %v", err)
	}
}

func TestValidateRejectsInvalidTemplateLanguage(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[template]
language = "not a tag"
`)

	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "template.language") {
		t.Fatalf("expected template.language error, got %v", err)
	}
}

func TestValidateRejectsTemplateNameWithPathSeparators(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
[template]
dir = "/tmp/templates"
name = "../../etc/passwd"
`)

	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "template.name") {
		t.Fatalf("expected template.name error, got %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(body), "[server]") || !strings.Contains(string(body), "[tmdb]") {
		t.Fatalf("sample config missing sections")
	}
}

func TestLoadMissingFileKeepsDefaultsButFailsValidation(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")
	_, _, _, err := config.Load(missing)
	if err == nil {
		t.Fatal("expected validation failure for empty defaults")
	}
}
