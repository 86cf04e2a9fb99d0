package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains configuration for the media server the digest is built from.
type Server struct {
	Type               string   `toml:"type"`
	URL                string   `toml:"url"`
	APIToken           string   `toml:"api_token"`
	FilmFolders        []string `toml:"film_folders"`
	TVFolders          []string `toml:"tv_folders"`
	ObservedPeriodDays int      `toml:"observed_period_days"`
	RequestTimeout     int      `toml:"request_timeout"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ImageBaseURL   string `toml:"image_base_url"`
	Language       string `toml:"language"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Email contains SMTP delivery configuration.
type Email struct {
	SMTPServer  string   `toml:"smtp_server"`
	SMTPPort    int      `toml:"smtp_port"`
	Username    string   `toml:"smtp_username"`
	Password    string   `toml:"smtp_password"`
	SenderEmail string   `toml:"smtp_sender_email"`
	Recipients  []string `toml:"recipients"`
}

// Template contains newsletter template and presentation settings.
type Template struct {
	Dir              string `toml:"dir"`
	Name             string `toml:"name"`
	Language         string `toml:"language"`
	Subject          string `toml:"subject"`
	Title            string `toml:"title"`
	Subtitle         string `toml:"subtitle"`
	ServerURL        string `toml:"server_url"`
	ServerOwnerName  string `toml:"server_owner_name"`
	UnsubscribeEmail string `toml:"unsubscribe_email"`
}

// Pipeline contains run orchestration settings.
type Pipeline struct {
	RunTimeoutSeconds int    `toml:"run_timeout_seconds"`
	EnrichmentWorkers int    `toml:"enrichment_workers"`
	ContextMaxBytes   int    `toml:"context_max_bytes"`
	LockPath          string `toml:"lock_path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunCompleted   bool   `toml:"run_completed"`
	RunFailed      bool   `toml:"run_failed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for Newsreel.
//
// Configuration sections by subsystem:
//   - Server: media server connection and watched folders
//   - TMDB: metadata enrichment via The Movie Database
//   - Email: SMTP delivery and recipient list
//   - Template: newsletter template resolution and static strings
//   - Pipeline: run timeout, worker bound, context ceiling, lock file
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and file directory
type Config struct {
	Server        Server        `toml:"server"`
	TMDB          TMDB          `toml:"tmdb"`
	Email         Email         `toml:"email"`
	Template      Template      `toml:"template"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/newsreel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("newsreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
