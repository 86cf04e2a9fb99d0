package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"newsreel/internal/config"
)

func newConfigCommand(configFlag *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(configFlag))
	configCmd.AddCommand(newConfigShowCommand(configFlag))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set server.api_token and tmdb.api_key (or export NEWSREEL_API_TOKEN and TMDB_API_KEY).")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if !exists {
				fmt.Fprintf(out, "No configuration file found; defaults validated (looked at %s)\n", path)
				return nil
			}
			fmt.Fprintf(out, "Configuration at %s is valid.\n", path)
			fmt.Fprintf(out, "Server: %s (%s), watching %d film and %d tv folders, %d day window.\n",
				cfg.Server.URL, cfg.Server.Type,
				len(cfg.Server.FilmFolders), len(cfg.Server.TVFolders),
				cfg.Server.ObservedPeriodDays)
			return nil
		},
	}
}

// newConfigShowCommand prints the effective settings. Secret values are
// reported only as present or absent.
func newConfigShowCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rows := [][]string{
				{"config file", path},
				{"server.type", cfg.Server.Type},
				{"server.url", cfg.Server.URL},
				{"server.api_token", secretStatus(cfg.Server.APIToken)},
				{"server.film_folders", strings.Join(cfg.Server.FilmFolders, ", ")},
				{"server.tv_folders", strings.Join(cfg.Server.TVFolders, ", ")},
				{"server.observed_period_days", fmt.Sprintf("%d", cfg.Server.ObservedPeriodDays)},
				{"tmdb.api_key", secretStatus(cfg.TMDB.APIKey)},
				{"tmdb.language", cfg.TMDB.Language},
				{"email.smtp_server", cfg.Email.SMTPServer},
				{"email.smtp_password", secretStatus(cfg.Email.Password)},
				{"email.recipients", fmt.Sprintf("%d configured", len(cfg.Email.Recipients))},
				{"template.name", orDefault(cfg.Template.Name, "(embedded)")},
				{"pipeline.run_timeout_seconds", fmt.Sprintf("%d", cfg.Pipeline.RunTimeoutSeconds)},
				{"pipeline.enrichment_workers", fmt.Sprintf("%d", cfg.Pipeline.EnrichmentWorkers)},
				{"notifications.ntfy_topic", orDefault(cfg.Notifications.NtfyTopic, "(disabled)")},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func secretStatus(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "(set)"
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
