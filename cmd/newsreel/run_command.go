package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"newsreel/internal/delivery"
	"newsreel/internal/notifications"
	"newsreel/internal/pipeline"
)

func newRunCommand(configFlag *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, enrich, render, and send the newsletter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(cfg.Pipeline.LockPath), 0o755); err != nil {
				return fmt.Errorf("create lock directory: %w", err)
			}
			lock := flock.New(cfg.Pipeline.LockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another newsreel run holds the lock at %s", cfg.Pipeline.LockPath)
			}
			defer lock.Unlock()

			p, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}
			notifier := notifications.NewService(cfg.Notifications)

			result, err := p.Run(cmd.Context())
			if err != nil {
				_ = notifier.NotifyRunFailed(cmd.Context(), err)
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderStatsTable(result))

			sent := 0
			switch {
			case dryRun:
				fmt.Fprintln(out, "Dry run: newsletter not sent.")
			case result.Empty():
				fmt.Fprintln(out, "Nothing new this period: newsletter not sent.")
			case len(cfg.Email.Recipients) == 0:
				fmt.Fprintln(out, "No recipients configured: newsletter not sent.")
			default:
				sender := delivery.NewSMTPSender(cfg.Email, logger)
				msg := delivery.Message{
					Subject:   result.Subject,
					PlainBody: plainBody(result),
					HTMLBody:  result.HTML,
				}
				if err := sender.Send(cmd.Context(), msg, cfg.Email.Recipients); err != nil {
					_ = notifier.NotifyRunFailed(cmd.Context(), err)
					return err
				}
				sent = len(cfg.Email.Recipients)
				fmt.Fprintf(out, "Newsletter sent to %d recipients.\n", sent)
			}

			_ = notifier.NotifyRunCompleted(cmd.Context(), result, sent)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build and render the digest without sending email")
	return cmd
}

const resultDurationUnit = time.Millisecond

func renderStatsTable(result pipeline.RenderedDigest) string {
	audit := "clean"
	if !result.Clean() {
		audit = fmt.Sprintf("%d findings", len(result.Findings))
	}
	return renderTable(
		[]string{"Run", "Movies", "Shows", "Lookup failures", "Audit", "Duration"},
		[][]string{{
			result.RunID,
			strconv.Itoa(result.Stats.MoviesCount),
			strconv.Itoa(result.Stats.ShowsCount),
			strconv.Itoa(result.Stats.EnrichmentFailures),
			audit,
			result.Duration.Round(resultDurationUnit).String(),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight},
	)
}

// plainBody is the text/plain alternative for clients that refuse HTML.
func plainBody(result pipeline.RenderedDigest) string {
	return fmt.Sprintf(
		"Recently added to the library: %d movies and %d shows.\n\nOpen the HTML version of this email to see details.\n",
		result.Stats.MoviesCount, result.Stats.ShowsCount,
	)
}
