package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPreviewCommand(configFlag *string) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the newsletter HTML without sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			logger, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			p, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}

			result, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(result.HTML), 0o644); err != nil {
					return fmt.Errorf("write preview: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Preview written to %s\n", outputPath)
				fmt.Fprintln(cmd.OutOrStdout(), renderStatsTable(result))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.HTML)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the rendered HTML to a file instead of stdout")
	return cmd
}
