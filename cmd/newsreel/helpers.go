package main

import (
	"fmt"
	"log/slog"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/pipeline"
	"newsreel/internal/render"
	"newsreel/internal/services/mediaserver"
	"newsreel/internal/services/tmdb"
)

func loadConfig(path string) (*config.Config, error) {
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("no configuration found at %s (create one with 'newsreel config init')", resolved)
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		FileDir: cfg.Logging.Dir,
	})
}

func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	source := mediaserver.New(cfg.Server, logger)
	client, err := tmdb.New(cfg.TMDB)
	if err != nil {
		return nil, fmt.Errorf("build tmdb client: %w", err)
	}
	renderer := render.New(cfg.Template.Dir, cfg.Pipeline.ContextMaxBytes, logger)

	opts := pipeline.Options{
		WindowDays:   cfg.Server.ObservedPeriodDays,
		FilmFolders:  cfg.Server.FilmFolders,
		TVFolders:    cfg.Server.TVFolders,
		TemplateName: cfg.Template.Name,
		Statics: render.Statics{
			Language:         cfg.Template.Language,
			Subject:          cfg.Template.Subject,
			Title:            cfg.Template.Title,
			Subtitle:         cfg.Template.Subtitle,
			ServerURL:        cfg.Template.ServerURL,
			ServerOwnerName:  cfg.Template.ServerOwnerName,
			UnsubscribeEmail: cfg.Template.UnsubscribeEmail,
		},
		RunTimeout: time.Duration(cfg.Pipeline.RunTimeoutSeconds) * time.Second,
		Workers:    cfg.Pipeline.EnrichmentWorkers,
	}
	return pipeline.New(source, client, renderer, opts, logger), nil
}
