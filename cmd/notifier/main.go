package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-feed-notifier/internal/app"
	"github.com/samvad-hq/samvad-feed-notifier/internal/config"
	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
	"github.com/samvad-hq/samvad-feed-notifier/internal/logger"
	"github.com/samvad-hq/samvad-feed-notifier/pkg/feeds"
	"github.com/urfave/cli/v2"
)

// ExitStartupError is returned only when configuration, files or the store cannot be loaded.
const ExitStartupError = 1

func main() {
	cliApp := &cli.App{
		Name:  "notifier",
		Usage: "Poll feeds and push fresh items to a Feishu webhook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sources-file",
				Usage: "YAML/JSON/OPML source list (overrides SOURCES_FILE)",
			},
			&cli.StringFlag{
				Name:  "publishers-file",
				Usage: "Extra publishers file (overrides PUBLISHERS_FILE)",
			},
		},
		Action: runOnce,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run one collect and notify pass (default)",
				Action: runOnce,
			},
			{
				Name:   "watch",
				Usage:  "Run a pass every RUN_FREQUENCY seconds until interrupted",
				Action: watch,
			},
			{
				Name:   "sources",
				Usage:  "List the configured feed sources",
				Action: listSources,
			},
			{
				Name:  "history",
				Usage: "Show recent run reports from the history store",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   10,
						Usage:   "Maximum number of reports to return",
					},
				},
				Action: listHistory,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "notifier start failed: %v\n", err)
		os.Exit(ExitStartupError)
	}
}

// loadConfig reads the environment and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := c.String("sources-file"); v != "" {
		cfg.SourcesFile = v
	}
	if v := c.String("publishers-file"); v != "" {
		cfg.PublishersFile = v
	}
	return cfg, nil
}

// startPipeline loads config, initializes logging and builds the pipeline.
func startPipeline(c *cli.Context) (*app.Pipeline, context.Context, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger.InfoObj("notifier starting", "config", cfg)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)

	pipeline, err := app.NewPipeline(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize pipeline", "error", err)
		stop()
		_ = logger.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := pipeline.Close(); err != nil {
			logger.ErrorObj("pipeline close failed", "error", err)
		}
		stop()
		_ = logger.Close()
	}
	return pipeline, ctx, cleanup, nil
}

func runOnce(c *cli.Context) error {
	pipeline, ctx, cleanup, err := startPipeline(c)
	if err != nil {
		return err
	}
	defer cleanup()

	// Per-source and per-item failures are already in the report; only an
	// interrupted pass is worth noting here.
	if _, err := pipeline.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorObj("run failed", "error", err)
	}
	return nil
}

func watch(c *cli.Context) error {
	pipeline, ctx, cleanup, err := startPipeline(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := pipeline.Watch(ctx); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

func listSources(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	reg, err := feeds.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return fmt.Errorf("load sources registry: %w", err)
	}
	return outputJSON(reg.All())
}

func listHistory(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := app.OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if runs == nil {
		runs = []domain.RunReport{}
	}
	return outputJSON(runs)
}

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
