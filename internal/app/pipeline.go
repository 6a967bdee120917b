package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-feed-notifier/internal/collector"
	"github.com/samvad-hq/samvad-feed-notifier/internal/config"
	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
	"github.com/samvad-hq/samvad-feed-notifier/internal/logger"
	"github.com/samvad-hq/samvad-feed-notifier/internal/notifier"
	"github.com/samvad-hq/samvad-feed-notifier/internal/storage"
	"github.com/samvad-hq/samvad-feed-notifier/pkg/feeds"
	"github.com/samvad-hq/samvad-feed-notifier/pkg/publishers"
)

// Pipeline is the notifier runtime. One pass collects fresh items from every
// source, orders and dedupes them, then notifies each through the publishers.
type Pipeline struct {
	cfg       *config.Config
	sources   []feeds.Source
	collector *collector.Service
	notifier  *notifier.Notifier
	fanout    *publishers.Fanout
	store     storage.Store
	log       logger.Logger
	now       func() time.Time
}

// NewPipeline builds the runtime from configuration. Missing delivery endpoints
// are not fatal; unreadable files or a store that cannot open are.
func NewPipeline(ctx context.Context, cfg *config.Config, log logger.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	sourceReg, err := feeds.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	sources := sourceReg.All()
	sourceIDs := make([]string, 0, len(sources))
	for _, s := range sources {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
		"file":  cfg.SourcesFile,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(cfg)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.HistoryStore,
		"path":                     cfg.HistoryPath,
		"report_ttl_seconds":       int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
	})

	fetcher := feeds.NewFetcher(feeds.DefaultHTTPClient(cfg.HTTPTimeout), cfg.UserAgent)
	return newPipeline(cfg, sources, collector.NewService(fetcher, log), fanout, store, log), nil
}

func newPipeline(cfg *config.Config, sources []feeds.Source, coll *collector.Service, fanout *publishers.Fanout, store storage.Store, log logger.Logger) *Pipeline {
	if store == nil {
		store, _ = storage.NewStore(storage.TypeNone, "", storage.Options{})
	}
	return &Pipeline{
		cfg:       cfg,
		sources:   sources,
		collector: coll,
		notifier:  notifier.New(fanout, log),
		fanout:    fanout,
		store:     store,
		log:       log,
		now:       time.Now,
	}
}

// OpenStore opens the history backend selected by configuration.
func OpenStore(cfg *config.Config) (storage.Store, error) {
	return storage.NewStore(cfg.HistoryStore, cfg.HistoryPath, storage.Options{
		ReportTTL:       cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	})
}

// buildFanout combines the Feishu webhook with any publishers from PUBLISHERS_FILE.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	var pubCfgs []publishers.PublisherConfig
	if cfg.DeliveryConfigured() {
		pubCfgs = append(pubCfgs, publishers.FeishuConfig(cfg.FeishuWebhook, int(cfg.HTTPTimeoutSeconds)))
	} else {
		log.WarnObj("FEISHU_WEBHOOK not set; feishu delivery disabled", "publishers_meta", map[string]any{
			"publishers_file": cfg.PublishersFile,
		})
	}
	if cfg.PublishersFile != "" {
		extra, err := publishers.LoadConfigs(cfg.PublishersFile)
		if err != nil {
			return nil, fmt.Errorf("load publishers file: %w", err)
		}
		pubCfgs = append(pubCfgs, extra...)
	}

	publisherReg, err := publishers.NewConfigRegistry(pubCfgs)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Sources returns the sources polled on each pass.
func (p *Pipeline) Sources() []feeds.Source {
	if p == nil {
		return nil
	}
	out := make([]feeds.Source, len(p.sources))
	copy(out, p.sources)
	return out
}

// RunOnce performs one collect and notify pass. Per-source and per-item
// failures end up in the report; they never abort the pass.
func (p *Pipeline) RunOnce(ctx context.Context) (domain.RunReport, error) {
	if p == nil || p.collector == nil {
		return domain.RunReport{}, fmt.Errorf("pipeline is not initialized")
	}

	report := domain.RunReport{StartedAt: p.now().UTC(), Sources: len(p.sources)}
	p.log.InfoObj("run started", "run_meta", map[string]any{
		"sources_count":    len(p.sources),
		"publishers_count": p.fanout.Size(),
		"window":           p.cfg.FreshnessWindow.String(),
		"started_at":       report.StartedAt,
	})

	batch := p.collector.CollectAll(ctx, p.sources, p.cfg.FreshnessWindow)
	report.Collected = len(batch.Items)
	report.FailedFeeds = batch.FailedSources()

	items := batch.Items
	if p.cfg.Dedupe {
		items = collector.Dedupe(items)
	}
	report.Unique = len(items)

	sum := p.notifier.NotifyAll(ctx, items)
	report.Attempted = sum.Attempted
	report.Delivered = sum.Delivered
	report.Failed = sum.Failed
	report.Skipped = sum.Skipped
	report.FinishedAt = p.now().UTC()

	p.log.InfoObj("run completed", "run_report", map[string]any{
		"sources":      report.Sources,
		"failed_feeds": report.FailedFeeds,
		"collected":    report.Collected,
		"unique":       report.Unique,
		"attempted":    report.Attempted,
		"delivered":    report.Delivered,
		"failed":       report.Failed,
		"skipped":      report.Skipped,
		"elapsed_ms":   report.Elapsed().Milliseconds(),
	})

	if err := p.store.SaveRun(report); err != nil {
		p.log.ErrorObj("run report save failed", "error", err)
	}
	return report, ctx.Err()
}

// Watch runs a pass immediately and then once per freshness window until ctx is cancelled.
func (p *Pipeline) Watch(ctx context.Context) error {
	if p == nil || p.collector == nil {
		return fmt.Errorf("pipeline is not initialized")
	}

	p.log.InfoObj("watch loop starting", "watch_state", map[string]any{
		"sources_count":    len(p.sources),
		"publishers_count": p.fanout.Size(),
		"interval":         p.cfg.FreshnessWindow.String(),
	})

	if _, err := p.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.log.ErrorObj("initial run failed", "error", err)
	}

	ticker := time.NewTicker(p.cfg.FreshnessWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("watch loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if _, err := p.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				p.log.ErrorObj("scheduled run failed", "error", err)
			}
		}
	}
}

// History returns the most recent stored run reports.
func (p *Pipeline) History(limit int) ([]domain.RunReport, error) {
	if p == nil || p.store == nil {
		return nil, nil
	}
	return p.store.RecentRuns(limit)
}

// Close releases publisher clients and the history store.
func (p *Pipeline) Close() error {
	if p == nil {
		return nil
	}
	return errors.Join(p.fanout.Close(), p.store.Close())
}
