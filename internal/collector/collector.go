package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
	"github.com/samvad-hq/samvad-feed-notifier/internal/logger"
	"github.com/samvad-hq/samvad-feed-notifier/pkg/feeds"
)

// Service fetches sources one after another and keeps entries inside the freshness window.
type Service struct {
	fetcher feeds.Fetcher
	now     func() time.Time
	log     logger.Logger
}

// NewService wires a collector around a feed fetcher.
func NewService(fetcher feeds.Fetcher, log logger.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		now:     time.Now,
		log:     logger.Ensure(log),
	}
}

// FetchResult is the outcome of polling one source.
type FetchResult struct {
	Source  string
	Items   []domain.FeedItem
	Total   int // entries in the parsed feed
	Skipped int // entries without a usable timestamp
	Err     error
}

// Batch is the combined, time-ordered output of one collection pass.
type Batch struct {
	Items   []domain.FeedItem
	Results []FetchResult
}

// FailedSources lists the ids of sources whose fetch failed.
func (b Batch) FailedSources() []string {
	var out []string
	for _, r := range b.Results {
		if r.Err != nil {
			out = append(out, r.Source)
		}
	}
	return out
}

// FetchFresh polls one source. Failures are reported in the result, never returned.
func (s *Service) FetchFresh(ctx context.Context, src feeds.Source, window time.Duration) FetchResult {
	res := FetchResult{Source: src.ID}
	if s == nil || s.fetcher == nil {
		res.Err = &domain.FetchError{Source: src.ID, Err: fmt.Errorf("collector is not initialized")}
		return res
	}

	s.log.DebugObj("fetching feed", "feed_source", map[string]any{
		"source_id": src.ID,
		"url":       src.URL,
	})

	feed, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		res.Err = &domain.FetchError{Source: src.ID, Err: err}
		s.log.ErrorObj("feed fetch failed", "feed_error", map[string]any{
			"source_id": src.ID,
			"url":       src.URL,
			"error":     err.Error(),
		})
		return res
	}

	res.Total = len(feed.Entries)
	res.Items, res.Skipped = freshItems(src.ID, feed, ReferenceTime(feed, s.now), window)
	if res.Skipped > 0 {
		s.log.DebugObj("entries skipped", "feed_skip", map[string]any{
			"source_id": src.ID,
			"count":     res.Skipped,
			"reason":    domain.ErrMissingTimestamp.Error(),
		})
	}

	s.log.InfoObj("feed parsed", "feed_result", map[string]any{
		"source_id":   src.ID,
		"entries":     res.Total,
		"fresh":       len(res.Items),
		"skipped":     res.Skipped,
		"window_secs": int64(window / time.Second),
	})
	return res
}

// CollectAll polls every source in order and returns the fresh items sorted by publish time.
func (s *Service) CollectAll(ctx context.Context, sources []feeds.Source, window time.Duration) Batch {
	batch := Batch{Results: make([]FetchResult, 0, len(sources))}

	for _, src := range sources {
		select {
		case <-ctx.Done():
			s.log.WarnObj("collection interrupted", "collect_state", map[string]any{
				"remaining_sources": len(sources) - len(batch.Results),
				"reason":            ctx.Err().Error(),
			})
			SortByPublished(batch.Items)
			return batch
		default:
		}

		res := s.FetchFresh(ctx, src, window)
		batch.Results = append(batch.Results, res)
		batch.Items = append(batch.Items, res.Items...)
	}

	SortByPublished(batch.Items)
	return batch
}
