package collector

import (
	"time"

	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
	"github.com/samvad-hq/samvad-feed-notifier/pkg/feeds"
)

// ReferenceTime is the feed's updated time, else its published time, else now.
func ReferenceTime(feed *feeds.Feed, now func() time.Time) time.Time {
	if feed != nil {
		if t := firstTime(feed.Updated, feed.Published); t != nil {
			return t.Truncate(time.Second)
		}
	}
	if now == nil {
		now = time.Now
	}
	return now().Truncate(time.Second)
}

// EntryTime is the entry's published time, else its updated time.
func EntryTime(e feeds.Entry) (time.Time, bool) {
	t := firstTime(e.Published, e.Updated)
	if t == nil {
		return time.Time{}, false
	}
	return t.Truncate(time.Second), true
}

// IsFresh reports whether reference-published is below window.
// Entries dated after the reference time have a negative difference and count as fresh.
func IsFresh(reference, published time.Time, window time.Duration) bool {
	return reference.Sub(published) < window
}

func freshItems(sourceID string, feed *feeds.Feed, reference time.Time, window time.Duration) ([]domain.FeedItem, int) {
	var (
		items   []domain.FeedItem
		skipped int
	)
	for _, e := range feed.Entries {
		published, ok := EntryTime(e)
		if !ok {
			skipped++
			continue
		}
		if !IsFresh(reference, published, window) {
			continue
		}
		items = append(items, domain.FeedItem{
			Title:       e.Title,
			Link:        e.Link,
			Content:     entryContent(e),
			PublishedAt: published,
			Source:      sourceID,
		})
	}
	return items, skipped
}

func entryContent(e feeds.Entry) string {
	if e.Content != "" {
		return e.Content
	}
	return e.Summary
}

func firstTime(candidates ...*time.Time) *time.Time {
	for _, t := range candidates {
		if t != nil && !t.IsZero() {
			return t
		}
	}
	return nil
}
