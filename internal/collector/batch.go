package collector

import (
	"sort"
	"strings"

	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
)

// NormalizeLink builds the dedup key for a link.
func NormalizeLink(link string) string {
	return strings.ToLower(strings.TrimSpace(link))
}

// SortByPublished orders items by publish time ascending; ties keep their order.
func SortByPublished(items []domain.FeedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.Before(items[j].PublishedAt)
	})
}

// Dedupe keeps the first item for every normalized link, preserving order.
func Dedupe(items []domain.FeedItem) []domain.FeedItem {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		key := NormalizeLink(item.Link)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
