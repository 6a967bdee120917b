package collector

import (
	"testing"
	"time"

	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
)

func TestNormalizeLink(t *testing.T) {
	if got := NormalizeLink("  HTTP://Example.com/a \n"); got != "http://example.com/a" {
		t.Fatalf("NormalizeLink = %q", got)
	}
}

func TestDedupeCollapsesNormalizedLinks(t *testing.T) {
	items := []domain.FeedItem{
		{Title: "first", Link: "HTTP://Example.com/a "},
		{Title: "other", Link: "http://example.com/b"},
		{Title: "second", Link: "http://example.com/a"},
	}

	out := Dedupe(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].Title != "first" || out[1].Title != "other" {
		t.Fatalf("first occurrence must win and order must hold, got %#v", out)
	}
	if out[0].Link != "HTTP://Example.com/a " {
		t.Fatalf("original link must be kept verbatim, got %q", out[0].Link)
	}
}

func TestDedupeEmpty(t *testing.T) {
	if out := Dedupe(nil); len(out) != 0 {
		t.Fatalf("expected empty output")
	}
}

func TestSortByPublishedIsStable(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.FeedItem{
		{Title: "tie-1", PublishedAt: base.Add(time.Minute)},
		{Title: "earliest", PublishedAt: base},
		{Title: "tie-2", PublishedAt: base.Add(time.Minute)},
		{Title: "tie-3", PublishedAt: base.Add(time.Minute)},
	}

	SortByPublished(items)

	want := []string{"earliest", "tie-1", "tie-2", "tie-3"}
	for i, w := range want {
		if items[i].Title != w {
			t.Fatalf("position %d = %q, want %q (all: %#v)", i, items[i].Title, w, items)
		}
	}
	for i := 1; i < len(items); i++ {
		if items[i].PublishedAt.Before(items[i-1].PublishedAt) {
			t.Fatalf("output not non-decreasing at %d", i)
		}
	}
}

func TestSortThenDedupeKeepsEarliest(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.FeedItem{
		{Title: "later copy", Link: "https://x/a", PublishedAt: base.Add(time.Hour)},
		{Title: "earlier copy", Link: "https://X/a", PublishedAt: base},
	}

	SortByPublished(items)
	out := Dedupe(items)
	if len(out) != 1 || out[0].Title != "earlier copy" {
		t.Fatalf("unexpected dedupe result %#v", out)
	}
}
