package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
	"github.com/samvad-hq/samvad-feed-notifier/pkg/feeds"
)

var t0 = time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

func at(offset time.Duration) *time.Time {
	t := t0.Add(offset)
	return &t
}

// fakeFetcher returns preset feeds per source id, or an error.
type fakeFetcher struct {
	feeds map[string]*feeds.Feed
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, src feeds.Source) (*feeds.Feed, error) {
	f.calls = append(f.calls, src.ID)
	if err := f.errs[src.ID]; err != nil {
		return nil, err
	}
	feed, ok := f.feeds[src.ID]
	if !ok {
		return nil, errors.New("unknown source")
	}
	return feed, nil
}

func newTestService(f feeds.Fetcher) *Service {
	svc := NewService(f, nil)
	svc.now = func() time.Time { return t0.Add(24 * time.Hour) }
	return svc
}

func TestFetchFreshWindowScenario(t *testing.T) {
	f := &fakeFetcher{feeds: map[string]*feeds.Feed{
		"s": {
			Updated: at(0),
			Entries: []feeds.Entry{
				{Title: "recent", Link: "https://x/recent", Published: at(-100 * time.Second)},
				{Title: "stale", Link: "https://x/stale", Published: at(-4000 * time.Second)},
				{Title: "future", Link: "https://x/future", Published: at(50 * time.Second)},
			},
		},
	}}

	res := newTestService(f).FetchFresh(context.Background(), feeds.Source{ID: "s"}, time.Hour)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Total != 3 {
		t.Fatalf("Total = %d, want 3", res.Total)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 fresh items, got %d: %#v", len(res.Items), res.Items)
	}
	if res.Items[0].Title != "recent" || res.Items[1].Title != "future" {
		t.Fatalf("unexpected items %#v", res.Items)
	}
	for _, item := range res.Items {
		if item.Source != "s" {
			t.Fatalf("item source = %q", item.Source)
		}
	}
}

func TestIsFreshBoundary(t *testing.T) {
	cases := []struct {
		name      string
		published time.Time
		want      bool
	}{
		{"just inside", t0.Add(-time.Hour + time.Second), true},
		{"exactly window", t0.Add(-time.Hour), false},
		{"outside", t0.Add(-time.Hour - time.Second), false},
		{"same instant", t0, true},
		{"future dated", t0.Add(48 * time.Hour), true},
	}
	for _, tc := range cases {
		if got := IsFresh(t0, tc.published, time.Hour); got != tc.want {
			t.Errorf("%s: IsFresh = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestReferenceTimeFallbacks(t *testing.T) {
	now := func() time.Time { return t0.Add(time.Minute + 300*time.Millisecond) }

	if got := ReferenceTime(&feeds.Feed{Updated: at(-time.Hour), Published: at(-2 * time.Hour)}, now); !got.Equal(t0.Add(-time.Hour)) {
		t.Fatalf("expected updated time, got %v", got)
	}
	if got := ReferenceTime(&feeds.Feed{Published: at(-2 * time.Hour)}, now); !got.Equal(t0.Add(-2 * time.Hour)) {
		t.Fatalf("expected published time, got %v", got)
	}
	if got := ReferenceTime(&feeds.Feed{}, now); !got.Equal(t0.Add(time.Minute)) {
		t.Fatalf("expected truncated wall clock, got %v", got)
	}
}

func TestFetchFreshUsesWallClockWithoutFeedTimestamps(t *testing.T) {
	f := &fakeFetcher{feeds: map[string]*feeds.Feed{
		"s": {Entries: []feeds.Entry{
			{Link: "https://x/old", Published: at(0)},
			{Link: "https://x/new", Published: at(24*time.Hour - time.Minute)},
		}},
	}}

	res := newTestService(f).FetchFresh(context.Background(), feeds.Source{ID: "s"}, time.Hour)
	if len(res.Items) != 1 || res.Items[0].Link != "https://x/new" {
		t.Fatalf("unexpected items %#v", res.Items)
	}
}

func TestFetchFreshSkipsEntriesWithoutTimestamps(t *testing.T) {
	f := &fakeFetcher{feeds: map[string]*feeds.Feed{
		"s": {
			Updated: at(0),
			Entries: []feeds.Entry{
				{Link: "https://x/undated"},
				{Link: "https://x/updated-only", Updated: at(-time.Minute)},
				{Link: "https://x/zero", Published: &time.Time{}},
			},
		},
	}}

	res := newTestService(f).FetchFresh(context.Background(), feeds.Source{ID: "s"}, time.Hour)
	if res.Err != nil {
		t.Fatalf("missing timestamps must not surface as error: %v", res.Err)
	}
	if res.Skipped != 2 {
		t.Fatalf("Skipped = %d, want 2", res.Skipped)
	}
	if len(res.Items) != 1 || res.Items[0].Link != "https://x/updated-only" {
		t.Fatalf("unexpected items %#v", res.Items)
	}
	for _, item := range res.Items {
		if item.PublishedAt.IsZero() {
			t.Fatalf("item without PublishedAt leaked: %#v", item)
		}
	}
}

func TestFetchFreshPrefersPublishedOverUpdated(t *testing.T) {
	f := &fakeFetcher{feeds: map[string]*feeds.Feed{
		"s": {
			Updated: at(0),
			Entries: []feeds.Entry{
				{Link: "https://x/a", Published: at(-3 * time.Hour), Updated: at(-time.Minute)},
			},
		},
	}}

	res := newTestService(f).FetchFresh(context.Background(), feeds.Source{ID: "s"}, time.Hour)
	if len(res.Items) != 0 {
		t.Fatalf("published time should win over updated, got %#v", res.Items)
	}
}

func TestFetchFreshContentFallback(t *testing.T) {
	f := &fakeFetcher{feeds: map[string]*feeds.Feed{
		"s": {
			Updated: at(0),
			Entries: []feeds.Entry{
				{Link: "a", Content: "full", Summary: "short", Published: at(-time.Second)},
				{Link: "b", Summary: "short", Published: at(-time.Second)},
				{Link: "c", Published: at(-time.Second)},
			},
		},
	}}

	res := newTestService(f).FetchFresh(context.Background(), feeds.Source{ID: "s"}, time.Hour)
	want := []string{"full", "short", ""}
	for i, item := range res.Items {
		if item.Content != want[i] {
			t.Errorf("item %d content = %q, want %q", i, item.Content, want[i])
		}
	}
}

func TestFetchFreshReportsFetchError(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"bad": errors.New("dns failure")}}

	res := newTestService(f).FetchFresh(context.Background(), feeds.Source{ID: "bad"}, time.Hour)
	if !errors.Is(res.Err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch kind, got %v", res.Err)
	}
	var fe *domain.FetchError
	if !errors.As(res.Err, &fe) || fe.Source != "bad" {
		t.Fatalf("expected FetchError for source bad, got %#v", res.Err)
	}
	if len(res.Items) != 0 {
		t.Fatalf("failed source must contribute no items")
	}
}

func TestCollectAllIsolatesFailuresAndSorts(t *testing.T) {
	f := &fakeFetcher{
		errs: map[string]error{"a": errors.New("timeout")},
		feeds: map[string]*feeds.Feed{
			"b": {Updated: at(0), Entries: []feeds.Entry{
				{Title: "b-late", Link: "b1", Published: at(-10 * time.Second)},
				{Title: "b-early", Link: "b2", Published: at(-30 * time.Second)},
			}},
			"c": {Updated: at(0), Entries: []feeds.Entry{
				{Title: "c-mid", Link: "c1", Published: at(-20 * time.Second)},
			}},
		},
	}

	batch := newTestService(f).CollectAll(context.Background(), []feeds.Source{{ID: "a"}, {ID: "b"}, {ID: "c"}}, time.Hour)

	if got := f.calls; len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("sources must be polled in order, got %v", got)
	}
	if failed := batch.FailedSources(); len(failed) != 1 || failed[0] != "a" {
		t.Fatalf("FailedSources = %v", failed)
	}
	titles := make([]string, 0, len(batch.Items))
	for _, item := range batch.Items {
		titles = append(titles, item.Title)
	}
	want := []string{"b-early", "c-mid", "b-late"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
	}
}

func TestCollectAllStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeFetcher{}
	batch := newTestService(f).CollectAll(ctx, []feeds.Source{{ID: "a"}}, time.Hour)
	if len(f.calls) != 0 || len(batch.Results) != 0 {
		t.Fatalf("expected no fetches after cancellation, got %v", f.calls)
	}
}

func TestFetchFreshUninitialized(t *testing.T) {
	var svc *Service
	res := svc.FetchFresh(context.Background(), feeds.Source{ID: "x"}, time.Hour)
	if !errors.Is(res.Err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", res.Err)
	}
}
