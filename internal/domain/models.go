package domain

import "time"

// FeedItem is a fresh entry extracted from a feed during one run.
type FeedItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
}

// RunReport summarizes a single collect-and-notify pass.
type RunReport struct {
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Sources     int       `json:"sources"`
	FailedFeeds []string  `json:"failed_feeds,omitempty"`
	Collected   int       `json:"collected"`
	Unique      int       `json:"unique"`
	Attempted   int       `json:"attempted"`
	Delivered   int       `json:"delivered"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
}

// Elapsed returns how long the run took.
func (r RunReport) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
