package feeds

import "time"

// Feed is a parsed feed, reduced to the fields the collector reads.
type Feed struct {
	Title     string
	Link      string
	Updated   *time.Time
	Published *time.Time
	Entries   []Entry
}

// Entry is one parsed feed item. Timestamps are nil when absent or unparseable.
type Entry struct {
	Title     string
	Link      string
	Content   string
	Summary   string
	Published *time.Time
	Updated   *time.Time
}
