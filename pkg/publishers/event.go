package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	SourceID    string          `json:"source_id"`
	Item        domain.FeedItem `json:"item"`
	Text        string          `json:"text"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent constructs an Event for the given item and rendered message text.
func NewEvent(item domain.FeedItem, text string) Event {
	return Event{
		SourceID:    item.Source,
		Item:        item,
		Text:        text,
		CollectedAt: time.Now().UTC(),
	}
}
