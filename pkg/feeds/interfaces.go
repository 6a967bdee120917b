package feeds

import (
	"context"

	"github.com/samvad-hq/samvad-feed-notifier/pkg/httpclient"
)

// Fetcher retrieves and parses the feed behind a source.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) (*Feed, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within feeds.
type HTTPClient = httpclient.Client
