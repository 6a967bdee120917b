package feeds

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samvad-hq/samvad-feed-notifier/pkg/httpclient"
)

// DefaultHTTPClient returns the resty-backed client used for feed downloads.
func DefaultHTTPClient(timeout time.Duration) HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return httpclient.NewRestyClient(timeout)
}

// feedFetcher downloads a source with the shared HTTP client and parses it with gofeed.
type feedFetcher struct {
	client    HTTPClient
	userAgent string
}

// NewFetcher builds a Fetcher. userAgent is sent unless a source overrides it.
func NewFetcher(client HTTPClient, userAgent string) Fetcher {
	if client == nil {
		client = DefaultHTTPClient(0)
	}
	return &feedFetcher{client: client, userAgent: userAgent}
}

// Fetch downloads and parses the source. When the URL serves an HTML page that
// advertises an alternate feed, that feed is fetched instead.
func (f *feedFetcher) Fetch(ctx context.Context, src Source) (*Feed, error) {
	if strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("source %q url is empty", src.ID)
	}

	headers := Headers(src, f.userAgent)

	body, err := download(ctx, f.client, src.URL, headers)
	if err != nil {
		return nil, err
	}

	feed, err := Parse(body)
	if err == nil {
		return feed, nil
	}
	if !errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return nil, err
	}

	alt, ok := discoverFeedURL(body, src.URL)
	if !ok {
		return nil, fmt.Errorf("%s is not a feed and advertises no alternate feed: %w", src.URL, err)
	}
	body, err = download(ctx, f.client, alt, headers)
	if err != nil {
		return nil, fmt.Errorf("discovered feed %s: %w", alt, err)
	}
	feed, err = Parse(body)
	if err != nil {
		return nil, fmt.Errorf("discovered feed %s: %w", alt, err)
	}
	return feed, nil
}

// Parse decodes RSS, Atom or JSON Feed content.
func Parse(body []byte) (*Feed, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("feed content is empty")
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return convert(parsed), nil
}

func convert(gf *gofeed.Feed) *Feed {
	feed := &Feed{
		Title:     gf.Title,
		Link:      gf.Link,
		Updated:   gf.UpdatedParsed,
		Published: gf.PublishedParsed,
		Entries:   make([]Entry, 0, len(gf.Items)),
	}
	for _, item := range gf.Items {
		if item == nil {
			continue
		}
		feed.Entries = append(feed.Entries, Entry{
			Title:     item.Title,
			Link:      item.Link,
			Content:   item.Content,
			Summary:   item.Description,
			Published: item.PublishedParsed,
			Updated:   item.UpdatedParsed,
		})
	}
	return feed
}

func download(ctx context.Context, client HTTPClient, url string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d body: %s", url, resp.StatusCode(), responseSnippet(body))
	}
	return body, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
