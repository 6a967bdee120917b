package feeds

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

var feedLinkSelectors = []string{
	`link[rel="alternate"][type="application/rss+xml"]`,
	`link[rel="alternate"][type="application/atom+xml"]`,
	`link[rel="alternate"][type="application/feed+json"]`,
}

// discoverFeedURL returns the first alternate feed advertised by an HTML page,
// resolved against pageURL.
func discoverFeedURL(body []byte, pageURL string) (string, bool) {
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	for _, sel := range feedLinkSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		href, ok := node.Attr("href")
		if !ok {
			continue
		}
		if resolved := resolveURL(href, pageURL); resolved != "" && resolved != pageURL {
			return resolved, true
		}
	}
	return "", false
}

func resolveURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref.String()
	}
	return baseURL.ResolveReference(ref).String()
}
