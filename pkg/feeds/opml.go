package feeds

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

type opmlDocument struct {
	XMLName xml.Name `xml:"opml"`
	Body    struct {
		Outlines []opmlOutline `xml:"outline"`
	} `xml:"body"`
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr"`
	XMLURL   string        `xml:"xmlUrl,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

// parseOPML flattens nested outlines into sources, depth first.
func parseOPML(data []byte) ([]Source, error) {
	var doc opmlDocument
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode opml sources: %w", err)
	}
	return flattenOutlines(doc.Body.Outlines, nil), nil
}

func flattenOutlines(outlines []opmlOutline, out []Source) []Source {
	for _, o := range outlines {
		if u := strings.TrimSpace(o.XMLURL); u != "" {
			name := strings.TrimSpace(o.Title)
			if name == "" {
				name = strings.TrimSpace(o.Text)
			}
			out = append(out, Source{URL: u, Name: name})
		}
		out = flattenOutlines(o.Outlines, out)
	}
	return out
}
