// Package trends fetches trending health topics from an external trends page.
// The fetch is best-effort: a failed request or unparseable page yields an
// error and the caller renders an empty trend list, never a broken page.
package trends

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultURL = "https://trends.google.com/trending?geo=US&category=7&hours=168"

// Trend is one scraped trending topic.
type Trend struct {
	Name string
	Stat string
	Link string
}

// Client fetches and parses the trends page.
type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a Client for the default trends page. A non-empty url
// overrides the target, which tests use to point at a fake server.
func NewClient(url string) *Client {
	if url == "" {
		url = defaultURL
	}
	return &Client{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
}

// Fetch retrieves the current trending topics.
func (c *Client) Fetch(ctx context.Context) ([]Trend, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trends request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends fetch failed with status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("trends parse error: %w", err)
	}

	var items []Trend
	doc.Find("div.feed-item").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find("div.feed-item-title").Text())
		if name == "" {
			return
		}
		stat := strings.TrimSpace(s.Find("div.feed-item-stats").Text())
		if stat == "" {
			stat = "N/A"
		}
		link, _ := s.Find("a[href]").First().Attr("href")
		if strings.HasPrefix(link, "/") {
			link = "https://trends.google.com" + link
		}
		items = append(items, Trend{Name: name, Stat: stat, Link: link})
	})

	return items, nil
}

// Filter returns the trends whose name contains query, case-insensitively.
// An empty query returns the input unchanged.
func Filter(items []Trend, query string) []Trend {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	var out []Trend
	for _, t := range items {
		if strings.Contains(strings.ToLower(t.Name), q) {
			out = append(out, t)
		}
	}
	return out
}
