// Package feed fetches RSS 2.0 and Atom feeds over HTTP and converts
// them into domain entries.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.FeedParser = (*Fetcher)(nil)

const (
	defaultTimeout = 30 * time.Second
	maxFeedBytes   = 10 << 20
)

// Fetcher retrieves feeds over HTTP, one goroutine per URL.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a feed fetcher with the default HTTP timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// NewFetcherWithClient creates a fetcher using a custom HTTP client.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchMany fetches all URLs concurrently, sending exactly one result
// per URL before closing the channel.
func (f *Fetcher) FetchMany(ctx context.Context, urls []string) <-chan driven.FetchResult {
	results := make(chan driven.FetchResult, len(urls))

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			entries, err := f.fetch(ctx, url)
			results <- driven.FetchResult{URL: url, Entries: entries, Err: err}
		}(url)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// fetch retrieves and parses a single feed URL.
func (f *Fetcher) fetch(ctx context.Context, url string) ([]domain.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "elfeed-ai/1.0")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("reading feed body: %w", err)
	}

	entries, err := parseFeed(body, url)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return entries, nil
}

// rssFeed models the subset of RSS 2.0 we extract.
type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Encoded     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
}

// atomFeed models the subset of Atom we extract.
type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Links   []atomLink `xml:"link"`
	Updated string     `xml:"updated"`
	Content string     `xml:"content"`
	Summary string     `xml:"summary"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// parseFeed detects the feed flavour from the document element.
func parseFeed(data []byte, feedURL string) ([]domain.Entry, error) {
	var rss rssFeed
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return rssEntries(rss, feedURL), nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(data, &atom); err == nil && len(atom.Entries) > 0 {
		return atomEntries(atom, feedURL), nil
	}

	// Distinguish empty feeds from unparseable documents.
	var probe struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("not valid XML: %w", err)
	}
	switch probe.XMLName.Local {
	case "rss", "feed":
		return nil, nil
	default:
		return nil, fmt.Errorf("unrecognised feed format %q", probe.XMLName.Local)
	}
}

func rssEntries(feed rssFeed, feedURL string) []domain.Entry {
	now := time.Now().UTC()
	entries := make([]domain.Entry, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		content := item.Encoded
		if content == "" {
			content = item.Description
		}
		entries = append(entries, domain.Entry{
			ID:        uuid.NewString(),
			FeedTitle: feed.Channel.Title,
			FeedURL:   feedURL,
			Title:     item.Title,
			Link:      item.Link,
			Published: parseFeedTime(item.PubDate),
			Content:   content,
			FetchedAt: now,
		})
	}
	return entries
}

func atomEntries(feed atomFeed, feedURL string) []domain.Entry {
	now := time.Now().UTC()
	entries := make([]domain.Entry, 0, len(feed.Entries))
	for _, item := range feed.Entries {
		content := item.Content
		if content == "" {
			content = item.Summary
		}
		entries = append(entries, domain.Entry{
			ID:        uuid.NewString(),
			FeedTitle: feed.Title,
			FeedURL:   feedURL,
			Title:     item.Title,
			Link:      item.alternateLink(),
			Published: parseFeedTime(item.Updated),
			Content:   content,
			FetchedAt: now,
		})
	}
	return entries
}

// alternateLink prefers rel="alternate", falling back to the first link.
func (e atomEntry) alternateLink() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" || l.Rel == "" {
			return l.Href
		}
	}
	if len(e.Links) > 0 {
		return e.Links[0].Href
	}
	return ""
}

// feedTimeFormats covers the date layouts seen in the wild. RFC1123Z
// first because RSS pubDate overwhelmingly uses it.
var feedTimeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02",
}

func parseFeedTime(value string) time.Time {
	for _, layout := range feedTimeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
