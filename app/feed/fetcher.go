package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const summaryMaxRunes = 500

// Fetcher retrieves and parses one feed's entries. It is stateless: a URL
// goes in, a list of candidate entries comes out. Retry policy belongs to
// the caller.
type Fetcher struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	userAgent  string
}

// NewFetcher creates a new feed fetcher.
func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		userAgent:  userAgent,
	}
}

// Fetch retrieves the feed at url and returns its parseable entries. Entries
// missing a title or link are skipped so one bad item never discards the
// rest of the feed.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Entry, error) {
	data, err := f.retrieve(ctx, url)
	if err != nil {
		return nil, err
	}

	parsed, err := f.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{URL: url, Err: err}
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entry, ok := normalizeEntry(item)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (f *Fetcher) retrieve(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{URL: url, Err: err}
		}
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{URL: url, Err: err}
		}
		return nil, &FetchError{URL: url, Err: err}
	}

	return data, nil
}

func normalizeEntry(item *gofeed.Item) (Entry, bool) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return Entry{}, false
	}

	entry := Entry{
		Title:   title,
		Link:    link,
		Summary: cleanSummary(item.Description),
	}
	if entry.Summary == "" {
		entry.Summary = cleanSummary(item.Content)
	}

	if item.PublishedParsed != nil {
		entry.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		entry.PublishedAt = *item.UpdatedParsed
	} else {
		entry.PublishedAt = time.Now().UTC()
	}

	entry.ImageURL = extractImage(item)

	return entry, true
}

func extractImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}
		if strings.HasPrefix(enclosure.Type, "image/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	return ""
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// cleanSummary strips markup from a feed summary and caps its length.
func cleanSummary(raw string) string {
	text := htmlTagPattern.ReplaceAllString(raw, " ")
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > summaryMaxRunes {
		return string(runes[:summaryMaxRunes])
	}
	return text
}
