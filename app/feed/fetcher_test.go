package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Source</title>
    <link>https://example.com</link>
    <item>
      <title>First Article</title>
      <link>https://example.com/first</link>
      <description>&lt;p&gt;First &lt;b&gt;summary&lt;/b&gt;&lt;/p&gt;</description>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <enclosure url="https://example.com/first.jpg" type="image/jpeg" length="1000"/>
    </item>
    <item>
      <title></title>
      <link>https://example.com/untitled</link>
      <description>No title here</description>
    </item>
    <item>
      <title>Second Article</title>
      <link>https://example.com/second</link>
      <description>Second summary</description>
    </item>
  </channel>
</rss>`

func TestFetchParsesEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "TechPlus/1.0" {
			t.Errorf("Expected User-Agent 'TechPlus/1.0', got '%s'", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testRSS))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "TechPlus/1.0")

	entries, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}

	// The untitled item is skipped
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Title != "First Article" {
		t.Errorf("Expected title 'First Article', got '%s'", first.Title)
	}
	if first.Link != "https://example.com/first" {
		t.Errorf("Expected link 'https://example.com/first', got '%s'", first.Link)
	}
	if strings.Contains(first.Summary, "<") {
		t.Errorf("Expected HTML stripped from summary, got '%s'", first.Summary)
	}
	if first.ImageURL != "https://example.com/first.jpg" {
		t.Errorf("Expected enclosure image URL, got '%s'", first.ImageURL)
	}
	if first.PublishedAt.IsZero() {
		t.Error("Expected published time to be set")
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "TechPlus/1.0")

	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected FetchError, got %T", err)
	}
}

func TestFetchMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "TechPlus/1.0")

	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for malformed payload")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError, got %T", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(testRSS))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "TechPlus/1.0")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := fetcher.Fetch(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected error for timed out fetch")
	}

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Errorf("Expected TimeoutError, got %T", err)
	}
}

func TestCleanSummary(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello world", "hello world"},
		{"tags stripped", "<p>hello <b>world</b></p>", "hello world"},
		{"whitespace collapsed", "hello\n\n  world", "hello world"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanSummary(tt.input)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestCleanSummaryCapsLength(t *testing.T) {
	long := strings.Repeat("a", 1000)
	result := cleanSummary(long)
	if len([]rune(result)) != summaryMaxRunes {
		t.Errorf("Expected summary capped at %d runes, got %d", summaryMaxRunes, len([]rune(result)))
	}
}
