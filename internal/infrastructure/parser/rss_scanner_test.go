package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsRanker/internal/scanner"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>CNBC Markets</title>
    <link>https://www.cnbc.com</link>
    <description>Markets</description>
    <item>
      <title>Oil giant to acquire shale producer</title>
      <link>https://example.com/oil</link>
      <description><![CDATA[<p>The <em>stock market</em> cheered the deal.</p>]]></description>
      <pubDate>Tue, 04 Mar 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Weekend weather outlook</title>
      <link>https://example.com/weather</link>
      <description>Sunny.</description>
      <pubDate>Tue, 04 Mar 2025 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://example.com/untitled</link>
      <description>Dropped for missing title.</description>
    </item>
  </channel>
</rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRSSScannerScan(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t)
	sc := NewRSSScanner(server.Client(), nil)

	articles, err := sc.Scan(context.Background(), scanner.Request{
		SiteName: "markets",
		Feeds:    []scanner.Feed{{URL: server.URL + "/rss"}},
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Source != "CNBC Markets" {
		t.Fatalf("source should fall back to feed title, got %q", first.Source)
	}
	if first.Description != "The stock market cheered the deal." {
		t.Fatalf("unexpected description: %q", first.Description)
	}
	want := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("unexpected published date: %v", first.PublishedAt)
	}
	if first.URL != "https://example.com/oil" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
}

func TestRSSScannerMatchQuery(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t)
	sc := NewRSSScanner(server.Client(), nil)

	articles, err := sc.Scan(context.Background(), scanner.Request{
		Query:    "Stock Market",
		SiteName: "markets",
		Feeds:    []scanner.Feed{{Name: "CNBC", URL: server.URL}},
		Options:  map[string]string{"matchQuery": "true"},
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(articles) != 1 {
		t.Fatalf("expected 1 matching article, got %d", len(articles))
	}
	if articles[0].Source != "CNBC" {
		t.Fatalf("configured feed name should win, got %q", articles[0].Source)
	}
}

func TestRSSScannerRequiresFeeds(t *testing.T) {
	t.Parallel()

	sc := NewRSSScanner(nil, nil)
	if _, err := sc.Scan(context.Background(), scanner.Request{SiteName: "empty"}); err == nil {
		t.Fatalf("expected error without feeds")
	}
}
