package crawler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/raysh454/reconspider/internal/crawler"
	"github.com/raysh454/reconspider/internal/interfaces"
)

type fakePage struct {
	body     string
	finalURL string
	status   int
}

type fakeFetcher struct {
	pages map[string]fakePage
	calls []string
}

func (f *fakeFetcher) Get(_ context.Context, url string, _ http.Header, _ int, _ bool) (*interfaces.FetchResult, error) {
	f.calls = append(f.calls, url)
	p, ok := f.pages[url]
	if !ok {
		return &interfaces.FetchResult{Status: 404}, nil
	}
	final := p.finalURL
	if final == "" {
		final = url
	}
	status := p.status
	if status == 0 {
		status = 200
	}
	return &interfaces.FetchResult{
		FinalURL: final,
		Status:   status,
		Headers:  http.Header{"Content-Type": []string{"text/html"}},
		Body:     []byte(p.body),
	}, nil
}

func (f *fakeFetcher) Close() error { return nil }

func noSleep(time.Duration) {}

func TestEngineCrawlsLinkedPagesWithinScope(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]fakePage{
		"https://example.com/": {
			body: `<html><a href="/about">about</a><a href="https://evil.test/x">out of scope</a></html>`,
		},
		"https://example.com/about": {
			body: `<html><a href="/">home</a></html>`,
		},
	}}

	cfg := crawler.Config{
		Target:           "https://example.com/",
		Apex:             "example.com",
		Seeds:            []string{"https://example.com/"},
		MaxRequests:      100,
		MaxNodes:         100,
		MaxTimeS:         60,
		RateLimitSeconds: 0,
	}
	e := crawler.New(cfg, fetcher, nil, nil, nil)
	res := e.Run(context.Background())

	if res.Stats.StopReason != "frontierEmpty" {
		t.Fatalf("StopReason = %q, want frontierEmpty", res.Stats.StopReason)
	}
	if res.Stats.NodesFetched != 2 {
		t.Fatalf("NodesFetched = %d, want 2", res.Stats.NodesFetched)
	}
	foundAbout := false
	for _, p := range res.Discovered.Pages {
		if p == "https://example.com/about" {
			foundAbout = true
		}
		if p == "https://evil.test/x" {
			t.Fatalf("out-of-scope URL leaked into pages: %v", res.Discovered.Pages)
		}
	}
	if !foundAbout {
		t.Fatalf("expected /about in pages, got %v", res.Discovered.Pages)
	}
}

func TestEngineStopsAtMaxRequests(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]fakePage{
		"https://example.com/": {
			body: `<html><a href="/a">a</a><a href="/b">b</a></html>`,
		},
		"https://example.com/a": {body: `<html></html>`},
		"https://example.com/b": {body: `<html></html>`},
	}}

	cfg := crawler.Config{
		Target:      "https://example.com/",
		Apex:        "example.com",
		Seeds:       []string{"https://example.com/"},
		MaxRequests: 1,
		MaxNodes:    100,
		MaxTimeS:    60,
	}
	e := crawler.New(cfg, fetcher, nil, nil, nil)
	res := e.Run(context.Background())

	if res.Stats.StopReason != "maxRequests" {
		t.Fatalf("StopReason = %q, want maxRequests", res.Stats.StopReason)
	}
	if res.Stats.RequestsMade != 1 {
		t.Fatalf("RequestsMade = %d, want 1", res.Stats.RequestsMade)
	}
}

func TestEngineRedirectProducesSameDepthAlias(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]fakePage{
		"https://example.com/old": {
			finalURL: "https://example.com/new",
			body:     `<html></html>`,
		},
	}}

	cfg := crawler.Config{
		Target:      "https://example.com/old",
		Apex:        "example.com",
		Seeds:       []string{"https://example.com/old"},
		MaxRequests: 10,
		MaxNodes:    10,
		MaxTimeS:    60,
	}
	e := crawler.New(cfg, fetcher, nil, nil, nil)
	res := e.Run(context.Background())

	var sawOld, sawNew bool
	for _, n := range res.CrawlGraph.Nodes {
		if n.URL == "https://example.com/old" {
			sawOld = true
		}
		if n.URL == "https://example.com/new" {
			sawNew = true
			if n.Depth != 0 {
				t.Fatalf("alias depth = %d, want 0", n.Depth)
			}
		}
	}
	if !sawOld || !sawNew {
		t.Fatalf("expected both seed and redirect alias in nodes, got %+v", res.CrawlGraph.Nodes)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("expected the alias to not be fetched separately, calls = %v", fetcher.calls)
	}
}

func TestEngineMissingFetcherStopsImmediately(t *testing.T) {
	cfg := crawler.Config{
		Target: "https://example.com/",
		Apex:   "example.com",
		Seeds:  []string{"https://example.com/"},
	}
	e := crawler.New(cfg, nil, nil, nil, nil)
	res := e.Run(context.Background())

	if res.Stats.StopReason != "missingRequestsLib" {
		t.Fatalf("StopReason = %q, want missingRequestsLib", res.Stats.StopReason)
	}
	if res.Stats.RequestsMade != 0 {
		t.Fatalf("RequestsMade = %d, want 0", res.Stats.RequestsMade)
	}
}
