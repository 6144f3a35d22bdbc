package classify

import (
	"testing"

	"github.com/raysh454/reconspider/internal/canon"
)

func mustCanon(t *testing.T, raw string) *canon.CanonicalUrl {
	t.Helper()
	u := canon.Canonicalize(raw, "", true)
	if u == nil {
		t.Fatalf("Canonicalize(%q) returned nil", raw)
	}
	return u
}

func TestClassifyAsset(t *testing.T) {
	cases := []string{
		"http://example.com/logo.png",
		"http://example.com/app.js",
		"http://example.com/styles.css",
		"http://example.com/report.pdf",
	}
	for _, raw := range cases {
		if got := Classify(mustCanon(t, raw)); got != Asset {
			t.Errorf("Classify(%q) = %q, want asset", raw, got)
		}
	}
}

func TestClassifyFeed(t *testing.T) {
	cases := []string{
		"http://example.com/blog.rss",
		"http://example.com/feed/",
		"http://example.com/atom",
	}
	for _, raw := range cases {
		if got := Classify(mustCanon(t, raw)); got != Feed {
			t.Errorf("Classify(%q) = %q, want feed", raw, got)
		}
	}
}

func TestClassifyAPI(t *testing.T) {
	cases := []string{
		"http://example.com/api/users",
		"http://example.com/v2/items",
		"http://example.com/data.json",
	}
	for _, raw := range cases {
		if got := Classify(mustCanon(t, raw)); got != API {
			t.Errorf("Classify(%q) = %q, want api", raw, got)
		}
	}
}

func TestClassifyPageDefault(t *testing.T) {
	if got := Classify(mustCanon(t, "http://example.com/about")); got != Page {
		t.Errorf("Classify(about) = %q, want page", got)
	}
}

func TestClassifyNilURL(t *testing.T) {
	if got := Classify(nil); got != Page {
		t.Errorf("Classify(nil) = %q, want page", got)
	}
}

func TestClassifyPrecedenceAssetBeatsAPISegment(t *testing.T) {
	// Under an "api" segment but with an asset extension: asset wins.
	if got := Classify(mustCanon(t, "http://example.com/api/logo.png")); got != Asset {
		t.Errorf("Classify(api/logo.png) = %q, want asset", got)
	}
}
