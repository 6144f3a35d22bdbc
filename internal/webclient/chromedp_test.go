package webclient_test

import (
	"context"
	"testing"
	"time"

	"github.com/raysh454/reconspider/internal/webclient"
)

func newChromedpFetcherOrSkip(t *testing.T) *webclient.ChromedpFetcher {
	t.Helper()
	f, err := webclient.NewChromedpFetcher(2*time.Second, nil)
	if err != nil {
		t.Skipf("chromedp unavailable in this environment: %v", err)
	}
	return f
}

func TestChromedpFetcherGet(t *testing.T) {
	f := newChromedpFetcherOrSkip(t)
	defer f.Close()

	res, err := f.Get(context.Background(), "about:blank", nil, 5, true)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res == nil {
		t.Fatal("expected a non-nil result")
	}
}

func TestChromedpFetcherRender(t *testing.T) {
	f := newChromedpFetcherOrSkip(t)
	defer f.Close()

	html, observed, err := f.Render(context.Background(), "about:blank")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	_ = observed
	if html == "" {
		t.Fatal("expected non-empty rendered html")
	}
}

func TestChromedpFetcherCloseIsIdempotent(t *testing.T) {
	f := newChromedpFetcherOrSkip(t)
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestChromedpFetcherGetAfterCloseErrors(t *testing.T) {
	f := newChromedpFetcherOrSkip(t)
	_ = f.Close()

	if _, err := f.Get(context.Background(), "about:blank", nil, 5, true); err == nil {
		t.Fatal("expected an error after Close")
	}
}
