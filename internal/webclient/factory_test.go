package webclient_test

import (
	"testing"

	"github.com/raysh454/reconspider/internal/webclient"
)

func TestNewFetcherDefaultBackend(t *testing.T) {
	t.Parallel()
	webclient.RegisterDefaultBackends()

	f, err := webclient.NewFetcher("", webclient.Options{}, nil)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	if f == nil {
		t.Fatal("fetcher is nil")
	}
	defer f.Close()
}

func TestNewFetcherUnknownBackend(t *testing.T) {
	t.Parallel()
	webclient.RegisterDefaultBackends()

	if _, err := webclient.NewFetcher("not-a-backend", webclient.Options{}, nil); err == nil {
		t.Fatal("expected error for unregistered backend")
	}
}

func TestListBackendsIncludesNetHTTP(t *testing.T) {
	t.Parallel()
	webclient.RegisterDefaultBackends()

	found := false
	for _, b := range webclient.ListBackends() {
		if b == "nethttp" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected nethttp in %v", webclient.ListBackends())
	}
}
