package interfaces

import (
	"context"
	"net/http"
	"time"
)

// FetchResult is the outcome of a single Fetcher.Get call.
type FetchResult struct {
	FinalURL string
	Status   int
	Headers  http.Header
	Body     []byte
	FetchedAt time.Time
}

// Fetcher is the minimal HTTP contract the crawl engine depends on.
// Implementations own their own transport, timeout, and redirect policy.
type Fetcher interface {
	// Get issues a GET request for url with the given headers, bounded by
	// timeoutSeconds. When followRedirects is true the returned FinalURL
	// reflects the last hop.
	Get(ctx context.Context, url string, headers http.Header, timeoutSeconds int, followRedirects bool) (*FetchResult, error)

	// Close releases resources held by the fetcher (connections, browser
	// processes, etc).
	Close() error
}

// JsRouteResult buckets endpoints discovered inside script content by kind.
type JsRouteResult struct {
	Routes []string
	API    []string
	Feeds  []string
	Assets []string
}

// JsRouteDiscoverer inspects an HTML page's inline and external scripts for
// string-literal endpoints that a plain link-extraction pass would miss.
// Errors are swallowed by callers; a discoverer should prefer returning a
// partial result over failing the whole crawl step.
type JsRouteDiscoverer interface {
	Discover(html string, baseURL string, headers http.Header) (*JsRouteResult, []string, error)
}

// HeadlessRenderer is an optional capability that renders a page with a real
// browser engine and reports both the rendered HTML and the network requests
// observed while doing so.
type HeadlessRenderer interface {
	Render(ctx context.Context, url string) (html string, observedRequests []string, err error)
}
