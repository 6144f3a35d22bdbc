package app

import "time"

// Config carries the crawl defaults an Orchestrator applies whenever a
// CrawlRequest omits a budget or knob, plus the ambient job/server settings.
type Config struct {
	ServerAddr string

	// DefaultFetcherBackend names the webclient backend used when a
	// CrawlRequest doesn't specify one ("nethttp" or "chromedp").
	DefaultFetcherBackend string
	DefaultUserAgent      string
	DefaultIdleAfter      time.Duration

	DefaultMaxRequests      int
	DefaultMaxNodes         int
	DefaultMaxTimeS         float64
	DefaultMaxPerPattern    int
	DefaultTimeoutSeconds   int
	DefaultRateLimitSeconds float64
	DefaultRemoveTracking   bool

	// JobRetentionTime bounds how long a finished job stays in the table
	// before the next cleanup sweep evicts it.
	JobRetentionTime time.Duration

	// JobStorePath, if non-empty, persists finished crawl results to a
	// SQLite database at this path so they survive past JobRetentionTime.
	// Empty disables persistence.
	JobStorePath string
}

// DefaultConfig returns a Config populated with sensible crawl defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerAddr:              "http://localhost:8080",
		DefaultFetcherBackend:   "nethttp",
		DefaultUserAgent:        "Mozilla/5.0 (reconspider)",
		DefaultIdleAfter:        2 * time.Second,
		DefaultMaxRequests:      120,
		DefaultMaxNodes:         2500,
		DefaultMaxTimeS:         25.0,
		DefaultMaxPerPattern:    30,
		DefaultTimeoutSeconds:   8,
		DefaultRateLimitSeconds: 0.3,
		DefaultRemoveTracking:   true,
		JobRetentionTime:        10 * time.Minute,
	}
}
