package webclient

import "github.com/raysh454/reconspider/internal/interfaces"

// RegisterDefaultBackends registers the nethttp and chromedp backends. Call
// this once at process startup before NewFetcher.
func RegisterDefaultBackends() {
	RegisterBackend("nethttp", func(opts Options, logger interfaces.Logger) (interfaces.Fetcher, error) {
		return NewNetHTTPFetcher(nil, opts.UserAgent, logger), nil
	})

	RegisterBackend("chromedp", func(opts Options, logger interfaces.Logger) (interfaces.Fetcher, error) {
		return NewChromedpFetcher(opts.IdleAfter, logger)
	})
}
