// Package webclient provides interfaces.Fetcher backends: a default
// net/http implementation and an optional chromedp-backed headless one.
package webclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/raysh454/reconspider/internal/interfaces"
)

// NetHTTPFetcher is the default Fetcher backend: a plain net/http client
// with per-call deadlines and a fixed crawl User-Agent.
type NetHTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    interfaces.Logger
}

// NewNetHTTPFetcher returns a ready-to-use fetcher. A nil client builds a
// default one with redirect-following enabled.
func NewNetHTTPFetcher(client *http.Client, userAgent string, logger interfaces.Logger) *NetHTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if userAgent == "" {
		userAgent = "reconspider/1.0 (+crawl)"
	}
	if logger != nil {
		logger = logger.With(interfaces.Field{Key: "backend", Value: "nethttp"})
	}
	return &NetHTTPFetcher{client: client, userAgent: userAgent, logger: logger}
}

// Get implements interfaces.Fetcher.
func (f *NetHTTPFetcher) Get(ctx context.Context, url string, headers http.Header, timeoutSeconds int, followRedirects bool) (*interfaces.FetchResult, error) {
	reqCtx := ctx
	if timeoutSeconds > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	client := f.client
	if !followRedirects {
		shallow := *f.client
		shallow.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		client = &shallow
	}

	if f.logger != nil {
		f.logger.Debug("fetching", interfaces.Field{Key: "url", Value: url})
	}

	resp, err := client.Do(req)
	if err != nil {
		if f.logger != nil {
			f.logger.Warn("fetch failed", interfaces.Field{Key: "url", Value: url}, interfaces.Field{Key: "error", Value: err.Error()})
		}
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &interfaces.FetchResult{
		FinalURL:  finalURL,
		Status:    resp.StatusCode,
		Headers:   resp.Header,
		Body:      body,
		FetchedAt: time.Now(),
	}, nil
}

// Close is a no-op for NetHTTPFetcher; the underlying client owns no
// resources beyond pooled connections that the runtime reclaims.
func (f *NetHTTPFetcher) Close() error { return nil }
