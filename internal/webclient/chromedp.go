package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/reconspider/internal/interfaces"
)

// ChromedpFetcher is the optional headless backend, used when a crawl's
// "headless" option is enabled. It satisfies both interfaces.Fetcher (for
// parity with the default backend) and interfaces.HeadlessRenderer (for the
// crawl engine's augmentation step).
type ChromedpFetcher struct {
	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	idleAfter time.Duration
	logger    interfaces.Logger
}

// NewChromedpFetcher launches a headless browser context with the given
// network-idle threshold.
func NewChromedpFetcher(idleAfter time.Duration, logger interfaces.Logger) (*ChromedpFetcher, error) {
	if idleAfter <= 0 {
		idleAfter = 2 * time.Second
	}
	if logger != nil {
		logger = logger.With(interfaces.Field{Key: "backend", Value: "chromedp"})
	}

	ctx, cancel := chromedp.NewContext(context.Background())
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("starting chromedp client: %w", err)
	}

	return &ChromedpFetcher{baseCtx: ctx, cancel: cancel, idleAfter: idleAfter, logger: logger}, nil
}

// Close tears down the underlying browser process.
func (c *ChromedpFetcher) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return nil
}

func (c *ChromedpFetcher) waitNetworkIdle(ctx context.Context) chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMu sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(c.idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() { close(idleChan) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) == 0 {
				startTimer()
			}
		}
	})

	// Arm the timer once up front so a page that issues no network
	// requests (such as about:blank) also becomes idle.
	startTimer()

	return idleChan
}

func assembleHeaders(src *network.Headers, dest *http.Header) {
	if src == nil || dest == nil {
		return
	}
	for k, v := range *src {
		switch vv := v.(type) {
		case string:
			dest.Add(k, vv)
		case []string:
			for _, sv := range vv {
				dest.Add(k, sv)
			}
		default:
			dest.Add(k, fmt.Sprintf("%v", vv))
		}
	}
}

func setHeaders(ctx context.Context, headers http.Header) error {
	if headers == nil {
		return nil
	}
	nh := network.Headers{}
	for k, vs := range headers {
		nh[k] = strings.Join(vs, ", ")
	}
	if err := chromedp.Run(ctx, network.SetExtraHTTPHeaders(nh)); err != nil {
		return fmt.Errorf("setting headers: %w", err)
	}
	return nil
}

// render navigates to url, waits for network idle, and returns the
// rendered document plus the set of request URLs observed along the way.
func (c *ChromedpFetcher) render(ctx context.Context, url string, headers http.Header, timeoutSeconds int) (html string, observed []string, finalStatus int, finalHeaders http.Header, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", nil, 0, nil, fmt.Errorf("chromedp client closed")
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	rctx, rcancel := chromedp.NewContext(c.baseCtx)
	defer rcancel()

	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	taskCtx, taskCancel := context.WithTimeout(rctx, time.Duration(timeoutSeconds)*time.Second)
	defer taskCancel()

	go func() {
		select {
		case <-ctx.Done():
			taskCancel()
		case <-taskCtx.Done():
		}
	}()

	if err = chromedp.Run(taskCtx, network.Enable()); err != nil {
		return "", nil, 0, nil, fmt.Errorf("enable network: %w", err)
	}
	if err = setHeaders(taskCtx, headers); err != nil {
		return "", nil, 0, nil, err
	}

	waitIdle := c.waitNetworkIdle(rctx)

	var mu sync.Mutex
	var mainResp *network.Response
	var requested []string
	chromedp.ListenTarget(rctx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			mu.Lock()
			requested = append(requested, e.Request.URL)
			mu.Unlock()
		case *network.EventResponseReceived:
			if e.Type == network.ResourceTypeDocument {
				mu.Lock()
				mainResp = e.Response
				mu.Unlock()
			}
		}
	})

	if err = chromedp.Run(taskCtx, chromedp.Navigate(url)); err != nil {
		return "", nil, 0, nil, fmt.Errorf("navigating to %s: %w", url, err)
	}

	select {
	case <-waitIdle:
	case <-taskCtx.Done():
		return "", nil, 0, nil, fmt.Errorf("waiting for network idle: %w", taskCtx.Err())
	}

	if err = chromedp.Run(taskCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", nil, 0, nil, fmt.Errorf("fetching html: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if mainResp != nil {
		finalStatus = int(mainResp.Status)
		finalHeaders = http.Header{}
		assembleHeaders(&mainResp.Headers, &finalHeaders)
	}
	return html, requested, finalStatus, finalHeaders, nil
}

// Get implements interfaces.Fetcher via headless navigation. The browser
// always follows redirects, and the returned FinalURL is always the
// requested url: neither followRedirects nor the last redirect hop is
// reflected in the result.
func (c *ChromedpFetcher) Get(ctx context.Context, url string, headers http.Header, timeoutSeconds int, _ bool) (*interfaces.FetchResult, error) {
	html, _, status, hdrs, err := c.render(ctx, url, headers, timeoutSeconds)
	if err != nil {
		return nil, err
	}
	return &interfaces.FetchResult{
		FinalURL:  url,
		Status:    status,
		Headers:   hdrs,
		Body:      []byte(html),
		FetchedAt: time.Now(),
	}, nil
}

// Render implements interfaces.HeadlessRenderer.
func (c *ChromedpFetcher) Render(ctx context.Context, url string) (string, []string, error) {
	html, observed, _, _, err := c.render(ctx, url, nil, 0)
	return html, observed, err
}
