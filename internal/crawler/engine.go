// Package crawler implements the bounded, scope-restricted crawl loop: seed,
// pop-fetch-extract-score per iteration against a budget guard, and final
// result-snapshot assembly.
package crawler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raysh454/reconspider/internal/budget"
	"github.com/raysh454/reconspider/internal/canon"
	"github.com/raysh454/reconspider/internal/classify"
	"github.com/raysh454/reconspider/internal/discovery"
	"github.com/raysh454/reconspider/internal/extract"
	"github.com/raysh454/reconspider/internal/frontier"
	"github.com/raysh454/reconspider/internal/interfaces"
	"github.com/raysh454/reconspider/internal/scope"
)

const defaultUserAgent = "Mozilla/5.0 (reconspider)"

// Config carries every crawl budget/behavior knob plus the target/apex the
// crawl is scoped to.
type Config struct {
	Target string
	Apex   string
	Seeds  []string

	MaxRequests      int
	MaxNodes         int
	MaxTimeS         float64
	MaxDepth         *int
	MaxPerPattern    int
	TimeoutSeconds   int
	RateLimitSeconds float64
	RemoveTracking   bool
	Headless         bool
	SeedQueries      []string
}

func (c Config) budgets() budget.Budgets {
	return budget.Budgets{
		MaxRequests:   c.MaxRequests,
		MaxNodes:      c.MaxNodes,
		MaxTimeS:      c.MaxTimeS,
		MaxDepth:      c.MaxDepth,
		MaxPerPattern: c.MaxPerPattern,
	}
}

// Engine owns one crawl's full lifecycle: seeding, the best-first loop, and
// result-snapshot assembly. It is single-use and not safe for concurrent
// access; callers run one Engine per job.
type Engine struct {
	cfg      Config
	fetcher  interfaces.Fetcher
	jsRoute  interfaces.JsRouteDiscoverer
	headless interfaces.HeadlessRenderer
	logger   interfaces.Logger

	registry *discovery.Registry
	frontier *frontier.Frontier
	guard    *budget.Guard
	visited  map[string]bool

	requestsMade int
	nodesFetched int

	sleep      func(time.Duration)
	onProgress func(requestsMade, nodesDiscovered int)
}

// OnProgress registers a callback fired after each fetch with the running
// requests-made and nodes-discovered counts. Passing nil disables it.
func (e *Engine) OnProgress(f func(requestsMade, nodesDiscovered int)) {
	e.onProgress = f
}

// New constructs an Engine. jsRoute and headless may be nil; fetcher nil is
// valid and yields the missingRequestsLib stop reason on Run.
func New(cfg Config, fetcher interfaces.Fetcher, jsRoute interfaces.JsRouteDiscoverer, headless interfaces.HeadlessRenderer, logger interfaces.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		fetcher:  fetcher,
		jsRoute:  jsRoute,
		headless: headless,
		logger:   logger,
		registry: discovery.New(cfg.Apex, cfg.MaxPerPattern),
		frontier: frontier.New(),
		guard:    budget.NewGuard(cfg.budgets()),
		visited:  make(map[string]bool),
		sleep:    time.Sleep,
	}
}

// Run seeds the frontier and executes the main loop until a stop condition
// fires, then returns the result snapshot.
func (e *Engine) Run(ctx context.Context) *Result {
	e.seed()

	stopReason := e.loop(ctx)

	return e.snapshot(stopReason)
}

func (e *Engine) seed() {
	for _, raw := range e.cfg.Seeds {
		seed := canon.Canonicalize(raw, "", e.cfg.RemoveTracking)
		if seed == nil {
			continue
		}
		if !scope.InScope(hostname(seed.Host), e.cfg.Apex) {
			continue
		}
		e.registry.AddDiscovered(seed, nil, 0, classify.Page, true, e.requestsMade, e.guard, e.frontier)
	}
}

func (e *Engine) loop(ctx context.Context) string {
	if e.fetcher == nil {
		return budget.MissingRequestsLib
	}

	for {
		if hit, reason := e.guard.Check(e.requestsMade, e.registry.Len()); hit {
			return reason
		}
		item, ok := e.frontier.Pop()
		if !ok {
			return budget.FrontierEmpty
		}
		if e.visited[item.URL] {
			continue
		}
		e.visited[item.URL] = true
		e.requestsMade++

		e.crawlOne(ctx, item.URL)
		if e.onProgress != nil {
			e.onProgress(e.requestsMade, e.registry.Len())
		}
		e.restSleep()
	}
}

func (e *Engine) crawlOne(ctx context.Context, poppedURL string) {
	node, ok := e.registry.Get(poppedURL)
	if !ok {
		return
	}

	headers := http.Header{"User-Agent": []string{defaultUserAgent}}
	res, err := e.fetcher.Get(ctx, poppedURL, headers, e.cfg.TimeoutSeconds, true)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("fetch failed", interfaces.Field{Key: "url", Value: poppedURL}, interfaces.Field{Key: "error", Value: err.Error()})
		}
		return
	}

	finalURL := res.FinalURL
	if finalURL == "" {
		finalURL = poppedURL
	}
	effective := canon.Canonicalize(finalURL, poppedURL, e.cfg.RemoveTracking)
	if effective == nil {
		return
	}
	if effective.URL != poppedURL && !e.registry.Has(effective.URL) {
		var parentCanon *canon.CanonicalUrl
		if node.HasParent {
			parentCanon = canon.Canonicalize(node.Parent, "", e.cfg.RemoveTracking)
		}
		e.registry.AddDiscovered(effective, parentCanon, node.Depth, node.Kind, false, e.requestsMade, e.guard, e.frontier)
	}

	if res.Status >= 400 {
		return
	}
	body := string(res.Body)
	contentType := ""
	if res.Headers != nil {
		contentType = res.Headers.Get("Content-Type")
	}
	if !strings.Contains(contentType, "text/html") && !strings.Contains(body, "<html") {
		return
	}

	e.nodesFetched++
	e.registry.AddPageURL(effective.URL)

	links := extract.Links(body, effective.URL)
	links = append(links, extract.SearchTargets(body, effective.URL)...)

	e.synthesizeSeedQueries(effective.URL)
	e.runJsRoute(body, effective.URL)
	e.runHeadless(ctx, effective.URL, &links)

	parentDepth := node.Depth
	if effNode, ok := e.registry.Get(effective.URL); ok {
		parentDepth = effNode.Depth
	}

	for _, link := range links {
		child := canon.Canonicalize(link, effective.URL, e.cfg.RemoveTracking)
		if child == nil {
			continue
		}
		if !scope.InScope(hostname(child.Host), e.cfg.Apex) {
			continue
		}
		kind := classify.Classify(child)
		e.registry.AddDiscovered(child, effective, parentDepth+1, kind, true, e.requestsMade, e.guard, e.frontier)
	}
}

func (e *Engine) synthesizeSeedQueries(baseURL string) {
	if len(e.cfg.SeedQueries) == 0 {
		return
	}
	for _, q := range e.cfg.SeedQueries {
		qURL := buildQueryURL(baseURL, q)
		qc := canon.Canonicalize(qURL, "", e.cfg.RemoveTracking)
		if qc == nil {
			continue
		}
		e.registry.AddQueryURL(qc.URL)
		e.registry.AddPageURL(qc.URL)
	}
}

func buildQueryURL(base, q string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "query=" + url.QueryEscape(q)
}

func (e *Engine) runJsRoute(body, baseURL string) {
	if e.jsRoute == nil {
		return
	}
	result, scripts, err := e.jsRoute.Discover(body, baseURL, nil)
	if err != nil || result == nil {
		return
	}
	for _, r := range result.Routes {
		e.registry.AddRoute(r)
	}
	for _, a := range result.API {
		e.registry.AddAPIRoute(a)
	}
	for _, f := range result.Feeds {
		e.registry.AddFeedRoute(f)
	}
	for _, a := range result.Assets {
		e.registry.AddAssetRoute(a)
	}
	for _, s := range scripts {
		e.registry.AddJSFile(s)
	}
}

func (e *Engine) runHeadless(ctx context.Context, baseURL string, links *[]string) {
	if !e.cfg.Headless || e.headless == nil {
		return
	}
	html, observed, err := e.headless.Render(ctx, baseURL)
	if err != nil {
		return
	}
	*links = append(*links, extract.Links(html, baseURL)...)
	for _, o := range observed {
		e.registry.AddNetworkRequest(o)
	}
}

func (e *Engine) restSleep() {
	if e.cfg.RateLimitSeconds <= 0 {
		return
	}
	e.sleep(time.Duration(e.cfg.RateLimitSeconds * float64(time.Second)))
}

func hostname(hostWithPort string) string {
	if i := strings.IndexByte(hostWithPort, ':'); i >= 0 {
		return hostWithPort[:i]
	}
	return hostWithPort
}

// snapshot assembles the final result from the registry's accumulators.
func (e *Engine) snapshot(stopReason string) *Result {
	nodes := e.registry.Nodes()
	nodeOut := make([]NodeOut, 0, len(nodes))
	for _, n := range nodes {
		var parent *string
		if n.HasParent {
			p := n.Parent
			parent = &p
		}
		nodeOut = append(nodeOut, NodeOut{
			URL:    n.URL,
			Depth:  n.Depth,
			Parent: parent,
			Score:  n.Score,
			Kind:   string(n.Kind),
		})
	}

	edges := e.registry.Edges()
	edgeOut := make([]EdgeOut, 0, len(edges))
	for _, ed := range edges {
		edgeOut = append(edgeOut, EdgeOut{Source: ed.Source, Target: ed.Target, Type: "discovered"})
	}

	var maxDepthCfg *int
	if e.cfg.MaxDepth != nil {
		v := *e.cfg.MaxDepth
		maxDepthCfg = &v
	}

	return &Result{
		Target: e.cfg.Target,
		Apex:   e.cfg.Apex,
		Start:  append([]string{}, e.cfg.Seeds...),
		Budgets: BudgetsOut{
			MaxRequests:   e.cfg.MaxRequests,
			MaxTime:       e.cfg.MaxTimeS,
			MaxNodes:      e.cfg.MaxNodes,
			MaxDepth:      maxDepthCfg,
			MaxPerPattern: e.cfg.MaxPerPattern,
		},
		Stats: StatsOut{
			RequestsMade:            e.requestsMade,
			NodesDiscovered:         e.registry.Len(),
			NodesFetched:            e.nodesFetched,
			FrontierRemaining:       e.frontier.Len(),
			MaxDepthReached:         e.registry.MaxDepthReached(),
			StopReason:              stopReason,
			PatternsSuppressedTotal: e.registry.PatternsSuppressedTotal(),
		},
		Discovered: DiscoveredOut{
			Subdomains:        e.registry.Subdomains(),
			DirectoriesByHost: e.registry.DirectoriesByHost(),
			URLs:              e.registry.AllURLs(),
			Pages:             e.registry.Pages(),
			API:               e.registry.API(),
			Feeds:             e.registry.Feeds(),
			Assets:            e.registry.Assets(),
			Routes:            e.registry.Routes(),
			JSFiles:           e.registry.JSFiles(),
			Requests:          e.registry.NetworkRequests(),
			QueryURLs:         e.registry.QueryURLs(),
		},
		CrawlGraph: CrawlGraphOut{
			Nodes: nodeOut,
			Edges: edgeOut,
		},
	}
}
