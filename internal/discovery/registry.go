// Package discovery holds the crawl's three coupled tables — the
// canonical-URL node map, the edge set, and the per-pattern counters —
// plus the derived accumulators (host-seen, subdomains, directory hints,
// per-kind URL sets).
package discovery

import (
	"net/url"
	"sort"
	"strings"

	"github.com/raysh454/reconspider/internal/budget"
	"github.com/raysh454/reconspider/internal/canon"
	"github.com/raysh454/reconspider/internal/classify"
	"github.com/raysh454/reconspider/internal/frontier"
	"github.com/raysh454/reconspider/internal/score"
	"github.com/raysh454/reconspider/internal/scope"
)

// Node is one entry in the registry: the first-discovery depth/parent are
// never rewritten once set.
type Node struct {
	URL       string
	Depth     int
	Parent    string
	HasParent bool
	Score     float64
	Kind      classify.Kind
}

// Edge is an ordered, de-duplicated (src, tgt) pair.
type Edge struct {
	Source string
	Target string
}

// Registry owns all per-crawl discovery state. It is not safe for
// concurrent use — the engine that owns it is single-threaded.
type Registry struct {
	apex          string
	maxPerPattern int

	nodes    map[string]*Node
	order    []string // insertion order of nodes, for stable secondary iteration
	edgeSeen map[Edge]bool
	edges    []Edge

	patternCounts map[string]int
	hostSeen      map[string]bool
	subdomains    map[string]bool
	dirsByHost    map[string]map[string]bool

	pages, apiSet, feeds, assets   map[string]bool
	routes, jsFiles                map[string]bool
	queryURLs, networkRequests     map[string]bool

	maxDepthReached         int
	patternsSuppressedTotal int
}

// New returns an empty registry scoped to apex with the given per-pattern
// cap (0 disables the cap).
func New(apex string, maxPerPattern int) *Registry {
	return &Registry{
		apex:              apex,
		maxPerPattern:     maxPerPattern,
		nodes:             make(map[string]*Node),
		edgeSeen:          make(map[Edge]bool),
		patternCounts:     make(map[string]int),
		hostSeen:          make(map[string]bool),
		subdomains:        make(map[string]bool),
		dirsByHost:        make(map[string]map[string]bool),
		pages:             make(map[string]bool),
		apiSet:            make(map[string]bool),
		feeds:             make(map[string]bool),
		assets:            make(map[string]bool),
		routes:            make(map[string]bool),
		jsFiles:           make(map[string]bool),
		queryURLs:         make(map[string]bool),
		networkRequests:   make(map[string]bool),
	}
}

// Has reports whether url is already a registry key.
func (r *Registry) Has(urlStr string) bool {
	_, ok := r.nodes[urlStr]
	return ok
}

// Get returns the node for url, if present.
func (r *Registry) Get(urlStr string) (*Node, bool) {
	n, ok := r.nodes[urlStr]
	return n, ok
}

// Len returns the number of discovered nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// MaxDepthReached returns the maximum depth observed, or 0 when empty.
func (r *Registry) MaxDepthReached() int { return r.maxDepthReached }

// PatternsSuppressedTotal returns how many URLs were dropped for exceeding
// their pattern's cap.
func (r *Registry) PatternsSuppressedTotal() int { return r.patternsSuppressedTotal }

// AddDiscovered records a newly discovered URL, updating every derived
// accumulator. child must already be canonical; parent may be nil for
// seeds. Returns true iff a new node was inserted.
func (r *Registry) AddDiscovered(
	child *canon.CanonicalUrl,
	parent *canon.CanonicalUrl,
	depth int,
	kind classify.Kind,
	fromFrontier bool,
	requestsMade int,
	guard *budget.Guard,
	fr *frontier.Frontier,
) bool {
	if child == nil {
		return false
	}
	key := child.URL

	if _, exists := r.nodes[key]; exists {
		return false
	}
	if hit, _ := guard.Check(requestsMade, len(r.nodes)); hit {
		return false
	}

	pattern := canon.PatternKey(key)
	if r.maxPerPattern > 0 && r.patternCounts[pattern] >= r.maxPerPattern {
		r.patternsSuppressedTotal++
		return false
	}
	patternSeenCount := r.patternCounts[pattern]
	r.patternCounts[pattern]++

	host := hostOf(key)
	hostNovel := !r.hostSeen[host]

	sc := score.Score(child, hostNovel, patternSeenCount)

	node := &Node{URL: key, Depth: depth, Score: sc, Kind: kind}
	if parent != nil {
		node.Parent = parent.URL
		node.HasParent = true
	}
	r.nodes[key] = node
	r.order = append(r.order, key)

	if depth > r.maxDepthReached {
		r.maxDepthReached = depth
	}
	if hostNovel {
		r.hostSeen[host] = true
	}
	if host != r.apex && scope.InScope(host, r.apex) {
		r.subdomains[host] = true
	}
	if parent != nil {
		e := Edge{Source: parent.URL, Target: key}
		if !r.edgeSeen[e] {
			r.edgeSeen[e] = true
			r.edges = append(r.edges, e)
		}
	}

	switch kind {
	case classify.Page:
		r.pages[key] = true
	case classify.API:
		r.apiSet[key] = true
	case classify.Feed:
		r.feeds[key] = true
	case classify.Asset:
		r.assets[key] = true
	}

	if host != "" {
		if firstSeg := firstPathSegment(child.Path); firstSeg != "" && (kind == classify.Page || kind == classify.API) {
			r.addDirectoryHint(host, firstSeg)
		}
	}

	if !fromFrontier {
		return true
	}
	if guard.DepthExceeded(depth) {
		return true
	}
	if kind != classify.Page && kind != classify.API {
		return true
	}
	fr.Push(key, sc, depth)
	return true
}

func (r *Registry) addDirectoryHint(host, firstSeg string) {
	m, ok := r.dirsByHost[host]
	if !ok {
		m = make(map[string]bool)
		r.dirsByHost[host] = m
	}
	m["/"+firstSeg] = true
}

func firstPathSegment(p string) string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return ""
	}
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func hostOf(canonicalURL string) string {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// AddRoute, AddAPIRoute, AddFeedRoute, AddAssetRoute, AddJSFile, AddQueryURL,
// and AddNetworkRequest record URLs surfaced by collaborators (JS-route
// discovery, headless augmentation, seed-query synthesis) that are tracked
// for output but never enqueued.
// AddPageURL records a URL directly into the pages set, independent of its
// classified kind. The engine calls it for every fetched URL that returned
// HTML and for every seed-query URL it synthesizes (those are not fetched).
func (r *Registry) AddPageURL(u string)          { r.pages[u] = true }

func (r *Registry) AddRoute(u string)            { r.routes[u] = true }
func (r *Registry) AddAPIRoute(u string)         { r.apiSet[u] = true }
func (r *Registry) AddFeedRoute(u string)        { r.feeds[u] = true }
func (r *Registry) AddAssetRoute(u string)       { r.assets[u] = true }
func (r *Registry) AddJSFile(u string)           { r.jsFiles[u] = true }
func (r *Registry) AddQueryURL(u string)         { r.queryURLs[u] = true }
func (r *Registry) AddNetworkRequest(u string)   { r.networkRequests[u] = true }

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Subdomains returns the in-scope hosts distinct from the apex, sorted.
func (r *Registry) Subdomains() []string { return sortedKeys(r.subdomains) }

// DirectoriesByHost returns, per host, the sorted set of first-segment
// directory hints.
func (r *Registry) DirectoriesByHost() map[string][]string {
	out := make(map[string][]string, len(r.dirsByHost))
	for host, segs := range r.dirsByHost {
		out[host] = sortedKeys(segs)
	}
	return out
}

// Pages returns the union of page-kind URLs and JS-route-discovered routes.
func (r *Registry) Pages() []string {
	union := make(map[string]bool, len(r.pages)+len(r.routes))
	for u := range r.pages {
		union[u] = true
	}
	for u := range r.routes {
		union[u] = true
	}
	return sortedKeys(union)
}

func (r *Registry) API() []string              { return sortedKeys(r.apiSet) }
func (r *Registry) Feeds() []string             { return sortedKeys(r.feeds) }
func (r *Registry) Assets() []string            { return sortedKeys(r.assets) }
func (r *Registry) Routes() []string            { return sortedKeys(r.routes) }
func (r *Registry) JSFiles() []string           { return sortedKeys(r.jsFiles) }
func (r *Registry) QueryURLs() []string         { return sortedKeys(r.queryURLs) }
func (r *Registry) NetworkRequests() []string   { return sortedKeys(r.networkRequests) }

// AllURLs returns every distinct URL surfaced across all per-kind sets,
// sorted — the "urls" field of the result schema.
func (r *Registry) AllURLs() []string {
	all := make(map[string]bool)
	for u := range r.nodes {
		all[u] = true
	}
	for _, s := range []map[string]bool{r.pages, r.apiSet, r.feeds, r.assets, r.routes, r.jsFiles, r.queryURLs, r.networkRequests} {
		for u := range s {
			all[u] = true
		}
	}
	return sortedKeys(all)
}

// Nodes returns all discovered nodes sorted by (depth asc, -score, url asc).
func (r *Registry) Nodes() []*Node {
	out := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].URL < out[j].URL
	})
	return out
}

// Edges returns all edges sorted lexicographically by (source, target).
func (r *Registry) Edges() []Edge {
	out := make([]Edge, len(r.edges))
	copy(out, r.edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}
