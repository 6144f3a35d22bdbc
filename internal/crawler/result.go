package crawler

// Result is the JSON-serializable snapshot emitted at the end of a crawl.
type Result struct {
	Target     string        `json:"target"`
	Apex       string        `json:"apex"`
	Start      []string      `json:"start"`
	Budgets    BudgetsOut    `json:"budgets"`
	Stats      StatsOut      `json:"stats"`
	Discovered DiscoveredOut `json:"discovered"`
	CrawlGraph CrawlGraphOut `json:"crawl_graph"`
}

// BudgetsOut echoes the configured budgets.
type BudgetsOut struct {
	MaxRequests   int      `json:"maxRequests"`
	MaxTime       float64  `json:"maxTime"`
	MaxNodes      int      `json:"maxNodes"`
	MaxDepth      *int     `json:"maxDepth"`
	MaxPerPattern int      `json:"maxPerPattern"`
}

// StatsOut reports how the crawl spent its budget.
type StatsOut struct {
	RequestsMade            int    `json:"requests_made"`
	NodesDiscovered         int    `json:"nodes_discovered"`
	NodesFetched            int    `json:"nodes_fetched"`
	FrontierRemaining       int    `json:"frontier_remaining"`
	MaxDepthReached         int    `json:"max_depth_reached"`
	StopReason              string `json:"stop_reason"`
	PatternsSuppressedTotal int    `json:"patterns_suppressed_total"`
}

// DiscoveredOut is the full set of per-kind URL accumulators.
type DiscoveredOut struct {
	Subdomains        []string            `json:"subdomains"`
	DirectoriesByHost map[string][]string `json:"directories_by_host"`
	URLs              []string            `json:"urls"`
	Pages             []string            `json:"pages"`
	API               []string            `json:"api"`
	Feeds             []string            `json:"feeds"`
	Assets            []string            `json:"assets"`
	Routes            []string            `json:"routes"`
	JSFiles           []string            `json:"js_files"`
	Requests          []string            `json:"requests"`
	QueryURLs         []string            `json:"query_urls"`
}

// NodeOut is one crawl_graph node entry.
type NodeOut struct {
	URL    string  `json:"url"`
	Depth  int     `json:"depth"`
	Parent *string `json:"parent"`
	Score  float64 `json:"score"`
	Kind   string  `json:"kind"`
}

// EdgeOut is one crawl_graph edge entry.
type EdgeOut struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// CrawlGraphOut is the discovery graph snapshot.
type CrawlGraphOut struct {
	Nodes []NodeOut `json:"nodes"`
	Edges []EdgeOut `json:"edges"`
}
