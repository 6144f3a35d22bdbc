// Package cli parses the one-shot crawl binary's command-line flags into a
// CLIArgs value, which cmd/reconspider turns into an app.CrawlRequest.
package cli

import (
	"flag"
	"fmt"
	"strings"
)

// CLIArgs are the command-line arguments that control a single crawl run.
type CLIArgs struct {
	Target string

	Seeds         []string
	SeedQueries   []string
	MaxRequests   int
	MaxNodes      int
	MaxTimeS      float64
	MaxDepth      int
	HasMaxDepth   bool
	MaxPerPattern int

	TimeoutSeconds   int
	RateLimitSeconds float64
	RemoveTracking   bool
	Headless         bool
	FetcherBackend   string

	OutputPath string

	RawArgs []string
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*s = append(*s, v)
	}
	return nil
}

// ParseArgs parses a slice of args and returns CLIArgs. It is deterministic
// and does not read os.Args, so it can be exercised directly in tests.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("reconspider", flag.ContinueOnError)

	var (
		target           = fs.String("target", "", "Root URL to crawl (required)")
		maxRequests      = fs.Int("max-requests", 0, "Maximum number of HTTP requests (0=use default)")
		maxNodes         = fs.Int("max-nodes", 0, "Maximum number of discovered nodes (0=use default)")
		maxTimeS         = fs.Float64("max-time", 0, "Wall-clock budget in seconds (0=use default)")
		maxDepth         = fs.Int("max-depth", -1, "Maximum crawl depth (-1=unbounded)")
		maxPerPattern    = fs.Int("max-per-pattern", 0, "Maximum URLs kept per path pattern (0=use default)")
		timeoutSeconds   = fs.Int("timeout", 0, "Per-request timeout in seconds (0=use default)")
		rateLimitSeconds = fs.Float64("rate-limit", 0, "Delay between requests in seconds")
		removeTracking   = fs.Bool("remove-tracking", true, "Strip known tracking query parameters")
		headless         = fs.Bool("headless", false, "Augment discovery with a headless render pass")
		fetcherBackend   = fs.String("backend", "", "Fetcher backend: nethttp|chromedp (empty=use default)")
		output           = fs.String("out", "", "Write the JSON result to this path instead of stdout")
	)

	var seeds, seedQueries stringList
	fs.Var(&seeds, "seed", "Additional seed URL (repeatable)")
	fs.Var(&seedQueries, "seed-query", "Synthetic ?query= term to probe on every fetched page (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*target) == "" {
		return nil, fmt.Errorf("missing required -target argument")
	}

	return &CLIArgs{
		Target:           *target,
		Seeds:            []string(seeds),
		SeedQueries:      []string(seedQueries),
		MaxRequests:      *maxRequests,
		MaxNodes:         *maxNodes,
		MaxTimeS:         *maxTimeS,
		MaxDepth:         *maxDepth,
		HasMaxDepth:      *maxDepth >= 0,
		MaxPerPattern:    *maxPerPattern,
		TimeoutSeconds:   *timeoutSeconds,
		RateLimitSeconds: *rateLimitSeconds,
		RemoveTracking:   *removeTracking,
		Headless:         *headless,
		FetcherBackend:   *fetcherBackend,
		OutputPath:       *output,
		RawArgs:          args,
	}, nil
}
