// Command reconspider runs a single bounded crawl against one target and
// prints the JSON result snapshot to stdout or a file.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/reconspider/internal/app"
	"github.com/raysh454/reconspider/internal/cli"
	"github.com/raysh454/reconspider/internal/logging"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parsing arguments: %v", err)
	}

	logger := logging.NewStdoutLogger("reconspider")
	cfg := app.DefaultConfig()
	orch := app.NewOrchestrator(cfg, logger)
	defer orch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	req := app.CrawlRequest{
		Target:           args.Target,
		Seeds:            args.Seeds,
		SeedQueries:      args.SeedQueries,
		MaxRequests:      args.MaxRequests,
		MaxNodes:         args.MaxNodes,
		MaxTimeS:         args.MaxTimeS,
		MaxPerPattern:    args.MaxPerPattern,
		TimeoutSeconds:   args.TimeoutSeconds,
		RateLimitSeconds: args.RateLimitSeconds,
		RemoveTracking:   &args.RemoveTracking,
		Headless:         args.Headless,
		FetcherBackend:   args.FetcherBackend,
	}
	if args.HasMaxDepth {
		req.MaxDepth = &args.MaxDepth
	}

	job, err := orch.StartCrawlJob(ctx, req)
	if err != nil {
		log.Fatalf("starting crawl: %v", err)
	}

	for range job.Events {
	}

	final := orch.GetJob(job.ID)
	if final == nil {
		log.Fatalf("job %s vanished before completion", job.ID)
	}
	if final.Status == app.JobFailed {
		log.Fatalf("crawl failed: %s", final.Error)
	}

	out := os.Stdout
	if args.OutputPath != "" {
		f, err := os.Create(args.OutputPath)
		if err != nil {
			log.Fatalf("creating output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(final.Result); err != nil {
		log.Fatalf("encoding result: %v", err)
	}
}
