package app

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/reconspider/internal/crawler"
	"github.com/raysh454/reconspider/internal/interfaces"
	"github.com/raysh454/reconspider/internal/jobstore"
	"github.com/raysh454/reconspider/internal/jsroute"
	"github.com/raysh454/reconspider/internal/scope"
	"github.com/raysh454/reconspider/internal/webclient"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	RequestsMade    int `json:"requests_made,omitempty"`
	NodesDiscovered int `json:"nodes_discovered,omitempty"`

	// For the terminal result event
	Result *crawler.Result `json:"result,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// Job is one crawl run's lifecycle record.
type Job struct {
	ID        string          `json:"id"`
	Target    string          `json:"target"`
	Status    JobStatus       `json:"status"`
	Error     string          `json:"error,omitempty"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
	Events    chan JobEvent   `json:"-"`
	Result    *crawler.Result `json:"result,omitempty"`
}

// CrawlRequest describes one crawl invocation. Zero-valued budget fields
// fall back to the orchestrator's Config defaults; Seeds defaults to
// []string{Target} when empty.
type CrawlRequest struct {
	Target           string   `json:"target"`
	Seeds            []string `json:"seeds,omitempty"`
	MaxRequests      int      `json:"max_requests,omitempty"`
	MaxNodes         int      `json:"max_nodes,omitempty"`
	MaxTimeS         float64  `json:"max_time_s,omitempty"`
	MaxDepth         *int     `json:"max_depth,omitempty"`
	MaxPerPattern    int      `json:"max_per_pattern,omitempty"`
	TimeoutSeconds   int      `json:"timeout_seconds,omitempty"`
	RateLimitSeconds float64  `json:"rate_limit_seconds,omitempty"`
	RemoveTracking   *bool    `json:"remove_tracking,omitempty"`
	Headless         bool     `json:"headless,omitempty"`
	SeedQueries      []string `json:"seed_queries,omitempty"`
	FetcherBackend   string   `json:"fetcher_backend,omitempty"`
}

// Orchestrator owns the job table and spawns one crawler.Engine per job,
// each with its own fetcher/headless-renderer instance.
type Orchestrator struct {
	cfg    *Config
	logger interfaces.Logger

	jobsMu           sync.Mutex
	jobs             map[string]*Job
	jobCancels       map[string]context.CancelFunc
	jobRetentionTime time.Duration

	store *jobstore.Store

	closedMu sync.Mutex
	closed   bool
}

// NewOrchestrator ties together config and logger. If cfg.JobStorePath is
// set, finished results are also persisted to a SQLite-backed job store so
// they outlive the in-memory retention sweep; a failure to open it is
// logged and persistence is disabled rather than failing startup.
func NewOrchestrator(cfg *Config, logger interfaces.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	webclient.RegisterDefaultBackends()

	var store *jobstore.Store
	if cfg.JobStorePath != "" {
		s, err := jobstore.Open(cfg.JobStorePath)
		if err != nil {
			if logger != nil {
				logger.Error("opening job store, persistence disabled",
					interfaces.Field{Key: "path", Value: cfg.JobStorePath},
					interfaces.Field{Key: "error", Value: err.Error()})
			}
		} else {
			store = s
		}
	}

	return &Orchestrator{
		cfg:              cfg,
		logger:           logger,
		jobs:             make(map[string]*Job),
		jobCancels:       make(map[string]context.CancelFunc),
		jobRetentionTime: cfg.JobRetentionTime,
		store:            store,
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) setJob(job *Job) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	o.jobs[job.ID] = job
}

func (o *Orchestrator) cleanupFinishedJobsLocked() {
	// caller MUST hold o.jobsMu
	if o.jobRetentionTime <= 0 {
		return
	}

	now := time.Now().UTC()
	for id, job := range o.jobs {
		if job == nil {
			delete(o.jobs, id)
			continue
		}
		if job.Status != JobDone && job.Status != JobFailed && job.Status != JobCanceled {
			continue
		}
		if job.EndedAt.IsZero() {
			continue
		}
		if now.Sub(job.EndedAt) > o.jobRetentionTime {
			delete(o.jobs, id)
		}
	}
}

func (o *Orchestrator) setCancel(jobID string, cancel context.CancelFunc) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	o.jobCancels[jobID] = cancel
}

func (o *Orchestrator) deleteCancel(jobID string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	delete(o.jobCancels, jobID)
}

func (o *Orchestrator) getCancel(jobID string) context.CancelFunc {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return o.jobCancels[jobID]
}

func (o *Orchestrator) newJob(target string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Target:    target,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}
}

func (o *Orchestrator) finishJob(jobID string) {
	o.jobsMu.Lock()
	// Capture the events channel before the sweep, which may evict this job.
	var events chan JobEvent
	if j, ok := o.jobs[jobID]; ok && j != nil {
		j.EndedAt = time.Now().UTC()
		events = j.Events
	}

	// Cleanup old jobs while we hold the lock.
	o.cleanupFinishedJobsLocked()
	o.jobsMu.Unlock()

	o.deleteCancel(jobID)

	if events != nil {
		close(events)
	}
}

func (o *Orchestrator) setJobStatus(jobID string, status JobStatus, err error) {
	o.jobsMu.Lock()
	if j, ok := o.jobs[jobID]; ok {
		j.Status = status
		if err != nil {
			j.Error = err.Error()
		}
	}
	o.jobsMu.Unlock()

	ev := JobEvent{JobID: jobID, Type: JobEventStatus, Status: status}
	if err != nil {
		ev.Error = err.Error()
	}
	o.emitJobEvent(jobID, ev)
}

func (o *Orchestrator) setJobResult(jobID string, result *crawler.Result) {
	o.jobsMu.Lock()
	var target string
	if j, ok := o.jobs[jobID]; ok {
		j.Status = JobDone
		j.Result = result
		target = j.Target
	}
	o.jobsMu.Unlock()

	if o.store != nil {
		if err := o.store.SaveResult(jobID, target, result); err != nil && o.logger != nil {
			o.logger.Error("persisting job result",
				interfaces.Field{Key: "job_id", Value: jobID},
				interfaces.Field{Key: "error", Value: err.Error()})
		}
	}

	o.emitJobEvent(jobID, JobEvent{
		JobID:  jobID,
		Type:   JobEventResult,
		Status: JobDone,
		Result: result,
	})
}

func (o *Orchestrator) progressCallback(jobID string) func(requestsMade, nodesDiscovered int) {
	return func(requestsMade, nodesDiscovered int) {
		o.emitJobEvent(jobID, JobEvent{
			JobID:           jobID,
			Type:            JobEventProgress,
			RequestsMade:    requestsMade,
			NodesDiscovered: nodesDiscovered,
		})
	}
}

func orDefaultInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orDefaultFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// buildEngine resolves req against the orchestrator's Config defaults and
// wires a fresh crawler.Engine with its own fetcher and, if requested, a
// headless renderer. The returned closer releases both.
func (o *Orchestrator) buildEngine(req CrawlRequest) (*crawler.Engine, func(), error) {
	if req.Target == "" {
		return nil, nil, fmt.Errorf("target is required")
	}
	target, err := url.Parse(req.Target)
	if err != nil || target.Hostname() == "" {
		return nil, nil, fmt.Errorf("invalid target %q", req.Target)
	}
	apex := scope.ApexOf(target.Hostname())

	seeds := req.Seeds
	if len(seeds) == 0 {
		seeds = []string{req.Target}
	}

	removeTracking := o.cfg.DefaultRemoveTracking
	if req.RemoveTracking != nil {
		removeTracking = *req.RemoveTracking
	}

	backend := req.FetcherBackend
	if backend == "" {
		backend = o.cfg.DefaultFetcherBackend
	}

	fetcher, err := webclient.NewFetcher(backend, webclient.Options{
		UserAgent: o.cfg.DefaultUserAgent,
		IdleAfter: o.cfg.DefaultIdleAfter,
	}, o.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("construct fetcher: %w", err)
	}

	var headless interfaces.HeadlessRenderer
	var headlessCloser io.Closer
	if req.Headless {
		hf, err := webclient.NewChromedpFetcher(o.cfg.DefaultIdleAfter, o.logger)
		if err != nil {
			_ = fetcher.Close()
			return nil, nil, fmt.Errorf("construct headless renderer: %w", err)
		}
		headless = hf
		headlessCloser = hf
	}

	cfg := crawler.Config{
		Target:           req.Target,
		Apex:             apex,
		Seeds:            seeds,
		MaxRequests:      orDefaultInt(req.MaxRequests, o.cfg.DefaultMaxRequests),
		MaxNodes:         orDefaultInt(req.MaxNodes, o.cfg.DefaultMaxNodes),
		MaxTimeS:         orDefaultFloat(req.MaxTimeS, o.cfg.DefaultMaxTimeS),
		MaxDepth:         req.MaxDepth,
		MaxPerPattern:    orDefaultInt(req.MaxPerPattern, o.cfg.DefaultMaxPerPattern),
		TimeoutSeconds:   orDefaultInt(req.TimeoutSeconds, o.cfg.DefaultTimeoutSeconds),
		RateLimitSeconds: orDefaultFloat(req.RateLimitSeconds, o.cfg.DefaultRateLimitSeconds),
		RemoveTracking:   removeTracking,
		Headless:         req.Headless,
		SeedQueries:      req.SeedQueries,
	}

	engine := crawler.New(cfg, fetcher, jsroute.NewRegexJsRouteDiscoverer(), headless, o.logger)

	closeAll := func() {
		_ = fetcher.Close()
		if headlessCloser != nil {
			_ = headlessCloser.Close()
		}
	}
	return engine, closeAll, nil
}

// StartCrawlJob validates and resolves req, then runs the crawl in a
// background goroutine, streaming status/progress/result events on the
// returned Job's Events channel.
func (o *Orchestrator) StartCrawlJob(ctx context.Context, req CrawlRequest) (*Job, error) {
	o.closedMu.Lock()
	closed := o.closed
	o.closedMu.Unlock()
	if closed {
		return nil, fmt.Errorf("orchestrator is closed")
	}

	engine, closeEngine, err := o.buildEngine(req)
	if err != nil {
		return nil, err
	}

	job := o.newJob(req.Target)
	jobID := job.ID
	o.setJob(job)

	jobCtx, cancel := context.WithCancel(ctx)
	o.setCancel(jobID, cancel)

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	engine.OnProgress(o.progressCallback(jobID))

	go func() {
		defer closeEngine()
		defer o.finishJob(jobID)
		o.setJobStatus(jobID, JobRunning, nil)

		if o.logger != nil {
			o.logger.Info("crawl job starting",
				interfaces.Field{Key: "job_id", Value: jobID},
				interfaces.Field{Key: "target", Value: req.Target})
		}

		result := engine.Run(jobCtx)

		select {
		case <-jobCtx.Done():
			o.setJobStatus(jobID, JobCanceled, jobCtx.Err())
		default:
			o.setJobResult(jobID, result)
		}
	}()

	return job, nil
}

// CancelJob requests cancellation of a running job; a no-op for unknown IDs.
func (o *Orchestrator) CancelJob(jobID string) {
	cancel := o.getCancel(jobID)
	if cancel != nil {
		cancel()
	}
}

// GetJob returns the job for jobID. If it has already been evicted from the
// in-memory table by the retention sweep, it falls back to the persisted
// job store (when configured), returning a Job reconstructed from the
// stored result.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	j, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if ok {
		return j
	}

	if o.store == nil {
		return nil
	}
	result, err := o.store.GetResult(jobID)
	if err != nil || result == nil {
		return nil
	}
	return &Job{ID: jobID, Target: result.Target, Status: JobDone, Result: result}
}

// ListJobs returns a snapshot of all tracked jobs.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()

	jobs := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		if j != nil {
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// Close marks the orchestrator closed and cancels every running job. Safe
// to call more than once.
func (o *Orchestrator) Close() {
	o.closedMu.Lock()
	if o.closed {
		o.closedMu.Unlock()
		return
	}
	o.closed = true
	o.closedMu.Unlock()

	o.jobsMu.Lock()
	for id, cancel := range o.jobCancels {
		if cancel != nil {
			cancel()
		}
		delete(o.jobCancels, id)
	}
	o.cleanupFinishedJobsLocked()
	o.jobsMu.Unlock()

	if o.store != nil {
		_ = o.store.Close()
	}
}
