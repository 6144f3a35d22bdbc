// Package server implements the HTTP + WebSocket API surface around
// app.Orchestrator: CORS middleware, OPTIONS preflight handlers,
// writeJSON/writeError helpers, and an upgrade-and-stream-JobEvents
// WebSocket endpoint fronting a single crawl-job resource.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/raysh454/reconspider/internal/app"
	"github.com/raysh454/reconspider/internal/interfaces"
	"github.com/raysh454/reconspider/internal/logging"
)

// Server is the HTTP + WebSocket API surface for the crawl orchestrator.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       interfaces.Logger
}

// NewServer creates a new Server with its own Orchestrator.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	orch := app.NewOrchestrator(cfg.AppConfig, logger)

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       r,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/jobs/crawl", s.optionsHandler("POST"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/ws/jobs/crawl", s.optionsHandler("GET"))

	r.Post("/jobs/crawl", s.handleStartCrawlJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	r.Get("/ws/jobs/crawl", s.handleCrawlWS)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []interfaces.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, interfaces.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, interfaces.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the orchestrator, cancelling any running crawl jobs.
func (s *Server) Close() {
	if s.orchestrator != nil {
		s.orchestrator.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

func (s *Server) handleStartCrawlJob(w http.ResponseWriter, r *http.Request) {
	var req app.CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	job, err := s.orchestrator.StartCrawlJob(context.Background(), req)
	if err != nil {
		s.logger.Warn("starting crawl job", interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("started crawl job", interfaces.Field{Key: "job_id", Value: job.ID}, interfaces.Field{Key: "target", Value: req.Target})
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		s.logger.Warn("getting job: not found", interfaces.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.logger.Info("got job", interfaces.Field{Key: "job_id", Value: job.ID})
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.orchestrator.CancelJob(jobID)
	s.logger.Info("canceled job", interfaces.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	s.logger.Info("listed jobs", interfaces.Field{Key: "count", Value: len(jobs)})
	writeJSON(w, http.StatusOK, jobs)
}

// WebSockets

// handleCrawlWS starts a crawl job and streams its JobEvents. A WebSocket
// handshake is a GET request and browser WebSocket clients can't attach a
// body to it, so the crawl request comes from the query string instead of a
// JSON body (unlike the POST /jobs/crawl route).
func (s *Server) handleCrawlWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.CrawlRequest{
		Target:      q.Get("target"),
		Seeds:       q["seed"],
		SeedQueries: q["seed_query"],
	}
	if v := q.Get("max_requests"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.MaxRequests = n
		}
	}
	if v := q.Get("max_nodes"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.MaxNodes = n
		}
	}
	if v := q.Get("max_time_s"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.MaxTimeS = f
		}
	}
	if v := q.Get("max_depth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.MaxDepth = &n
		}
	}
	if v := q.Get("headless"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			req.Headless = b
		}
	}
	if v := q.Get("remove_tracking"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			req.RemoveTracking = &b
		}
	}
	if v := q.Get("backend"); v != "" {
		req.FetcherBackend = v
	}

	if req.Target == "" {
		conn, upErr := s.upgrader.Upgrade(w, r, nil)
		if upErr != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(ErrorResponse{Error: "target is required"})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", interfaces.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ctx := r.Context()

	job, err := s.orchestrator.StartCrawlJob(ctx, req)
	if err != nil {
		s.logger.Warn("starting crawl job", interfaces.Field{Key: "error", Value: err.Error()})
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started crawl job", interfaces.Field{Key: "job_id", Value: job.ID})
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
}

