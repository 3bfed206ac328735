package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/predict"
	"github.com/betonlab/mixopt/internal/store"
)

// Server exposes optimization jobs over HTTP: creation, status, SSE
// progress, persisted results and trace exports.
type Server struct {
	jobManager *JobManager
	addr       string
	server     *http.Server

	runStore  store.Store
	baseDir   string
	bounds    mix.Bounds
	predictor predict.Predictor
}

// NewServer creates a server. runStore and baseDir may be zero when
// persistence is disabled; the predictor defaults to the empirical engine.
func NewServer(addr string, runStore store.Store, baseDir string) *Server {
	return &Server{
		jobManager: NewJobManager(),
		addr:       addr,
		runStore:   runStore,
		baseDir:    baseDir,
		bounds:     mix.DefaultBounds(),
		predictor:  predict.NewEmpiricalEngine(),
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)

	handler := s.loggingMiddleware(s.corsMiddleware(mux))

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID routes /api/v1/jobs/:id/* to the per-job handlers.
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	switch {
	case len(parts) == 1 || parts[1] == "status":
		s.handleGetJobStatus(w, r, jobID)
	case parts[1] == "stream":
		s.handleJobStream(w, r, jobID)
	case parts[1] == "result":
		s.handleGetResult(w, r, jobID)
	case parts[1] == "trace.csv":
		s.handleGetTraceCSV(w, r, jobID)
	case parts[1] == "trace.html":
		s.handleGetTraceChart(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var config JobConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if config.MinStrength <= 0 {
		http.Error(w, "minStrength must be positive", http.StatusBadRequest)
		return
	}
	if config.Algorithm == "" {
		config.Algorithm = "ga"
	}
	if config.Algorithm != "ga" && config.Algorithm != "mayfly" {
		http.Error(w, fmt.Sprintf("unknown algorithm %q", config.Algorithm), http.StatusBadRequest)
		return
	}
	if config.CostWeight <= 0 && config.CO2Weight <= 0 {
		config.CostWeight = 1
		config.CO2Weight = 1
	}
	if config.PopSize <= 0 {
		config.PopSize = 100
	}
	if config.Generations <= 0 {
		config.Generations = 50
	}

	job := s.jobManager.CreateJob(config)

	go runJob(context.Background(), s.jobManager, s.runStore, s.baseDir, s.predictor, s.bounds, job.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	response := map[string]interface{}{
		"id":          job.ID,
		"state":       job.State,
		"config":      job.Config,
		"best":        job.Best,
		"bestFitness": job.BestFitness,
		"feasible":    job.Feasible,
		"cost":        job.Cost,
		"co2":         job.CO2,
		"generation":  job.Generation,
		"elapsed":     elapsed.Seconds(),
		"startTime":   job.StartTime,
		"endTime":     job.EndTime,
		"error":       job.Error,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetResult handles GET /api/v1/jobs/:id/result, serving the
// persisted result.json of a completed run.
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if s.runStore == nil {
		http.Error(w, "Persistence disabled", http.StatusNotFound)
		return
	}

	result, err := s.runStore.LoadResult(jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "No result yet", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to load result: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// readTrace loads the recorded trace of a job from disk.
func (s *Server) readTrace(jobID string) ([]store.TraceEntry, error) {
	tr, err := store.NewTraceReader(s.baseDir, jobID)
	if err != nil {
		return nil, err
	}
	defer tr.Close()
	return tr.ReadAll()
}

// handleGetTraceCSV handles GET /api/v1/jobs/:id/trace.csv
func (s *Server) handleGetTraceCSV(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	entries, err := s.readTrace(jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "No trace yet", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to read trace: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-trace.csv", jobID))

	cw := csv.NewWriter(w)
	cw.Write([]string{"generation", "fitness", "cost", "co2", "feasible"})
	for _, e := range entries {
		cw.Write([]string{
			strconv.Itoa(e.Generation),
			strconv.FormatFloat(e.Fitness, 'g', -1, 64),
			strconv.FormatFloat(e.Cost, 'g', -1, 64),
			strconv.FormatFloat(e.CO2, 'g', -1, 64),
			strconv.FormatBool(e.Feasible),
		})
	}
	cw.Flush()
}

// handleGetTraceChart handles GET /api/v1/jobs/:id/trace.html
func (s *Server) handleGetTraceChart(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	entries, err := s.readTrace(jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "No trace yet", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to read trace: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderTraceChart(w, jobID, entries); err != nil {
		slog.Error("Failed to render trace chart", "job_id", jobID, "error", err)
	}
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
