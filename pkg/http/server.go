package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/leowmjw/go-temporal-appearance/pkg/hcl"
	"github.com/leowmjw/go-temporal-appearance/pkg/metrics"
	"github.com/leowmjw/go-temporal-appearance/pkg/temporal"
)

const maxBodyBytes = 1 << 20

// Server represents the HTTP server for the appearance service
type Server struct {
	logger         *slog.Logger
	temporalClient client.Client
	store          temporal.ResultStore
	metrics        *metrics.Metrics
	addr           string
	taskQueue      string
}

// NewServer creates a new HTTP server. store and m may be nil.
func NewServer(logger *slog.Logger, temporalClient client.Client, store temporal.ResultStore, m *metrics.Metrics, addr, taskQueue string) *Server {
	if taskQueue == "" {
		taskQueue = temporal.DefaultTaskQueue
	}
	return &Server{
		logger:         logger,
		temporalClient: temporalClient,
		store:          store,
		metrics:        m,
		addr:           addr,
		taskQueue:      taskQueue,
	}
}

// Handler returns the routed handler wrapped in the logging middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /lessons/{id}/appearance", s.handleAppearance)
	mux.HandleFunc("POST /lessons/appearance", s.handleBatch)
	mux.HandleFunc("GET /lessons/{id}/appearance", s.handleGetResult)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return s.loggingMiddleware(mux)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Single lesson computation
func (s *Server) handleAppearance(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("id")
	if lessonID == "" {
		s.respondError(w, http.StatusBadRequest, "lesson ID is required")
		return
	}

	request, err := s.decodeRequest(w, r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	request.LessonID = lessonID

	if _, err := request.Window(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("Computing appearance", "lessonID", lessonID,
		"pupil", len(request.Intervals.Pupil), "tutor", len(request.Intervals.Tutor))

	workflowRun, err := s.temporalClient.ExecuteWorkflow(
		r.Context(),
		client.StartWorkflowOptions{
			ID:        temporal.GenerateAppearanceWorkflowID(lessonID),
			TaskQueue: s.taskQueue,
		},
		temporal.AppearanceWorkflow,
		*request,
	)
	if err != nil {
		s.logger.Error("Failed to start appearance workflow", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to start computation")
		return
	}

	var result *temporal.AppearanceResult
	if err := workflowRun.Get(r.Context(), &result); err != nil {
		s.logger.Error("Appearance workflow failed", "lessonID", lessonID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "appearance computation failed")
		return
	}

	s.logger.Info("Appearance computed", "lessonID", lessonID, "seconds", result.Seconds)
	s.respondJSON(w, http.StatusOK, result)
}

// Batch computation over many lessons
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	requests, err := s.decodeBatch(w, r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(requests) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one lesson is required")
		return
	}

	seen := make(map[string]bool, len(requests))
	for _, request := range requests {
		if request.LessonID == "" {
			s.respondError(w, http.StatusBadRequest, "every lesson needs a lesson_id")
			return
		}
		if seen[request.LessonID] {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("duplicate lesson %q", request.LessonID))
			return
		}
		seen[request.LessonID] = true
	}

	s.logger.Info("Computing appearance batch", "lessons", len(requests))

	workflowRun, err := s.temporalClient.ExecuteWorkflow(
		r.Context(),
		client.StartWorkflowOptions{
			ID:        temporal.GenerateBatchWorkflowID(),
			TaskQueue: s.taskQueue,
		},
		temporal.BatchAppearanceWorkflow,
		requests,
	)
	if err != nil {
		s.logger.Error("Failed to start batch workflow", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to start batch")
		return
	}

	var result *temporal.BatchResult
	if err := workflowRun.Get(r.Context(), &result); err != nil {
		s.logger.Error("Batch workflow failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "batch computation failed")
		return
	}

	s.logger.Info("Batch computed", "batchID", result.BatchID,
		"results", len(result.Results), "failed", len(result.Failed), "mismatched", len(result.Mismatched))
	s.respondJSON(w, http.StatusOK, result)
}

// Stored result lookup
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("id")
	if s.store == nil {
		s.respondError(w, http.StatusNotFound, "result storage is disabled")
		return
	}

	result, err := s.store.GetResult(r.Context(), lessonID)
	if errors.Is(err, temporal.ErrResultNotFound) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("no result for lesson %q", lessonID))
		return
	}
	if err != nil {
		s.logger.Error("Failed to load result", "lessonID", lessonID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load result")
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// Health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// decodeRequest reads one lesson as JSON or as a single HCL lesson block
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*temporal.AppearanceRequest, error) {
	body, contentType, err := s.readBody(w, r)
	if err != nil {
		return nil, err
	}

	if contentType == hcl.ContentTypeHCL {
		return hcl.ParseHCLLesson(string(body))
	}

	var request temporal.AppearanceRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	return &request, nil
}

// decodeBatch reads a JSON array of lessons or an HCL document with many lesson blocks
func (s *Server) decodeBatch(w http.ResponseWriter, r *http.Request) ([]temporal.AppearanceRequest, error) {
	body, contentType, err := s.readBody(w, r)
	if err != nil {
		return nil, err
	}

	if contentType == hcl.ContentTypeHCL {
		return hcl.ParseHCLLessons(string(body))
	}

	var requests []temporal.AppearanceRequest
	if err := json.Unmarshal(body, &requests); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	return requests, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	contentType, err := hcl.DetectContentType(r)
	if err != nil {
		return nil, "", err
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read request body: %w", err)
	}

	s.logger.Debug("Decoded request body", "contentType", contentType, "bytes", len(body))
	return body, contentType, nil
}

// Middleware for request logging
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		// The mux fills in Pattern while routing
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Method, route, wrapper.statusCode, duration.Seconds())
		}

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", duration,
			"user_agent", r.UserAgent(),
		)
	})
}

// Response helpers
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Warn("HTTP error response", "status", status, "message", message)
	s.respondJSON(w, status, map[string]string{"error": message})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
