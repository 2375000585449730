// Package server provides the HTTP REST API for the skill matching
// platform: user profiles, job postings, recommendations, learning
// paths, and assessments.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/marcus/skillmatch/internal/db"
	"github.com/marcus/skillmatch/internal/ingest"
	"github.com/marcus/skillmatch/internal/server/ratelimit"
)

// DefaultAttemptQuestions is the number of bank questions drawn per
// assessment attempt when neither the config nor the request overrides
// it.
const DefaultAttemptQuestions = 5

// minBankQuestions is the smallest bank a skill needs before attempts
// can start.
const minBankQuestions = 3

// Server represents the HTTP server
type Server struct {
	httpServer       *http.Server
	db               *db.DB
	log              *zap.Logger
	ingestor         *ingest.Ingestor
	rateLimiter      *ratelimit.Limiter
	attemptQuestions int
}

// Config holds server configuration
type Config struct {
	Addr             string
	DatabaseURL      string
	AttemptQuestions int
	FetchTimeout     time.Duration
	UseBrowser       bool
}

// New creates a new server instance
func New(cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	attemptQuestions := cfg.AttemptQuestions
	if attemptQuestions <= 0 {
		attemptQuestions = DefaultAttemptQuestions
	}

	ingestor := ingest.New(log)
	ingestor.UseBrowser = cfg.UseBrowser
	if cfg.FetchTimeout > 0 {
		ingestor.FetchOptions.Timeout = cfg.FetchTimeout
	}

	s := &Server{
		db:               database,
		log:              log,
		ingestor:         ingestor,
		attemptQuestions: attemptQuestions,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// User profile endpoints
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)
	mux.HandleFunc("PUT /users/{id}/skills", s.handleReplaceSkills)
	mux.HandleFunc("GET /users/{id}/skills", s.handleListSkills)

	// Job posting endpoints
	mux.HandleFunc("POST /postings", s.handleCreatePosting)
	mux.HandleFunc("GET /postings", s.handleListPostings)
	mux.HandleFunc("GET /postings/{id}", s.handleGetPosting)
	mux.HandleFunc("PUT /postings/{id}", s.handleUpdatePosting)
	mux.HandleFunc("POST /postings/{id}/close", s.handleClosePosting)
	mux.HandleFunc("DELETE /postings/{id}", s.handleDeletePosting)
	mux.HandleFunc("POST /postings/ingest", s.handleIngestPostings)

	// Recommendation endpoints
	mux.HandleFunc("GET /users/{id}/recommendations", s.handleRecommendations)
	mux.HandleFunc("POST /recommendations/preview", s.handlePreview)

	// Learning path endpoints
	mux.HandleFunc("GET /users/{id}/learning-path", s.handleLearningPath)
	mux.HandleFunc("GET /users/{id}/outlook/{posting_id}", s.handleOutlook)

	// Assessment endpoints
	mux.HandleFunc("GET /assessments/skills", s.handleAssessableSkills)
	mux.HandleFunc("POST /users/{id}/attempts", s.handleStartAttempt)
	mux.HandleFunc("GET /users/{id}/attempts", s.handleListAttempts)
	mux.HandleFunc("GET /attempts/{id}", s.handleGetAttempt)
	mux.HandleFunc("POST /attempts/{id}/answers", s.handleSubmitAttempt)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRecovery(s.withRateLimit(s.withLogging(s.withCORS(mux)))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Browser-rendered ingest batches can run minutes
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until an interrupt or
// SIGTERM triggers a graceful shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.db.Close()
	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler so the
// logging middleware can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// withRecovery converts handler panics into 500 responses so one bad
// request never takes the process down.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.log.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Int("remaining", info.Remaining),
		zap.Time("reset", info.ResetTime),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
