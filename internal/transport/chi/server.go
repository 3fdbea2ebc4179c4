// Package chi is the HTTP adapter: one question-answering endpoint plus
// the liveness, health, and metrics surface.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/twinrag/internal/domain"
	logpkg "github.com/kailas-cloud/twinrag/internal/logger"
	healthuc "github.com/kailas-cloud/twinrag/internal/usecase/health"
)

const serviceName = "Digital Twin RAG API"

// Asker is the pipeline contract the server consumes.
type Asker interface {
	Ask(ctx context.Context, req domain.AskRequest) (domain.AskResult, error)
}

// Server handles the HTTP API.
type Server struct {
	pipeline Asker
	health   *healthuc.Service
	features []string
	logger   *zap.Logger
}

// NewServer creates an HTTP API server. features is the capability list
// reported on GET /.
func NewServer(pipeline Asker, health *healthuc.Service, features []string, logger *zap.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		health:   health,
		features: features,
		logger:   logger,
	}
}

// ragRequest is the POST /rag payload. enhance_query and format_response
// default to true when absent.
type ragRequest struct {
	Question       string `json:"question"`
	EnhanceQuery   *bool  `json:"enhance_query,omitempty"`
	FormatResponse *bool  `json:"format_response,omitempty"`
	TopK           int    `json:"top_k,omitempty"`
}

type ragResponse struct {
	Answer           string `json:"answer"`
	OriginalQuestion string `json:"original_question,omitempty"`
	EnhancedQuestion string `json:"enhanced_question,omitempty"`
	Matches          int    `json:"matches,omitempty"`
}

// Rag handles POST /rag.
func (s *Server) Rag(w http.ResponseWriter, r *http.Request) {
	var req ragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	enhance := derefBool(req.EnhanceQuery, true)
	result, err := s.pipeline.Ask(r.Context(), domain.AskRequest{
		Question:       req.Question,
		EnhanceQuery:   enhance,
		FormatResponse: derefBool(req.FormatResponse, true),
		TopK:           req.TopK,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := ragResponse{
		Answer:  result.Answer,
		Matches: result.Matches,
	}
	if enhance {
		resp.OriginalQuestion = result.OriginalQuestion
		resp.EnhancedQuestion = result.EnhancedQuestion
	}
	writeJSON(w, http.StatusOK, resp)
}

// Root handles GET /: the liveness and feature report.
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"service":  serviceName,
		"features": s.features,
	})
}

// HealthCheck handles GET /health. A degraded report is 503 so load
// balancers rotate the instance out.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	switch {
	case errors.Is(err, domain.ErrQuestionRequired):
		writeError(w, http.StatusBadRequest, "'question' must be a non-empty string")
	case errors.Is(err, domain.ErrGenerationFailed):
		log.Error("Generation failed", zap.Error(err))
		// The full wrapped message names the providers that failed.
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		log.Error("Internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
