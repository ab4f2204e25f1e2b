// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, orchestration,
// output serialization. It NEVER performs rating logic.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"freight-rating/core/orchestrator"
	"freight-rating/core/tariff"
	"freight-rating/core/types"
	"freight-rating/internal/errors"
)

// Server is the API server
type Server struct {
	orch    *orchestrator.Orchestrator
	tariffs *tariff.MemoryStore
	mux     *http.ServeMux
	version string
}

// NewServer creates a new API server. tariffs may be nil when rate
// cards are not served over HTTP.
func NewServer(version string, orch *orchestrator.Orchestrator, tariffs *tariff.MemoryStore) *Server {
	s := &Server{
		orch:    orch,
		tariffs: tariffs,
		mux:     http.NewServeMux(),
		version: version,
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /rate", s.handleRateLine)
	s.mux.HandleFunc("POST /rate/document", s.handleRateDocument)

	// Supporting endpoints
	s.mux.HandleFunc("GET /tariffs/{id}", s.handleTariff)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleRateLine handles POST /rate
func (s *Server) handleRateLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req RateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	in, err := ToLineInput(&req)
	if err != nil {
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	// Execute engine (NO RATING LOGIC HERE)
	result, err := s.orch.ComputeLine(ctx, in)
	if err != nil {
		s.writeComputeError(w, err)
		return
	}

	resp := ToLineResponse(result)
	resp.Metadata = &ResponseMetadata{
		RequestID:     uuid.NewString(),
		InputHash:     computeInputHash(&req),
		EngineVersion: s.version,
		DurationMs:    time.Since(start).Milliseconds(),
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// handleRateDocument handles POST /rate/document
func (s *Server) handleRateDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	lines := make([]types.RateLineInput, 0, len(req.Lines))
	resp := DocumentResponse{Lines: make([]DocumentLineResult, len(req.Lines))}
	mapped := make([]int, 0, len(req.Lines))

	for i := range req.Lines {
		in, err := ToLineInput(&req.Lines[i])
		if err != nil {
			// Mapping failures are per-line, like every other input
			// error; siblings still compute.
			resp.Lines[i] = DocumentLineResult{LineID: req.Lines[i].LineID, Error: err.Error()}
			continue
		}
		lines = append(lines, in)
		mapped = append(mapped, i)
	}

	outcomes := s.orch.ComputeDocument(ctx, lines)

	settled := make([]*types.RateLineResult, 0, len(outcomes))
	for j, outcome := range outcomes {
		i := mapped[j]
		if outcome.Err != nil {
			resp.Lines[i] = DocumentLineResult{LineID: lines[j].LineID, Error: outcome.Err.Error()}
			continue
		}
		resp.Lines[i] = DocumentLineResult{
			LineID: outcome.Result.LineID,
			Result: ToLineResponse(outcome.Result),
		}
		settled = append(settled, outcome.Result)
	}

	// Summary reads the settled snapshot; it never recomputes lines
	resp.Summary = orchestrator.Summarize(settled)
	resp.Metadata = &ResponseMetadata{
		RequestID:     uuid.NewString(),
		EngineVersion: s.version,
		DurationMs:    time.Since(start).Milliseconds(),
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// handleTariff handles GET /tariffs/{id}
func (s *Server) handleTariff(w http.ResponseWriter, r *http.Request) {
	if s.tariffs == nil {
		s.writeError(w, "NOT_SUPPORTED", "tariff listing not available", http.StatusNotFound)
		return
	}

	id := r.PathValue("id")
	rates := s.tariffs.Rates(id)
	if len(rates) == 0 {
		s.writeError(w, "NOT_FOUND", "tariff not found: "+id, http.StatusNotFound)
		return
	}

	s.writeJSON(w, TariffResponse{TariffID: id, Rates: rates}, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"version": s.version}, http.StatusOK)
}

// writeComputeError maps the error taxonomy to status codes: input and
// break table errors are the caller's, everything else is ours.
func (s *Server) writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsType(err, errors.TypeInput):
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
	case errors.IsType(err, errors.TypeBreakTable):
		s.writeError(w, "BREAK_TABLE_ERROR", err.Error(), http.StatusBadRequest)
	default:
		s.writeError(w, "ENGINE_ERROR", err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// computeInputHash produces a deterministic hash of the request for
// staleness detection at the caller
func computeInputHash(req *RateLineRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
