// Package server exposes the batch operations over HTTP. Both endpoints are
// synchronous: the response returns once the underlying run finishes.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/guestlist-ops/ticket-reconciler/internal/pipeline"
	"github.com/guestlist-ops/ticket-reconciler/internal/reconcile"
)

type Server struct {
	processor  *pipeline.Processor
	reconciler *reconcile.Service
	logger     *slog.Logger
}

func New(processor *pipeline.Processor, reconciler *reconcile.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{processor: processor, reconciler: reconciler, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest-and-match", s.handleIngestAndMatch)
	mux.HandleFunc("POST /step2-commit", s.handleCommit)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// handleIngestAndMatch runs extraction over the inbox and then suggests
// registry matches for the new rows, leaving approvals for a human.
func (s *Server) handleIngestAndMatch(w http.ResponseWriter, r *http.Request) {
	runStats, err := s.processor.Run(r.Context())
	if err != nil {
		s.fail(w, "ingest", err)
		return
	}
	suggestStats, err := s.reconciler.Suggest(r.Context())
	if err != nil {
		s.fail(w, "suggest", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ingested and matched",
		"ingest":  runStats,
		"suggest": suggestStats,
	})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reconciler.Commit(r.Context())
	if err != nil {
		s.fail(w, "commit", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "step2 completed",
		"commit": stats,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error("server.request.failed", "op", op, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("server.response.encode_failed", "error", err)
	}
}
