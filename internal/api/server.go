package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/walkthrough/internal/report"
)

// Server exposes a generated report over HTTP for preview tooling.
type Server struct {
	router *chi.Mux
	srv    *http.Server
	report *report.Report
	runID  string
}

func NewServer(port int, runID string, rep *report.Report) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		report: rep,
		runID:  runID,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/report", s.document)
	router.Get("/api/v1/report/blocks", s.blocks)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	slog.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) document(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.report.Render()))
}

type blockSummary struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Lines       int    `json:"lines"`
	Explanation string `json:"explanation"`
}

func (s *Server) blocks(w http.ResponseWriter, r *http.Request) {
	out := make([]blockSummary, len(s.report.Blocks))
	for i, b := range s.report.Blocks {
		out[i] = blockSummary{
			Index:       i + 1,
			Title:       b.Title,
			Lines:       report.CountLines(b.Code),
			Explanation: b.Explanation,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"run_id":   s.runID,
		"source":   s.report.SourceName,
		"language": s.report.Language,
		"model":    s.report.Model,
		"total":    len(out),
		"blocks":   out,
	})
}
