// Package server exposes the report pipeline over HTTP for the form-driven
// front ends. One report request maps to at most one completion exchange.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sentinel-hse/sentinel/pkg/budget"
	"github.com/sentinel-hse/sentinel/pkg/completion"
	"github.com/sentinel-hse/sentinel/pkg/config"
	"github.com/sentinel-hse/sentinel/pkg/export"
	"github.com/sentinel-hse/sentinel/pkg/history"
	"github.com/sentinel-hse/sentinel/pkg/models"
	"github.com/sentinel-hse/sentinel/pkg/prompt"
	"github.com/sentinel-hse/sentinel/pkg/usage"
)

// Server handles report submission, stats, history, and export.
type Server struct {
	cfg      *config.Config
	client   *completion.Client
	acc      *usage.Accumulator
	store    usage.Store
	archive  *history.Archive
	enforcer *budget.Enforcer
	token    string
	mux      *http.ServeMux
}

// New creates a Server wired with all dependencies. archive and enforcer may
// be nil when disabled; token may be empty to disable inbound auth.
func New(cfg *config.Config, client *completion.Client, acc *usage.Accumulator, store usage.Store, archive *history.Archive, enforcer *budget.Enforcer, token string) *Server {
	s := &Server{
		cfg:      cfg,
		client:   client,
		acc:      acc,
		store:    store,
		archive:  archive,
		enforcer: enforcer,
		token:    token,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /v1/reports", s.auth(s.handleCreateReport))
	s.mux.HandleFunc("GET /v1/reports", s.auth(s.handleListReports))
	s.mux.HandleFunc("GET /v1/reports/{id}/export", s.auth(s.handleExportReport))
	s.mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("sentinel listening on %s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSONError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next(w, r)
	}
}

// reportResponse is the body returned by POST /v1/reports. Failed
// completions carry no ID: nothing was recorded or archived.
type reportResponse struct {
	ID     string                  `json:"id,omitempty"`
	Kind   models.AnalysisKind     `json:"kind"`
	Result models.CompletionResult `json:"result"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// Spend caps apply to live completions only.
	if s.enforcer != nil && !s.client.IsDemo() {
		if err := s.enforcer.Check(r.Context(), req.Kind); err != nil {
			if errors.Is(err, budget.ErrBudgetExceeded) {
				writeJSONError(w, http.StatusTooManyRequests, "spend budget exceeded")
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "budget check failed")
			return
		}
	}

	start := time.Now()
	system, user := prompt.Build(req)
	res := s.client.Complete(r.Context(), req, system, user)

	resp := reportResponse{Kind: req.Kind, Result: res}
	if res.Success {
		resp.ID = uuid.NewString()
		s.recordSuccess(r.Context(), resp.ID, req, res, time.Since(start))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recordSuccess(ctx context.Context, id string, req models.AnalysisRequest, res models.CompletionResult, latency time.Duration) {
	now := time.Now().UTC()
	s.acc.Record(res)

	if s.store != nil {
		if err := s.store.Record(ctx, models.ReportRecord{
			Kind:             req.Kind,
			Model:            res.Model,
			PromptTokens:     res.PromptTokens,
			CompletionTokens: res.CompletionTokens,
			TotalTokens:      res.Tokens,
			Cost:             res.Cost,
			CreatedAt:        now,
		}); err != nil {
			log.Printf("usage record error: %v", err)
		}
	}

	if s.archive != nil {
		if err := s.archive.Save(ctx, models.ArchivedReport{
			ID:        id,
			Kind:      req.Kind,
			Request:   req,
			Text:      res.Text,
			Model:     res.Model,
			Tokens:    res.Tokens,
			Cost:      res.Cost,
			Demo:      s.client.IsDemo(),
			LatencyMs: latency.Milliseconds(),
			CreatedAt: now,
		}); err != nil {
			log.Printf("history save error: %v", err)
		}
	}
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeJSONError(w, http.StatusNotFound, "history disabled")
		return
	}

	opts := models.ArchiveQueryOpts{
		Kind: models.AnalysisKind(r.URL.Query().Get("kind")),
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse("2006-01-02", since)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid since date (use YYYY-MM-DD)")
			return
		}
		opts.Since = t
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit (must be a positive integer)")
			return
		}
		opts.Limit = n
	}

	reports, err := s.archive.Query(r.Context(), opts)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "query history failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeJSONError(w, http.StatusNotFound, "history disabled")
		return
	}

	format, err := export.Parse(defaultStr(r.URL.Query().Get("format"), "text"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.archive.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "report not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "load report failed")
		return
	}

	body, err := export.Render(format, rep)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.ID+"."+extension(format)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"session": s.acc.Snapshot()}

	if s.store != nil {
		summaries, err := s.store.Summary(r.Context(), "")
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "usage summary failed")
			return
		}
		out["by_model"] = summaries
	}

	if s.enforcer != nil {
		statuses, err := s.enforcer.StatusFor(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "budget status failed")
			return
		}
		out["budgets"] = statuses
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func extension(f export.Format) string {
	switch f {
	case export.FormatMarkdown:
		return "md"
	case export.FormatJSON:
		return "json"
	case export.FormatCSV:
		return "csv"
	default:
		return "txt"
	}
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"code":%d}}`, message, code)
}
