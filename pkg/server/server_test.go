package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sentinel-hse/sentinel/pkg/budget"
	"github.com/sentinel-hse/sentinel/pkg/completion"
	"github.com/sentinel-hse/sentinel/pkg/config"
	"github.com/sentinel-hse/sentinel/pkg/history"
	"github.com/sentinel-hse/sentinel/pkg/models"
	"github.com/sentinel-hse/sentinel/pkg/usage"
)

type testEnv struct {
	srv     *Server
	acc     *usage.Accumulator
	store   *usage.SQLiteStore
	archive *history.Archive
}

func newTestEnv(t *testing.T, client *completion.Client, enforcer func(usage.Store) *budget.Enforcer) *testEnv {
	t.Helper()
	dir := t.TempDir()

	store, err := usage.NewStore(filepath.Join(dir, "usage.db"))
	if err != nil {
		t.Fatalf("open usage store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	archive, err := history.New(filepath.Join(dir, "history.db"), 0)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { archive.Close() })

	acc := usage.NewAccumulator()
	cfg := config.Default()

	var enf *budget.Enforcer
	if enforcer != nil {
		enf = enforcer(store)
	}

	return &testEnv{
		srv:     New(cfg, client, acc, store, archive, enf, ""),
		acc:     acc,
		store:   store,
		archive: archive,
	}
}

func demoClient() *completion.Client {
	return completion.New(completion.Demo(), completion.Options{})
}

func postReport(t *testing.T, srv *Server, req models.AnalysisRequest) (*httptest.ResponseRecorder, reportResponse) {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/reports", bytes.NewReader(body)))

	var resp reportResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, resp
}

func incidentRequest() models.AnalysisRequest {
	return models.NewIncidentRequest(models.IncidentFields{
		Description: "Worker slipped on oil patch",
		Severity:    "3 - Serious",
		Location:    "Plant B",
	})
}

func TestCreateReportDemo(t *testing.T) {
	env := newTestEnv(t, demoClient(), nil)

	rec, resp := postReport(t, env.srv, incidentRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !resp.Result.Success {
		t.Fatalf("expected success, got: %s", resp.Result.Text)
	}
	if !strings.Contains(resp.Result.Text, "INCIDENT ANALYSIS") {
		t.Errorf("report missing incident header:\n%s", resp.Result.Text)
	}
	if !strings.Contains(resp.Result.Text, "Plant B") {
		t.Errorf("report missing submitted location")
	}
	if resp.Result.Tokens <= 0 || resp.Result.Cost <= 0 {
		t.Errorf("tokens = %d, cost = %f, want both positive", resp.Result.Tokens, resp.Result.Cost)
	}
	if resp.ID == "" {
		t.Error("successful report should carry an ID")
	}

	stats := env.acc.Snapshot()
	if stats.TotalReports != 1 {
		t.Errorf("TotalReports = %d, want 1", stats.TotalReports)
	}

	archived, err := env.archive.Get(t.Context(), resp.ID)
	if err != nil {
		t.Fatalf("archived report not found: %v", err)
	}
	if !archived.Demo {
		t.Error("archived report should be flagged demo")
	}
}

func TestCreateReportValidationFailsBeforeCompletion(t *testing.T) {
	env := newTestEnv(t, demoClient(), nil)

	req := models.NewIncidentRequest(models.IncidentFields{
		Description: "",
		Severity:    "3 - Serious",
	})
	rec, _ := postReport(t, env.srv, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "description") {
		t.Errorf("error should name the offending field: %s", rec.Body.String())
	}
	if stats := env.acc.Snapshot(); stats.TotalReports != 0 {
		t.Errorf("validation failure must not touch counters, got %d reports", stats.TotalReports)
	}
}

func TestCreateReportUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusUnauthorized)
	}))
	defer upstream.Close()

	cred, err := completion.Key("sk-test-key")
	if err != nil {
		t.Fatal(err)
	}
	client := completion.New(cred, completion.Options{BaseURL: upstream.URL})
	env := newTestEnv(t, client, nil)

	rec, resp := postReport(t, env.srv, incidentRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Result.Success {
		t.Fatal("expected failed result")
	}
	if !strings.Contains(resp.Result.Text, "401") {
		t.Errorf("failure text should carry upstream status: %s", resp.Result.Text)
	}
	if resp.ID != "" {
		t.Error("failed report must not be archived")
	}
	if stats := env.acc.Snapshot(); stats.TotalReports != 0 || stats.TotalCost != 0 {
		t.Errorf("failure must leave counters unchanged: %+v", stats)
	}
}

func TestCreateReportUpstreamTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer upstream.Close()

	cred, err := completion.Key("sk-test-key")
	if err != nil {
		t.Fatal(err)
	}
	client := completion.New(cred, completion.Options{BaseURL: upstream.URL, Timeout: 20 * time.Millisecond})
	env := newTestEnv(t, client, nil)

	_, resp := postReport(t, env.srv, incidentRequest())
	if resp.Result.Success {
		t.Fatal("expected failed result")
	}
	if !strings.Contains(resp.Result.Text, "timed out") {
		t.Errorf("timeout should produce a timeout-specific message: %s", resp.Result.Text)
	}
}

func TestCreateReportBudgetExceeded(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("completion must not be dispatched when budget is exhausted")
	}))
	defer upstream.Close()

	cred, err := completion.Key("sk-test-key")
	if err != nil {
		t.Fatal(err)
	}
	client := completion.New(cred, completion.Options{BaseURL: upstream.URL})

	env := newTestEnv(t, client, func(store usage.Store) *budget.Enforcer {
		return budget.New([]config.BudgetPolicy{{Period: "daily", MaxCost: 0.50}}, store)
	})

	// Pre-load spend past the cap.
	if err := env.store.Record(t.Context(), models.ReportRecord{
		Kind: models.KindIncident, Model: "deepseek-chat",
		TotalTokens: 100000, Cost: 0.60, CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	rec, _ := postReport(t, env.srv, incidentRequest())
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429: %s", rec.Code, rec.Body.String())
	}
}

func TestBudgetSkippedForDemo(t *testing.T) {
	env := newTestEnv(t, demoClient(), func(store usage.Store) *budget.Enforcer {
		return budget.New([]config.BudgetPolicy{{Period: "daily", MaxCost: 0}}, store)
	})

	rec, resp := postReport(t, env.srv, incidentRequest())
	if rec.Code != http.StatusOK || !resp.Result.Success {
		t.Fatalf("demo completion should bypass budget, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListAndExportReport(t *testing.T) {
	env := newTestEnv(t, demoClient(), nil)
	_, resp := postReport(t, env.srv, incidentRequest())

	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports?kind=incident", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Reports []models.ArchivedReport `json:"reports"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Reports) != 1 || list.Reports[0].ID != resp.ID {
		t.Fatalf("expected the archived report in listing, got %+v", list.Reports)
	}

	for _, tc := range []struct {
		format      string
		contentType string
		want        string
	}{
		{"text", "text/plain; charset=utf-8", "INCIDENT ANALYSIS"},
		{"markdown", "text/markdown; charset=utf-8", "## Analysis"},
		{"json", "application/json", `"kind"`},
		{"csv", "text/csv", "report_text"},
	} {
		rec := httptest.NewRecorder()
		url := fmt.Sprintf("/v1/reports/%s/export?format=%s", resp.ID, tc.format)
		env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tc.format, rec.Code)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != tc.contentType {
			t.Errorf("%s: content type = %q, want %q", tc.format, ct, tc.contentType)
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Errorf("%s: body missing %q", tc.format, tc.want)
		}
	}
}

func TestListReportsLimit(t *testing.T) {
	env := newTestEnv(t, demoClient(), nil)
	for range 3 {
		postReport(t, env.srv, incidentRequest())
	}

	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports?limit=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list struct {
		Reports []models.ArchivedReport `json:"reports"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Reports) != 1 {
		t.Errorf("limit=1: got %d reports, want 1", len(list.Reports))
	}

	for _, bad := range []string{"abc", "0", "-2"} {
		rec := httptest.NewRecorder()
		env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports?limit="+bad, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", bad, rec.Code)
		}
	}
}

func TestExportUnknownFormat(t *testing.T) {
	env := newTestEnv(t, demoClient(), nil)
	_, resp := postReport(t, env.srv, incidentRequest())

	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/"+resp.ID+"/export?format=pdf", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExportMissingReport(t *testing.T) {
	env := newTestEnv(t, demoClient(), nil)

	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/nope/export", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, demoClient(), nil)
	postReport(t, env.srv, incidentRequest())

	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Session models.UsageStats     `json:"session"`
		ByModel []models.UsageSummary `json:"by_model"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Session.TotalReports != 1 {
		t.Errorf("session TotalReports = %d, want 1", out.Session.TotalReports)
	}
	if len(out.ByModel) != 1 {
		t.Errorf("expected one model summary, got %d", len(out.ByModel))
	}
}

func TestAuthToken(t *testing.T) {
	cfg := config.Default()
	srv := New(cfg, demoClient(), usage.NewAccumulator(), nil, nil, nil, "secret-token")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", rec.Code)
	}

	// Health stays open for probes.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}
