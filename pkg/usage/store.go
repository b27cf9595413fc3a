package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sentinel-hse/sentinel/pkg/models"
)

// Store persists and aggregates per-report usage.
type Store interface {
	// Record stores one usage row for a completed report.
	Record(ctx context.Context, rec models.ReportRecord) error
	// Query returns usage rows for a kind since a given time. An empty kind
	// matches all kinds.
	Query(ctx context.Context, kind models.AnalysisKind, since time.Time) ([]models.ReportRecord, error)
	// TotalCost returns estimated spend since a given time, optionally
	// restricted to one kind.
	TotalCost(ctx context.Context, kind models.AnalysisKind, since time.Time) (float64, error)
	// Summary returns aggregated usage grouped by kind and model.
	Summary(ctx context.Context, kind models.AnalysisKind) ([]models.UsageSummary, error)
	// Close releases resources.
	Close() error
}

// SQLiteStore implements Store with a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const createUsageTable = `
CREATE TABLE IF NOT EXISTS report_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	model TEXT NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	cost REAL NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_usage_kind_time ON report_usage(kind, created_at);
`

// NewStore creates a SQLiteStore and runs auto-migration. The store may
// share its database file with the history archive, so the connection uses
// the same WAL and busy-timeout settings.
func NewStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}

	if _, err := db.Exec(createUsageTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate usage db: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record stores one usage row.
func (s *SQLiteStore) Record(ctx context.Context, rec models.ReportRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_usage (kind, model, prompt_tokens, completion_tokens, total_tokens, cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Kind), rec.Model, rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens, rec.Cost, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// Query returns usage rows for a kind since a given time.
func (s *SQLiteStore) Query(ctx context.Context, kind models.AnalysisKind, since time.Time) ([]models.ReportRecord, error) {
	query := `SELECT id, kind, model, prompt_tokens, completion_tokens, total_tokens, cost, created_at
		 FROM report_usage WHERE created_at >= ?`
	args := []any{since}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var records []models.ReportRecord
	for rows.Next() {
		var r models.ReportRecord
		if err := rows.Scan(&r.ID, &r.Kind, &r.Model, &r.PromptTokens, &r.CompletionTokens, &r.TotalTokens, &r.Cost, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// TotalCost returns estimated spend since a given time.
func (s *SQLiteStore) TotalCost(ctx context.Context, kind models.AnalysisKind, since time.Time) (float64, error) {
	query := `SELECT COALESCE(SUM(cost), 0) FROM report_usage WHERE created_at >= ?`
	args := []any{since}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}

	var total float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("total cost: %w", err)
	}
	return total, nil
}

// Summary returns aggregated usage grouped by kind and model.
func (s *SQLiteStore) Summary(ctx context.Context, kind models.AnalysisKind) ([]models.UsageSummary, error) {
	query := `SELECT kind, model, COUNT(*), SUM(prompt_tokens), SUM(completion_tokens), SUM(total_tokens), SUM(cost)
		 FROM report_usage`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` GROUP BY kind, model ORDER BY kind, model`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.UsageSummary
	for rows.Next() {
		var sum models.UsageSummary
		if err := rows.Scan(&sum.Kind, &sum.Model, &sum.RequestCount, &sum.TotalPrompt, &sum.TotalCompletion, &sum.TotalTokens, &sum.TotalCost); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
