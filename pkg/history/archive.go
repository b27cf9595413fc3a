// Package history archives completed reports in a SQLite database with a
// configurable retention window. Archived reports feed the history command
// and the export endpoints.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sentinel-hse/sentinel/pkg/models"
)

// Archive writes and queries archived reports.
type Archive struct {
	db            *sql.DB
	retentionDays int
	done          chan struct{}
	wg            sync.WaitGroup
}

// New opens the archive database, creates the schema, and starts the
// retention sweep. retentionDays <= 0 disables the sweep.
func New(dbPath string, retentionDays int) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	a := &Archive{
		db:            db,
		retentionDays: retentionDays,
		done:          make(chan struct{}),
	}

	if retentionDays > 0 {
		a.wg.Add(1)
		go a.retentionLoop()
	}

	return a, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS reports (
		id            TEXT PRIMARY KEY,
		kind          TEXT NOT NULL,
		request_json  TEXT NOT NULL,
		report_text   TEXT NOT NULL,
		model         TEXT NOT NULL,
		total_tokens  INTEGER NOT NULL,
		cost          REAL NOT NULL,
		demo          INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_kind ON reports(kind)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at)`)
	return err
}

// Save archives one completed report.
func (a *Archive) Save(ctx context.Context, rep models.ArchivedReport) error {
	if a == nil || a.db == nil {
		return nil
	}

	reqJSON, err := json.Marshal(rep.Request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports
		(id, kind, request_json, report_text, model, total_tokens, cost, demo, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, string(rep.Kind), string(reqJSON), rep.Text, rep.Model,
		rep.Tokens, rep.Cost, rep.Demo, rep.LatencyMs, rep.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Get returns one archived report by ID, or sql.ErrNoRows if absent.
func (a *Archive) Get(ctx context.Context, id string) (models.ArchivedReport, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, kind, request_json, report_text, model, total_tokens, cost, demo, latency_ms, created_at
		 FROM reports WHERE id = ?`, id)
	return scanReport(row.Scan)
}

// Query returns archived reports matching the given options, newest first.
func (a *Archive) Query(ctx context.Context, opts models.ArchiveQueryOpts) ([]models.ArchivedReport, error) {
	q := `SELECT id, kind, request_json, report_text, model, total_tokens, cost, demo, latency_ms, created_at
		FROM reports WHERE 1=1`
	var args []any

	if opts.Kind != "" {
		q += " AND kind = ?"
		args = append(args, string(opts.Kind))
	}
	if !opts.Since.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, opts.Since)
	}

	q += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " LIMIT ?"
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var reports []models.ArchivedReport
	for rows.Next() {
		rep, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func scanReport(scan func(dest ...any) error) (models.ArchivedReport, error) {
	var rep models.ArchivedReport
	var reqJSON string
	if err := scan(
		&rep.ID, &rep.Kind, &reqJSON, &rep.Text, &rep.Model,
		&rep.Tokens, &rep.Cost, &rep.Demo, &rep.LatencyMs, &rep.CreatedAt,
	); err != nil {
		return rep, err
	}
	if err := json.Unmarshal([]byte(reqJSON), &rep.Request); err != nil {
		return rep, fmt.Errorf("decode archived request: %w", err)
	}
	return rep, nil
}

// Cleanup deletes reports older than the retention window.
func (a *Archive) Cleanup(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -a.retentionDays)
	res, err := a.db.ExecContext(ctx, `DELETE FROM reports WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close stops the retention goroutine and closes the database.
func (a *Archive) Close() error {
	close(a.done)
	a.wg.Wait()
	return a.db.Close()
}

func (a *Archive) retentionLoop() {
	defer a.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			_, _ = a.Cleanup(ctx)
			cancel()
		}
	}
}
