// Package history persists normalized analysis results in a local SQLite
// database so past results can be reviewed without re-running an analysis.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/follicleai/follicle"
)

// Store is a SQLite-backed analysis log. One writer at a time; SQLite does
// not benefit from more.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one stored analysis.
type Entry struct {
	// Result is the normalized analysis result as delivered to the caller.
	Result follicle.Result

	// Filename is the analyzed file's name.
	Filename string

	// Warnings are the quality advisories that accompanied the result.
	Warnings []string

	// Simulated records whether the result came from the simulator.
	Simulated bool

	// CreatedAt is when the entry was stored (UTC).
	CreatedAt time.Time
}

// DefaultDir returns the XDG data location for the history database.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "follicle")
}

// Open opens or creates the history database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("history: create directory: %w", err)
	}

	path := filepath.Join(dir, "history.db")
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: enable WAL: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS analyses (
    id                 TEXT PRIMARY KEY,
    filename           TEXT NOT NULL,
    density_score      INTEGER NOT NULL,
    density_category   TEXT NOT NULL,
    pattern_type       TEXT NOT NULL,
    thinning_level     TEXT NOT NULL,
    scalp_health_score INTEGER NOT NULL,
    hair_type          TEXT NOT NULL,
    hair_loss_risk     TEXT NOT NULL,
    dandruff_risk      TEXT NOT NULL,
    confidence         INTEGER NOT NULL,
    insights           TEXT NOT NULL,
    next_steps         TEXT NOT NULL,
    resources          TEXT NOT NULL,
    warnings           TEXT NOT NULL,
    simulated          INTEGER NOT NULL,
    result_timestamp   TEXT NOT NULL,
    processing_ms      INTEGER NOT NULL,
    created_at         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Save stores one analysis. Ordered string fields are serialized as JSON
// arrays to keep their order intact.
func (s *Store) Save(ctx context.Context, e Entry) error {
	insights, err := json.Marshal(e.Result.Insights)
	if err != nil {
		return fmt.Errorf("history: marshal insights: %w", err)
	}
	nextSteps, err := json.Marshal(e.Result.NextSteps)
	if err != nil {
		return fmt.Errorf("history: marshal next steps: %w", err)
	}
	resources, err := json.Marshal(e.Result.Resources)
	if err != nil {
		return fmt.Errorf("history: marshal resources: %w", err)
	}
	warnings, err := json.Marshal(e.Warnings)
	if err != nil {
		return fmt.Errorf("history: marshal warnings: %w", err)
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const q = `
INSERT INTO analyses (
    id, filename, density_score, density_category, pattern_type,
    thinning_level, scalp_health_score, hair_type, hair_loss_risk,
    dandruff_risk, confidence, insights, next_steps, resources, warnings,
    simulated, result_timestamp, processing_ms, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, q,
		e.Result.ID, e.Filename,
		e.Result.DensityScore, e.Result.DensityCategory, e.Result.PatternType,
		e.Result.ThinningLevel, e.Result.ScalpHealthScore, e.Result.HairType,
		e.Result.HairLossRisk, e.Result.DandruffRisk, e.Result.Confidence,
		string(insights), string(nextSteps), string(resources), string(warnings),
		boolToInt(e.Simulated), e.Result.Timestamp, e.Result.ProcessingTime,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("history: save: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. limit <= 0 returns
// everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	q := `
SELECT id, filename, density_score, density_category, pattern_type,
       thinning_level, scalp_health_score, hair_type, hair_loss_risk,
       dandruff_risk, confidence, insights, next_steps, resources, warnings,
       simulated, result_timestamp, processing_ms, created_at
FROM analyses
ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var insights, nextSteps, resources, warnings, createdAt string
		var simulated int
		if err := rows.Scan(
			&e.Result.ID, &e.Filename,
			&e.Result.DensityScore, &e.Result.DensityCategory, &e.Result.PatternType,
			&e.Result.ThinningLevel, &e.Result.ScalpHealthScore, &e.Result.HairType,
			&e.Result.HairLossRisk, &e.Result.DandruffRisk, &e.Result.Confidence,
			&insights, &nextSteps, &resources, &warnings,
			&simulated, &e.Result.Timestamp, &e.Result.ProcessingTime, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}

		if err := json.Unmarshal([]byte(insights), &e.Result.Insights); err != nil {
			return nil, fmt.Errorf("history: decode insights: %w", err)
		}
		if err := json.Unmarshal([]byte(nextSteps), &e.Result.NextSteps); err != nil {
			return nil, fmt.Errorf("history: decode next steps: %w", err)
		}
		if err := json.Unmarshal([]byte(resources), &e.Result.Resources); err != nil {
			return nil, fmt.Errorf("history: decode resources: %w", err)
		}
		if err := json.Unmarshal([]byte(warnings), &e.Warnings); err != nil {
			return nil, fmt.Errorf("history: decode warnings: %w", err)
		}
		e.Simulated = simulated != 0
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
