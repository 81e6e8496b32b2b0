// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/morsedrill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for drill data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS symbol_totals (
			course TEXT NOT NULL,
			symbol TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			successes INTEGER NOT NULL,
			PRIMARY KEY (course, symbol)
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			course TEXT NOT NULL,
			alphabet TEXT NOT NULL,
			unlocked INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_symbol_stats (
			session_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (session_id, symbol)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_symbol_stats_symbol ON session_symbol_stats(symbol);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadTotals returns the attempt records of a course.
func (s *Store) LoadTotals(ctx context.Context, course string) ([]model.SymbolTotals, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, attempts, successes FROM symbol_totals WHERE course = ? ORDER BY symbol`, course)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.SymbolTotals
	for rows.Next() {
		var t model.SymbolTotals
		if err := rows.Scan(&t.Symbol, &t.Attempts, &t.Successes); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveTotals upserts the attempt records of a course.
func (s *Store) SaveTotals(ctx context.Context, course string, totals []model.SymbolTotals) (err error) {
	if len(totals) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO symbol_totals (course, symbol, attempts, successes) VALUES (?, ?, ?, ?)
		 ON CONFLICT(course, symbol) DO UPDATE SET attempts = excluded.attempts, successes = excluded.successes`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, t := range totals {
		if _, err = stmt.ExecContext(ctx, course, t.Symbol, t.Attempts, t.Successes); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ResetTotals deletes the attempt records of a course, or of every course when
// course is empty. Session history is kept.
func (s *Store) ResetTotals(ctx context.Context, course string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM symbol_totals WHERE (? = '' OR course = ?)`, course, course)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertSession stores a completed session and its per-symbol stats. A session
// without an ID gets a fresh UUID.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, symbols []model.SymbolStats) (id string, err error) {
	id = stats.ID
	if id == "" {
		id = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, course, alphabet, unlocked, correct, incorrect, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.Course,
		stats.Alphabet,
		stats.Unlocked,
		stats.Correct,
		stats.Incorrect,
		stats.DurationMs,
	); err != nil {
		return "", err
	}

	if len(symbols) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_symbol_stats (session_id, symbol, correct, incorrect, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ss := range symbols {
			if _, err = stmt.ExecContext(ctx, id, ss.Symbol, ss.Correct, ss.Incorrect, ss.LatencySumMs, ss.LatencyCount); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetWeakSymbols aggregates symbol stats over the most recent sessions.
func (s *Store) GetWeakSymbols(ctx context.Context, window int, course string) ([]model.SymbolAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR course = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT ss.symbol, SUM(ss.correct), SUM(ss.incorrect), SUM(ss.latency_sum_ms), SUM(ss.latency_count)
	FROM session_symbol_stats ss
	JOIN recent_sessions r ON r.id = ss.session_id
	GROUP BY ss.symbol`

	rows, err := s.db.QueryContext(ctx, query, course, course, window)
	if err != nil {
		return nil, err
	}
	return scanAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Course != "" {
		clauses = append(clauses, "course = ?")
		args = append(args, cfg.Course)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, correct, incorrect, unlocked, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Correct, &agg.Incorrect, &agg.Unlocked, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListSymbolAggregatesForSessions aggregates per-symbol stats across sessions.
func (s *Store) ListSymbolAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.SymbolAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT symbol, SUM(correct), SUM(incorrect), SUM(latency_sum_ms), SUM(latency_count)
		FROM session_symbol_stats
		WHERE session_id IN (%s)
		GROUP BY symbol`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanAggregates(rows)
}

func scanAggregates(rows *sql.Rows) ([]model.SymbolAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.SymbolAggregate
	for rows.Next() {
		var agg model.SymbolAggregate
		if err := rows.Scan(&agg.Symbol, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
