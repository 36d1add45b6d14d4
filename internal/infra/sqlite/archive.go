// Package sqlite keeps the load archive in a local SQLite file, for
// single-instance deployments without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trivia-visualizer/internal/domain"

	_ "modernc.org/sqlite"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS trivia_loads (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	dashboard_id    TEXT    NOT NULL,
	loaded_at       TEXT    NOT NULL,
	total_questions INTEGER NOT NULL,
	category_count  INTEGER NOT NULL,
	snapshot        TEXT    NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS trivia_loads_loaded_at_idx ON trivia_loads (loaded_at)`,
}

// timeLayout is fixed-width so loaded_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Archive stores committed loads in SQLite.
type Archive struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordLoad implements app.Recorder.
func (a *Archive) RecordLoad(ctx context.Context, record domain.LoadRecord) error {
	raw, err := json.Marshal(record.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO trivia_loads (dashboard_id, loaded_at, total_questions, category_count, snapshot) VALUES (?, ?, ?, ?, ?)`,
		record.DashboardID, record.LoadedAt.UTC().Format(timeLayout), record.TotalQuestions, record.CategoryCount, string(raw))
	if err != nil {
		return fmt.Errorf("insert load: %w", err)
	}
	return nil
}

// Recent returns the latest loads, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]domain.LoadRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, dashboard_id, loaded_at, total_questions, category_count, snapshot FROM trivia_loads ORDER BY loaded_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	defer rows.Close()

	records := make([]domain.LoadRecord, 0, limit)
	for rows.Next() {
		var (
			record   domain.LoadRecord
			loadedAt string
			raw      string
		)
		if err := rows.Scan(&record.ID, &record.DashboardID, &loadedAt, &record.TotalQuestions, &record.CategoryCount, &raw); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		if record.LoadedAt, err = time.Parse(timeLayout, loadedAt); err != nil {
			return nil, fmt.Errorf("parse loaded_at: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &record.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
