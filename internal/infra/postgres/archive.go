package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-visualizer/internal/domain"
)

// Archive stores committed loads in Postgres (snapshot as JSONB).
type Archive struct {
	pool *pgxpool.Pool
}

func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

// RecordLoad implements app.Recorder.
func (a *Archive) RecordLoad(ctx context.Context, record domain.LoadRecord) error {
	raw, err := json.Marshal(record.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO trivia_loads (dashboard_id, loaded_at, total_questions, category_count, snapshot) VALUES ($1, $2, $3, $4, $5)`,
		record.DashboardID, record.LoadedAt, record.TotalQuestions, record.CategoryCount, raw)
	if err != nil {
		return fmt.Errorf("insert load: %w", err)
	}
	return nil
}

// Recent returns the latest loads, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]domain.LoadRecord, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT id, dashboard_id, loaded_at, total_questions, category_count, snapshot FROM trivia_loads ORDER BY loaded_at DESC, id DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	defer rows.Close()

	records := make([]domain.LoadRecord, 0, limit)
	for rows.Next() {
		var (
			record domain.LoadRecord
			raw    []byte
		)
		if err := rows.Scan(&record.ID, &record.DashboardID, &record.LoadedAt, &record.TotalQuestions, &record.CategoryCount, &raw); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		if err := json.Unmarshal(raw, &record.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
