package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// RunHistoryRepo records pipeline executions for diagnostics
// ⭐ SSOT: 실행 이력 저장은 이 저장소에서만
type RunHistoryRepo struct {
	db *pgxpool.Pool
}

// NewRunHistoryRepo creates a new RunHistoryRepo instance
func NewRunHistoryRepo(db *pgxpool.Pool) *RunHistoryRepo {
	return &RunHistoryRepo{db: db}
}

// Record inserts one run entry and fills in its assigned ID
func (r *RunHistoryRepo) Record(ctx context.Context, rec *contracts.RunRecord) error {
	query := `
		INSERT INTO data.run_history (
			kind, name, year, fs_div, success, detail, error_msg,
			started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		rec.Kind, rec.Name, rec.Year, string(rec.FsDiv),
		rec.Success, rec.Detail, rec.ErrorMsg,
		rec.StartedAt, rec.FinishedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}

	return nil
}

// Recent returns the newest run entries, optionally filtered by kind
func (r *RunHistoryRepo) Recent(ctx context.Context, kind string, limit int) ([]*contracts.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, kind, name, year, fs_div, success, detail, error_msg,
		       started_at, finished_at
		FROM data.run_history
		WHERE ($1 = '' OR kind = $1)
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("list run history: %w", err)
	}
	defer rows.Close()

	var records []*contracts.RunRecord
	for rows.Next() {
		var rec contracts.RunRecord
		var fsDiv string
		if err := rows.Scan(
			&rec.ID, &rec.Kind, &rec.Name, &rec.Year, &fsDiv,
			&rec.Success, &rec.Detail, &rec.ErrorMsg,
			&rec.StartedAt, &rec.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.FsDiv = contracts.FsDiv(fsDiv)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
