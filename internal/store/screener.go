package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// ScreenerRepo keeps the latest full screening run per (year, basis).
// ⭐ SSOT: 스크리너 실행 결과 보관은 이 저장소에서만
type ScreenerRepo struct {
	db *pgxpool.Pool
}

// NewScreenerRepo creates a new ScreenerRepo instance
func NewScreenerRepo(db *pgxpool.Pool) *ScreenerRepo {
	return &ScreenerRepo{db: db}
}

// SaveRun replaces the stored run for the result's (year, basis)
func (r *ScreenerRepo) SaveRun(ctx context.Context, result *contracts.ScreenerResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal screener result: %w", err)
	}

	query := `
		INSERT INTO data.screener_runs (
			year, fs_div, run_limit, payload, generated_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (year, fs_div) DO UPDATE SET
			run_limit    = EXCLUDED.run_limit,
			payload      = EXCLUDED.payload,
			generated_at = EXCLUDED.generated_at
	`

	_, err = r.db.Exec(ctx, query,
		result.Year, string(result.FsDiv), result.Limit, payload, result.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert screener run: %w", err)
	}

	return nil
}

// LatestRun returns the stored run for (year, basis), or nil when none
// has been saved yet. 미스는 오류가 아니다.
func (r *ScreenerRepo) LatestRun(ctx context.Context, year int, fsDiv contracts.FsDiv) (*contracts.ScreenerResult, error) {
	query := `
		SELECT payload
		FROM data.screener_runs
		WHERE year = $1 AND fs_div = $2
	`

	var payload []byte
	err := r.db.QueryRow(ctx, query, year, string(fsDiv)).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query screener run: %w", err)
	}

	var result contracts.ScreenerResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal screener result: %w", err)
	}

	return &result, nil
}

// DeleteRun drops the stored run for (year, basis)
func (r *ScreenerRepo) DeleteRun(ctx context.Context, year int, fsDiv contracts.FsDiv) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM data.screener_runs WHERE year = $1 AND fs_div = $2`,
		year, string(fsDiv),
	)
	if err != nil {
		return fmt.Errorf("delete screener run: %w", err)
	}
	return nil
}
