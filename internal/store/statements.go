package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// StatementRepo persists collected raw statements as JSONB payloads.
// ⭐ SSOT: 원본 재무 데이터 저장은 이 저장소에서만
// 한 번 수집된 행은 refresh 시 통째로 교체된다.
type StatementRepo struct {
	db *pgxpool.Pool
}

// NewStatementRepo creates a new StatementRepo instance
func NewStatementRepo(db *pgxpool.Pool) *StatementRepo {
	return &StatementRepo{db: db}
}

// Save upserts one raw statement snapshot
func (r *StatementRepo) Save(ctx context.Context, stmt *contracts.RawStatement) error {
	payload, err := json.Marshal(stmt)
	if err != nil {
		return fmt.Errorf("marshal statement: %w", err)
	}

	query := `
		INSERT INTO data.statements (
			corp_code, year, fs_div, corp_name, stock_code,
			payload, data_source, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (corp_code, year, fs_div) DO UPDATE SET
			corp_name   = EXCLUDED.corp_name,
			stock_code  = EXCLUDED.stock_code,
			payload     = EXCLUDED.payload,
			data_source = EXCLUDED.data_source,
			fetched_at  = EXCLUDED.fetched_at
	`

	_, err = r.db.Exec(ctx, query,
		stmt.CorpCode, stmt.Year, string(stmt.FsDiv), stmt.CorpName, stmt.StockCode,
		payload, stmt.DataSource, stmt.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert statement for %s: %w", stmt.CorpCode, err)
	}

	return nil
}

// Get retrieves one statement snapshot
func (r *StatementRepo) Get(ctx context.Context, corpCode string, year int, fsDiv contracts.FsDiv) (*contracts.RawStatement, error) {
	query := `
		SELECT payload
		FROM data.statements
		WHERE corp_code = $1 AND year = $2 AND fs_div = $3
	`

	var payload []byte
	err := r.db.QueryRow(ctx, query, corpCode, year, string(fsDiv)).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %s (%d/%s)", contracts.ErrMissingData, corpCode, year, fsDiv)
		}
		return nil, fmt.Errorf("query statement: %w", err)
	}

	var stmt contracts.RawStatement
	if err := json.Unmarshal(payload, &stmt); err != nil {
		return nil, fmt.Errorf("unmarshal statement: %w", err)
	}

	return &stmt, nil
}

// Exists reports whether a statement snapshot is already collected
func (r *StatementRepo) Exists(ctx context.Context, corpCode string, year int, fsDiv contracts.FsDiv) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM data.statements
			WHERE corp_code = $1 AND year = $2 AND fs_div = $3
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, corpCode, year, string(fsDiv)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query statement existence: %w", err)
	}

	return exists, nil
}

// ListByYear returns all statements collected for a (year, basis)
func (r *StatementRepo) ListByYear(ctx context.Context, year int, fsDiv contracts.FsDiv, limit int) ([]*contracts.RawStatement, error) {
	query := `
		SELECT payload
		FROM data.statements
		WHERE year = $1 AND fs_div = $2
		ORDER BY corp_code
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(ctx, query, year, string(fsDiv))
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	var stmts []*contracts.RawStatement
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}

		var stmt contracts.RawStatement
		if err := json.Unmarshal(payload, &stmt); err != nil {
			return nil, fmt.Errorf("unmarshal statement: %w", err)
		}
		stmts = append(stmts, &stmt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stmts, nil
}

// ListYears returns the fiscal years collected for a company, newest first
func (r *StatementRepo) ListYears(ctx context.Context, corpCode string) ([]int, error) {
	query := `
		SELECT DISTINCT year
		FROM data.statements
		WHERE corp_code = $1
		ORDER BY year DESC
	`

	rows, err := r.db.Query(ctx, query, corpCode)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return years, nil
}
