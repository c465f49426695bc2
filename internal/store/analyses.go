package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// AnalysisRepo persists scored company analyses.
// ⭐ SSOT: 분석 결과 저장은 이 저장소에서만
// 재분석 시 행 전체가 교체된다 (부분 수정 없음).
type AnalysisRepo struct {
	db *pgxpool.Pool
}

// NewAnalysisRepo creates a new AnalysisRepo instance
func NewAnalysisRepo(db *pgxpool.Pool) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

const analysisUpsert = `
	INSERT INTO data.analyses (
		corp_code, year, fs_div, corp_name, stock_code,
		total_score, raw_score, grade, signal, filter_passed,
		payload, analyzed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (corp_code, year, fs_div) DO UPDATE SET
		corp_name     = EXCLUDED.corp_name,
		stock_code    = EXCLUDED.stock_code,
		total_score   = EXCLUDED.total_score,
		raw_score     = EXCLUDED.raw_score,
		grade         = EXCLUDED.grade,
		signal        = EXCLUDED.signal,
		filter_passed = EXCLUDED.filter_passed,
		payload       = EXCLUDED.payload,
		analyzed_at   = EXCLUDED.analyzed_at
`

// Save upserts one analysis
func (r *AnalysisRepo) Save(ctx context.Context, analysis *contracts.CompanyAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	_, err = r.db.Exec(ctx, analysisUpsert,
		analysis.CorpCode, analysis.Year, string(analysis.FsDiv),
		analysis.CorpName, analysis.StockCode,
		analysis.TotalScore, analysis.RawScore,
		string(analysis.Grade), string(analysis.Signal), analysis.FilterPassed,
		payload, analysis.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis for %s: %w", analysis.CorpCode, err)
	}

	return nil
}

// SaveBatch upserts analyses in bulk
func (r *AnalysisRepo) SaveBatch(ctx context.Context, analyses []*contracts.CompanyAnalysis) error {
	if len(analyses) == 0 {
		return nil
	}

	for i := 0; i < len(analyses); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(analyses) {
			end = len(analyses)
		}
		batch := analyses[i:end]

		tx, err := r.db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		for _, a := range batch {
			payload, err := json.Marshal(a)
			if err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("marshal analysis: %w", err)
			}

			_, err = tx.Exec(ctx, analysisUpsert,
				a.CorpCode, a.Year, string(a.FsDiv),
				a.CorpName, a.StockCode,
				a.TotalScore, a.RawScore,
				string(a.Grade), string(a.Signal), a.FilterPassed,
				payload, a.AnalyzedAt,
			)
			if err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("insert analysis for %s: %w", a.CorpCode, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}

	return nil
}

// Get retrieves one analysis
func (r *AnalysisRepo) Get(ctx context.Context, corpCode string, year int, fsDiv contracts.FsDiv) (*contracts.CompanyAnalysis, error) {
	query := `
		SELECT payload
		FROM data.analyses
		WHERE corp_code = $1 AND year = $2 AND fs_div = $3
	`

	var payload []byte
	err := r.db.QueryRow(ctx, query, corpCode, year, string(fsDiv)).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: analysis %s (%d/%s)", contracts.ErrMissingData, corpCode, year, fsDiv)
		}
		return nil, fmt.Errorf("query analysis: %w", err)
	}

	var analysis contracts.CompanyAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}

	return &analysis, nil
}

// ListByYear returns all analyses for a (year, basis), best score first
func (r *AnalysisRepo) ListByYear(ctx context.Context, year int, fsDiv contracts.FsDiv) ([]*contracts.CompanyAnalysis, error) {
	query := `
		SELECT payload
		FROM data.analyses
		WHERE year = $1 AND fs_div = $2
		ORDER BY total_score DESC, corp_code
	`

	rows, err := r.db.Query(ctx, query, year, string(fsDiv))
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*contracts.CompanyAnalysis
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}

		var a contracts.CompanyAnalysis
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
		analyses = append(analyses, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return analyses, nil
}

// ListYears returns the years having stored analyses, newest first
func (r *AnalysisRepo) ListYears(ctx context.Context) ([]int, error) {
	query := `SELECT DISTINCT year FROM data.analyses ORDER BY year DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list analysis years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return years, nil
}

// DeleteByYear removes all analyses for a (year, basis) and reports
// how many rows went away
func (r *AnalysisRepo) DeleteByYear(ctx context.Context, year int, fsDiv contracts.FsDiv) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM data.analyses WHERE year = $1 AND fs_div = $2`,
		year, string(fsDiv),
	)
	if err != nil {
		return 0, fmt.Errorf("delete analyses: %w", err)
	}
	return tag.RowsAffected(), nil
}
