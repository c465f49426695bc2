package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// CompanyRepo persists the screening universe
// ⭐ SSOT: 기업 레지스트리 저장은 이 저장소에서만
type CompanyRepo struct {
	db *pgxpool.Pool
}

// NewCompanyRepo creates a new CompanyRepo instance
func NewCompanyRepo(db *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// Get retrieves a company by DART corp code
func (r *CompanyRepo) Get(ctx context.Context, corpCode string) (*contracts.Company, error) {
	query := `
		SELECT corp_code, corp_name, stock_code, sector, market, updated_at
		FROM data.companies
		WHERE corp_code = $1
	`

	var c contracts.Company
	err := r.db.QueryRow(ctx, query, corpCode).Scan(
		&c.CorpCode, &c.CorpName, &c.StockCode, &c.Sector, &c.Market, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", contracts.ErrCompanyNotFound, corpCode)
		}
		return nil, fmt.Errorf("query company: %w", err)
	}

	return &c, nil
}

// GetByStockCode retrieves a company by its 6-digit stock code
func (r *CompanyRepo) GetByStockCode(ctx context.Context, stockCode string) (*contracts.Company, error) {
	query := `
		SELECT corp_code, corp_name, stock_code, sector, market, updated_at
		FROM data.companies
		WHERE stock_code = $1
	`

	var c contracts.Company
	err := r.db.QueryRow(ctx, query, stockCode).Scan(
		&c.CorpCode, &c.CorpName, &c.StockCode, &c.Sector, &c.Market, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: stock %s", contracts.ErrCompanyNotFound, stockCode)
		}
		return nil, fmt.Errorf("query company by stock code: %w", err)
	}

	return &c, nil
}

// Search finds companies by name fragment, stock code, or corp code
func (r *CompanyRepo) Search(ctx context.Context, query string, limit int) ([]*contracts.Company, error) {
	if limit <= 0 {
		limit = 20
	}

	sql := `
		SELECT corp_code, corp_name, stock_code, sector, market, updated_at
		FROM data.companies
		WHERE corp_name ILIKE '%' || $1 || '%' OR stock_code = $1 OR corp_code = $1
		ORDER BY corp_name
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// ListListed returns companies that carry a tradable stock code
func (r *CompanyRepo) ListListed(ctx context.Context, limit int) ([]*contracts.Company, error) {
	query := `
		SELECT corp_code, corp_name, stock_code, sector, market, updated_at
		FROM data.companies
		WHERE stock_code <> ''
		ORDER BY corp_code
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list listed companies: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// ListSectors returns the distinct known sector names
func (r *CompanyRepo) ListSectors(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT sector
		FROM data.companies
		WHERE sector <> ''
		ORDER BY sector
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	var sectors []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		sectors = append(sectors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return sectors, nil
}

// UpsertBatch inserts or refreshes companies in bulk.
// 레지스트리 동기화가 섹터/마켓 백필 결과를 지우지 않도록 빈 값은 무시한다.
func (r *CompanyRepo) UpsertBatch(ctx context.Context, companies []*contracts.Company) (int, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO data.companies (
			corp_code, corp_name, stock_code, sector, market, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (corp_code) DO UPDATE SET
			corp_name  = EXCLUDED.corp_name,
			stock_code = EXCLUDED.stock_code,
			sector     = CASE WHEN EXCLUDED.sector = '' THEN data.companies.sector ELSE EXCLUDED.sector END,
			market     = CASE WHEN EXCLUDED.market = '' THEN data.companies.market ELSE EXCLUDED.market END,
			updated_at = EXCLUDED.updated_at
	`

	saved := 0
	for i := 0; i < len(companies); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(companies) {
			end = len(companies)
		}
		batch := companies[i:end]

		tx, err := r.db.Begin(ctx)
		if err != nil {
			return saved, fmt.Errorf("begin transaction: %w", err)
		}

		for _, c := range batch {
			updatedAt := c.UpdatedAt
			if updatedAt.IsZero() {
				updatedAt = time.Now()
			}

			_, err := tx.Exec(ctx, query,
				c.CorpCode, c.CorpName, c.StockCode, c.Sector, c.Market, updatedAt,
			)
			if err != nil {
				tx.Rollback(ctx)
				return saved, fmt.Errorf("upsert company %s: %w", c.CorpCode, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return saved, fmt.Errorf("commit transaction: %w", err)
		}
		saved += len(batch)
	}

	return saved, nil
}

// Count returns the total number of registered companies
func (r *CompanyRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM data.companies`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return count, nil
}

func scanCompanies(rows pgx.Rows) ([]*contracts.Company, error) {
	var companies []*contracts.Company
	for rows.Next() {
		var c contracts.Company
		if err := rows.Scan(
			&c.CorpCode, &c.CorpName, &c.StockCode, &c.Sector, &c.Market, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return companies, nil
}
