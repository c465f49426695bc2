package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL creates everything the repositories expect. Statements are
// idempotent so startup can run them on every boot.
// ⭐ SSOT: 테이블 DDL은 여기서만
var schemaDDL = []string{
	`CREATE SCHEMA IF NOT EXISTS data`,

	`CREATE TABLE IF NOT EXISTS data.companies (
		corp_code  TEXT PRIMARY KEY,
		corp_name  TEXT NOT NULL,
		stock_code TEXT NOT NULL DEFAULT '',
		sector     TEXT NOT NULL DEFAULT '',
		market     TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_companies_stock_code
		ON data.companies (stock_code) WHERE stock_code <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_companies_corp_name
		ON data.companies (corp_name)`,

	`CREATE TABLE IF NOT EXISTS data.statements (
		corp_code   TEXT NOT NULL,
		year        INT  NOT NULL,
		fs_div      TEXT NOT NULL,
		corp_name   TEXT NOT NULL,
		stock_code  TEXT NOT NULL DEFAULT '',
		payload     JSONB NOT NULL,
		data_source TEXT NOT NULL DEFAULT '',
		fetched_at  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (corp_code, year, fs_div)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_statements_year
		ON data.statements (year, fs_div)`,

	`CREATE TABLE IF NOT EXISTS data.analyses (
		corp_code     TEXT NOT NULL,
		year          INT  NOT NULL,
		fs_div        TEXT NOT NULL,
		corp_name     TEXT NOT NULL,
		stock_code    TEXT NOT NULL DEFAULT '',
		total_score   DOUBLE PRECISION NOT NULL,
		raw_score     DOUBLE PRECISION NOT NULL,
		grade         TEXT NOT NULL,
		signal        TEXT NOT NULL,
		filter_passed BOOLEAN NOT NULL,
		payload       JSONB NOT NULL,
		analyzed_at   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (corp_code, year, fs_div)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_year_score
		ON data.analyses (year, fs_div, total_score DESC)`,

	`CREATE TABLE IF NOT EXISTS data.screener_runs (
		year         INT  NOT NULL,
		fs_div       TEXT NOT NULL,
		run_limit    INT  NOT NULL,
		payload      JSONB NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (year, fs_div)
	)`,

	`CREATE TABLE IF NOT EXISTS data.run_history (
		id          BIGSERIAL PRIMARY KEY,
		kind        TEXT NOT NULL,
		name        TEXT NOT NULL,
		year        INT  NOT NULL DEFAULT 0,
		fs_div      TEXT NOT NULL DEFAULT '',
		success     BOOLEAN NOT NULL,
		detail      TEXT NOT NULL DEFAULT '',
		error_msg   TEXT NOT NULL DEFAULT '',
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_run_history_kind
		ON data.run_history (kind, started_at DESC)`,
}

// EnsureSchema creates the data schema and tables when missing so a
// fresh database bootstraps itself on first start.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
