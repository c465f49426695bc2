package contracts

import (
	"context"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// CompanyRepository manages the screening universe
type CompanyRepository interface {
	Get(ctx context.Context, corpCode string) (*Company, error)
	GetByStockCode(ctx context.Context, stockCode string) (*Company, error)
	Search(ctx context.Context, query string, limit int) ([]*Company, error)
	ListListed(ctx context.Context, limit int) ([]*Company, error)
	ListSectors(ctx context.Context) ([]string, error)
	UpsertBatch(ctx context.Context, companies []*Company) (int, error)
	Count(ctx context.Context) (int, error)
}

// StatementRepository manages collected raw statements
type StatementRepository interface {
	Get(ctx context.Context, corpCode string, year int, fsDiv FsDiv) (*RawStatement, error)
	Exists(ctx context.Context, corpCode string, year int, fsDiv FsDiv) (bool, error)
	ListByYear(ctx context.Context, year int, fsDiv FsDiv, limit int) ([]*RawStatement, error)
	ListYears(ctx context.Context, corpCode string) ([]int, error)
	Save(ctx context.Context, stmt *RawStatement) error
}

// AnalysisRepository manages scored company analyses
type AnalysisRepository interface {
	Get(ctx context.Context, corpCode string, year int, fsDiv FsDiv) (*CompanyAnalysis, error)
	ListByYear(ctx context.Context, year int, fsDiv FsDiv) ([]*CompanyAnalysis, error)
	ListYears(ctx context.Context) ([]int, error)
	Save(ctx context.Context, analysis *CompanyAnalysis) error
	SaveBatch(ctx context.Context, analyses []*CompanyAnalysis) error
	DeleteByYear(ctx context.Context, year int, fsDiv FsDiv) (int64, error)
}

// ScreenerRepository persists full screening runs
type ScreenerRepository interface {
	SaveRun(ctx context.Context, result *ScreenerResult) error
	LatestRun(ctx context.Context, year int, fsDiv FsDiv) (*ScreenerResult, error)
	DeleteRun(ctx context.Context, year int, fsDiv FsDiv) error
}

// RunHistoryRepository records pipeline run history for diagnostics
type RunHistoryRepository interface {
	Record(ctx context.Context, rec *RunRecord) error
	Recent(ctx context.Context, kind string, limit int) ([]*RunRecord, error)
}
