package contracts

import (
	"context"
)

// StatementBuilder assembles one company's raw statement from upstream sources.
// ⭐ SSOT: 수집 단계 인터페이스 (DART fallback 체인 포함)
type StatementBuilder interface {
	Build(ctx context.Context, company *Company, year int, fsDiv FsDiv) (*RawStatement, error)
}

// Analyzer scores one raw statement into a company analysis.
// ⭐ SSOT: 분석 단계 인터페이스 (순수 함수, 외부 호출 없음)
type Analyzer interface {
	Analyze(stmt *RawStatement) *CompanyAnalysis
}

// Screener runs a full scan over the universe for (year, fs_div).
// ⭐ SSOT: 스크리닝 인터페이스
type Screener interface {
	Scan(ctx context.Context, year int, fsDiv FsDiv, limit int, useCache bool) (*ScreenerResult, error)
}

// TrendAnalyzer computes the multi-year direction report for one company.
// ⭐ SSOT: 추세 분석 인터페이스
type TrendAnalyzer interface {
	Trend(ctx context.Context, corpCode string, year int, fsDiv FsDiv) (*TrendReport, error)
}

// Backtester simulates holding the screener's top picks.
// ⭐ SSOT: 백테스트 인터페이스
type Backtester interface {
	Validate(ctx context.Context, cfg BacktestConfig) (*BacktestRun, error)
}

// ProgressPublisher broadcasts collection progress to live subscribers.
// 구독자가 없으면 이벤트는 버려진다.
type ProgressPublisher interface {
	Publish(p FetchProgress)
}
