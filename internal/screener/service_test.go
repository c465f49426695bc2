package screener

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/internal/analysis"
	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/logger"
	"github.com/wonny/buffett/backend/pkg/redis"
)

func newTestLogger() *logger.Logger {
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	return logger.New(cfg)
}

// disabledRedis returns cache/lock helpers over a disabled client, so
// every cache read misses and every lock acquires
func disabledRedis(t *testing.T) (*redis.Cache, *redis.Lock) {
	t.Helper()
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	return redis.NewCache(client, "buffett"), redis.NewLock(client, "buffett")
}

type fakeCompanyRepo struct {
	companies []*contracts.Company
}

func (r *fakeCompanyRepo) Get(ctx context.Context, corpCode string) (*contracts.Company, error) {
	for _, c := range r.companies {
		if c.CorpCode == corpCode {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", contracts.ErrCompanyNotFound, corpCode)
}

func (r *fakeCompanyRepo) GetByStockCode(ctx context.Context, stockCode string) (*contracts.Company, error) {
	for _, c := range r.companies {
		if c.StockCode == stockCode {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", contracts.ErrCompanyNotFound, stockCode)
}

func (r *fakeCompanyRepo) Search(ctx context.Context, query string, limit int) ([]*contracts.Company, error) {
	return nil, nil
}

func (r *fakeCompanyRepo) ListListed(ctx context.Context, limit int) ([]*contracts.Company, error) {
	listed := r.companies
	if limit > 0 && limit < len(listed) {
		listed = listed[:limit]
	}
	return listed, nil
}

func (r *fakeCompanyRepo) ListSectors(ctx context.Context) ([]string, error) { return nil, nil }

func (r *fakeCompanyRepo) UpsertBatch(ctx context.Context, companies []*contracts.Company) (int, error) {
	return len(companies), nil
}

func (r *fakeCompanyRepo) Count(ctx context.Context) (int, error) { return len(r.companies), nil }

type fakeStatementRepo struct {
	stmts map[string]*contracts.RawStatement
	saved []*contracts.RawStatement
}

func newFakeStatementRepo() *fakeStatementRepo {
	return &fakeStatementRepo{stmts: make(map[string]*contracts.RawStatement)}
}

func stmtKey(corpCode string, year int, fsDiv contracts.FsDiv) string {
	return fmt.Sprintf("%s|%d|%s", corpCode, year, fsDiv)
}

func (r *fakeStatementRepo) Get(ctx context.Context, corpCode string, year int, fsDiv contracts.FsDiv) (*contracts.RawStatement, error) {
	stmt, ok := r.stmts[stmtKey(corpCode, year, fsDiv)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrMissingData, corpCode)
	}
	return stmt, nil
}

func (r *fakeStatementRepo) Exists(ctx context.Context, corpCode string, year int, fsDiv contracts.FsDiv) (bool, error) {
	_, ok := r.stmts[stmtKey(corpCode, year, fsDiv)]
	return ok, nil
}

func (r *fakeStatementRepo) ListByYear(ctx context.Context, year int, fsDiv contracts.FsDiv, limit int) ([]*contracts.RawStatement, error) {
	var out []*contracts.RawStatement
	for _, stmt := range r.stmts {
		if stmt.Year == year && stmt.FsDiv == fsDiv {
			out = append(out, stmt)
		}
	}
	return out, nil
}

func (r *fakeStatementRepo) ListYears(ctx context.Context, corpCode string) ([]int, error) {
	return nil, nil
}

func (r *fakeStatementRepo) Save(ctx context.Context, stmt *contracts.RawStatement) error {
	r.stmts[stmtKey(stmt.CorpCode, stmt.Year, stmt.FsDiv)] = stmt
	r.saved = append(r.saved, stmt)
	return nil
}

type fakeAnalysisRepo struct {
	analyses map[string]*contracts.CompanyAnalysis
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{analyses: make(map[string]*contracts.CompanyAnalysis)}
}

func (r *fakeAnalysisRepo) Get(ctx context.Context, corpCode string, year int, fsDiv contracts.FsDiv) (*contracts.CompanyAnalysis, error) {
	a, ok := r.analyses[stmtKey(corpCode, year, fsDiv)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrMissingData, corpCode)
	}
	return a, nil
}

func (r *fakeAnalysisRepo) ListByYear(ctx context.Context, year int, fsDiv contracts.FsDiv) ([]*contracts.CompanyAnalysis, error) {
	var out []*contracts.CompanyAnalysis
	for _, a := range r.analyses {
		if a.Year == year && a.FsDiv == fsDiv {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnalysisRepo) ListYears(ctx context.Context) ([]int, error) {
	seen := map[int]bool{}
	var years []int
	for _, a := range r.analyses {
		if !seen[a.Year] {
			seen[a.Year] = true
			years = append(years, a.Year)
		}
	}
	return years, nil
}

func (r *fakeAnalysisRepo) Save(ctx context.Context, a *contracts.CompanyAnalysis) error {
	r.analyses[stmtKey(a.CorpCode, a.Year, a.FsDiv)] = a
	return nil
}

func (r *fakeAnalysisRepo) SaveBatch(ctx context.Context, analyses []*contracts.CompanyAnalysis) error {
	for _, a := range analyses {
		r.Save(ctx, a)
	}
	return nil
}

func (r *fakeAnalysisRepo) DeleteByYear(ctx context.Context, year int, fsDiv contracts.FsDiv) (int64, error) {
	var removed int64
	for key, a := range r.analyses {
		if a.Year == year && a.FsDiv == fsDiv {
			delete(r.analyses, key)
			removed++
		}
	}
	return removed, nil
}

type fakeScreenerRepo struct {
	run *contracts.ScreenerResult
}

func (r *fakeScreenerRepo) SaveRun(ctx context.Context, result *contracts.ScreenerResult) error {
	r.run = result
	return nil
}

func (r *fakeScreenerRepo) LatestRun(ctx context.Context, year int, fsDiv contracts.FsDiv) (*contracts.ScreenerResult, error) {
	if r.run == nil || r.run.Year != year || r.run.FsDiv != fsDiv {
		return nil, nil
	}
	return r.run, nil
}

func (r *fakeScreenerRepo) DeleteRun(ctx context.Context, year int, fsDiv contracts.FsDiv) error {
	r.run = nil
	return nil
}

type fakeBuilder struct {
	stmt *contracts.RawStatement
	err  error
}

func (b *fakeBuilder) Build(ctx context.Context, company *contracts.Company, year int, fsDiv contracts.FsDiv) (*contracts.RawStatement, error) {
	if b.err != nil {
		return nil, b.err
	}
	stmt := *b.stmt
	stmt.CorpCode = company.CorpCode
	stmt.CorpName = company.CorpName
	stmt.StockCode = company.StockCode
	stmt.Year = year
	stmt.FsDiv = fsDiv
	return &stmt, nil
}

// excellentStmt clears every core indicator at the top band: base 100 +
// bonus 36 = 136
func excellentStmt(corpCode, corpName, stockCode string) *contracts.RawStatement {
	return &contracts.RawStatement{
		CorpCode:  corpCode,
		CorpName:  corpName,
		StockCode: stockCode,
		Year:      2023,
		FsDiv:     contracts.FsDivConsolidated,
		Current: contracts.FinancialMetrics{
			Revenue:            300_000_000_000,
			OperatingIncome:    45_000_000_000,
			FinanceCost:        1_000_000_000,
			NetIncome:          30_000_000_000,
			TotalAssets:        500_000_000_000,
			CashAndEquivalents: 50_000_000_000,
			TotalLiabilities:   100_000_000_000,
			TotalEquity:        250_000_000_000,
			CapitalStock:       5_000_000_000,
			RetainedEarnings:   200_000_000_000,
			OperatingCashFlow:  40_000_000_000,
		},
		Previous: contracts.FinancialMetrics{
			Revenue:           280_000_000_000,
			OperatingIncome:   35_000_000_000,
			NetIncome:         25_000_000_000,
			OperatingCashFlow: 30_000_000_000,
			TotalEquity:       230_000_000_000,
		},
		BeforePrevious: contracts.FinancialMetrics{
			Revenue:         260_000_000_000,
			OperatingIncome: 33_000_000_000,
			NetIncome:       23_000_000_000,
		},
		TotalShares:     1_000_000_000,
		InsiderBuyCount: 2,
		FetchedAt:       time.Now(),
	}
}

// mediocreStmt passes the filters with a middling score
func mediocreStmt(corpCode, corpName, stockCode string) *contracts.RawStatement {
	return &contracts.RawStatement{
		CorpCode:  corpCode,
		CorpName:  corpName,
		StockCode: stockCode,
		Year:      2023,
		FsDiv:     contracts.FsDivConsolidated,
		Current: contracts.FinancialMetrics{
			Revenue:           100_000_000_000,
			OperatingIncome:   4_000_000_000,
			FinanceCost:       2_000_000_000,
			NetIncome:         3_000_000_000,
			TotalEquity:       50_000_000_000,
			TotalLiabilities:  40_000_000_000,
			CapitalStock:      10_000_000_000,
			RetainedEarnings:  5_000_000_000,
			OperatingCashFlow: 2_000_000_000,
		},
		Previous: contracts.FinancialMetrics{
			Revenue:           98_000_000_000,
			OperatingIncome:   3_900_000_000,
			NetIncome:         2_900_000_000,
			OperatingCashFlow: 3_000_000_000,
		},
		FetchedAt: time.Now(),
	}
}

// zombieStmt fails the hard filters (coverage below 1, two loss years)
func zombieStmt(corpCode, corpName, stockCode string) *contracts.RawStatement {
	return &contracts.RawStatement{
		CorpCode:  corpCode,
		CorpName:  corpName,
		StockCode: stockCode,
		Year:      2023,
		FsDiv:     contracts.FsDivConsolidated,
		Current: contracts.FinancialMetrics{
			Revenue:           100_000_000_000,
			OperatingIncome:   -5_000_000_000,
			FinanceCost:       2_000_000_000,
			NetIncome:         -10_000_000_000,
			TotalEquity:       10_000_000_000,
			OperatingCashFlow: -3_000_000_000,
		},
		Previous: contracts.FinancialMetrics{
			Revenue:           95_000_000_000,
			OperatingIncome:   -8_000_000_000,
			NetIncome:         -12_000_000_000,
			OperatingCashFlow: -8_000_000_000,
		},
		FetchedAt: time.Now(),
	}
}

type testEnv struct {
	svc        *Service
	companies  *fakeCompanyRepo
	statements *fakeStatementRepo
	analyses   *fakeAnalysisRepo
	runs       *fakeScreenerRepo
	builder    *fakeBuilder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cache, lock := disabledRedis(t)
	log := newTestLogger()

	env := &testEnv{
		companies:  &fakeCompanyRepo{},
		statements: newFakeStatementRepo(),
		analyses:   newFakeAnalysisRepo(),
		runs:       &fakeScreenerRepo{},
		builder:    &fakeBuilder{},
	}
	env.svc = NewService(
		analysis.NewDefaultAnalyzer(log),
		env.builder,
		env.companies,
		env.statements,
		env.analyses,
		env.runs,
		nil,
		cache, lock, log,
	)
	return env
}

func TestScanComputesAndRanks(t *testing.T) {
	env := newTestEnv(t)
	env.companies.companies = []*contracts.Company{
		{CorpCode: "00126380", CorpName: "삼성전자", StockCode: "005930", Sector: "반도체"},
		{CorpCode: "00164779", CorpName: "한국중견", StockCode: "000660", Sector: "기계"},
		{CorpCode: "00999901", CorpName: "좀비산업", StockCode: "111110"},
		{CorpCode: "00999902", CorpName: "대신밸런스제2호스팩", StockCode: "333330"},
		{CorpCode: "00999903", CorpName: "미수집기업", StockCode: "222220"},
	}
	for _, stmt := range []*contracts.RawStatement{
		excellentStmt("00126380", "삼성전자", "005930"),
		mediocreStmt("00164779", "한국중견", "000660"),
		zombieStmt("00999901", "좀비산업", "111110"),
	} {
		require.NoError(t, env.statements.Save(context.Background(), stmt))
	}

	result, err := env.svc.Scan(context.Background(), 2023, contracts.FsDivConsolidated, 0, true)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Analyzed)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 2, result.Filtered)
	assert.Equal(t, 1, result.NoData)
	assert.False(t, result.FromCache)

	require.Len(t, result.Ranked, 2)
	assert.Equal(t, 1, result.Ranked[0].Rank)
	assert.Equal(t, "삼성전자", result.Ranked[0].CorpName)
	assert.Equal(t, float64(136), result.Ranked[0].TotalScore)
	assert.Equal(t, "반도체", result.Ranked[0].Sector)
	assert.Equal(t, 2, result.Ranked[1].Rank)
	assert.Equal(t, "한국중견", result.Ranked[1].CorpName)
	assert.Greater(t, result.Ranked[0].TotalScore, result.Ranked[1].TotalScore)

	// 필터 탈락 목록: 원점수 내림차순, 스팩은 유니버스 제외 사유를 달고 나온다
	require.Len(t, result.FilteredOut, 2)
	assert.Equal(t, "좀비산업", result.FilteredOut[0].CorpName)
	assert.NotEmpty(t, result.FilteredOut[0].Reasons)
	assert.Equal(t, "대신밸런스제2호스팩", result.FilteredOut[1].CorpName)
	require.Len(t, result.FilteredOut[1].Reasons, 1)
	assert.Contains(t, result.FilteredOut[1].Reasons[0], "유니버스 제외")

	assert.Equal(t, []string{"미수집기업"}, result.NoDataCorps)

	// 분석은 재무제표가 있던 3곳만 저장된다 (유니버스 제외 기업은 분석 없음)
	assert.Len(t, env.analyses.analyses, 3)
	require.NotNil(t, env.runs.run)
	assert.Equal(t, result.Passed, env.runs.run.Passed)
}

func TestScanServesStoredRun(t *testing.T) {
	env := newTestEnv(t)
	env.runs.run = &contracts.ScreenerResult{
		Year:   2023,
		FsDiv:  contracts.FsDivConsolidated,
		Limit:  0,
		Passed: 3,
		Ranked: []contracts.RankedCompany{
			{Rank: 1, CorpCode: "A", TotalScore: 120},
			{Rank: 2, CorpCode: "B", TotalScore: 110},
			{Rank: 3, CorpCode: "C", TotalScore: 100},
		},
		GeneratedAt: time.Now(),
	}

	result, err := env.svc.Scan(context.Background(), 2023, contracts.FsDivConsolidated, 2, true)
	require.NoError(t, err)

	assert.True(t, result.FromCache)
	require.Len(t, result.Ranked, 2)
	assert.Equal(t, "A", result.Ranked[0].CorpCode)
	// 절단해도 저장본은 그대로다
	assert.Len(t, env.runs.run.Ranked, 3)
}

func TestScanLimitWideningRecomputes(t *testing.T) {
	env := newTestEnv(t)
	env.companies.companies = []*contracts.Company{
		{CorpCode: "00126380", CorpName: "삼성전자", StockCode: "005930"},
	}
	require.NoError(t, env.statements.Save(context.Background(),
		excellentStmt("00126380", "삼성전자", "005930")))

	// 좁게 만든 저장본은 더 넓은 요청을 만족시킬 수 없다
	env.runs.run = &contracts.ScreenerResult{
		Year:  2023,
		FsDiv: contracts.FsDivConsolidated,
		Limit: 10,
		Ranked: []contracts.RankedCompany{
			{Rank: 1, CorpCode: "A", TotalScore: 50},
		},
		GeneratedAt: time.Now(),
	}

	result, err := env.svc.Scan(context.Background(), 2023, contracts.FsDivConsolidated, 20, true)
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	require.Len(t, result.Ranked, 1)
	assert.Equal(t, "삼성전자", result.Ranked[0].CorpName)
}

func TestScanUseCacheFalseRecomputes(t *testing.T) {
	env := newTestEnv(t)
	env.companies.companies = []*contracts.Company{
		{CorpCode: "00126380", CorpName: "삼성전자", StockCode: "005930"},
	}
	require.NoError(t, env.statements.Save(context.Background(),
		excellentStmt("00126380", "삼성전자", "005930")))
	env.runs.run = &contracts.ScreenerResult{
		Year:        2023,
		FsDiv:       contracts.FsDivConsolidated,
		Limit:       0,
		Ranked:      []contracts.RankedCompany{{Rank: 1, CorpCode: "STALE"}},
		GeneratedAt: time.Now().Add(-time.Hour),
	}

	result, err := env.svc.Scan(context.Background(), 2023, contracts.FsDivConsolidated, 0, false)
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	require.Len(t, result.Ranked, 1)
	assert.Equal(t, "00126380", result.Ranked[0].CorpCode)
	// 재계산 결과가 저장본을 교체한다
	assert.Equal(t, result.GeneratedAt, env.runs.run.GeneratedAt)
}

func TestScanEmptyRegistry(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Scan(context.Background(), 2023, contracts.FsDivConsolidated, 0, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrMissingData)
}

func TestScanRejectsUnknownBasis(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Scan(context.Background(), 2023, contracts.FsDiv("IFRS"), 0, true)
	assert.ErrorIs(t, err, contracts.ErrInvalidRequest)
}

func TestAnalyzeBuildsOnDemand(t *testing.T) {
	env := newTestEnv(t)
	env.companies.companies = []*contracts.Company{
		{CorpCode: "00126380", CorpName: "삼성전자", StockCode: "005930", Sector: "반도체"},
	}
	env.builder.stmt = excellentStmt("00126380", "삼성전자", "005930")

	result, err := env.svc.Analyze(context.Background(), "00126380", "", 2023, contracts.FsDivConsolidated)
	require.NoError(t, err)

	assert.Equal(t, "삼성전자", result.CorpName)
	assert.Equal(t, float64(136), result.TotalScore)
	assert.Equal(t, "반도체", result.Sector)

	// 새로 만든 재무제표와 분석 결과가 바로 저장된다
	assert.Len(t, env.statements.saved, 1)
	assert.Len(t, env.analyses.analyses, 1)
}

func TestAnalyzeUsesStoredStatement(t *testing.T) {
	env := newTestEnv(t)
	env.companies.companies = []*contracts.Company{
		{CorpCode: "00126380", CorpName: "삼성전자", StockCode: "005930"},
	}
	require.NoError(t, env.statements.Save(context.Background(),
		excellentStmt("00126380", "삼성전자", "005930")))
	env.statements.saved = nil
	env.builder.err = fmt.Errorf("builder must not run")

	result, err := env.svc.Analyze(context.Background(), "00126380", "", 2023, contracts.FsDivConsolidated)
	require.NoError(t, err)
	assert.Equal(t, float64(136), result.TotalScore)
	assert.Empty(t, env.statements.saved)
}

func TestAnalyzeMissingEverywhere(t *testing.T) {
	env := newTestEnv(t)
	env.builder.err = fmt.Errorf("%w: 00999999 (24 combinations tried)", contracts.ErrMissingData)

	_, err := env.svc.Analyze(context.Background(), "00999999", "유령기업", 2023, contracts.FsDivConsolidated)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrMissingData)
}

func TestClearCache(t *testing.T) {
	env := newTestEnv(t)
	env.runs.run = &contracts.ScreenerResult{Year: 2023, FsDiv: contracts.FsDivConsolidated}
	for i := 0; i < 3; i++ {
		require.NoError(t, env.analyses.Save(context.Background(), &contracts.CompanyAnalysis{
			CorpCode: fmt.Sprintf("0010000%d", i),
			Year:     2023,
			FsDiv:    contracts.FsDivConsolidated,
		}))
	}

	removed, err := env.svc.ClearCache(context.Background(), 2023, contracts.FsDivConsolidated)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.Nil(t, env.runs.run)
	assert.Empty(t, env.analyses.analyses)
}

func TestYears(t *testing.T) {
	env := newTestEnv(t)
	env.analyses.Save(context.Background(), &contracts.CompanyAnalysis{CorpCode: "A", Year: 2023, FsDiv: contracts.FsDivConsolidated})
	env.analyses.Save(context.Background(), &contracts.CompanyAnalysis{CorpCode: "B", Year: 2022, FsDiv: contracts.FsDivConsolidated})

	years, err := env.svc.Years(context.Background())
	require.NoError(t, err)
	assert.Len(t, years, 2)
}
