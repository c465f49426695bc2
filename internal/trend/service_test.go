package trend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/logger"
)

func newTestLogger() *logger.Logger {
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	return logger.New(cfg)
}

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
	return nil, nil
}

func (r *fakeStatementRepo) ListYears(ctx context.Context, corpCode string) ([]int, error) {
	return nil, nil
}

func (r *fakeStatementRepo) Save(ctx context.Context, stmt *contracts.RawStatement) error {
	r.stmts[stmtKey(stmt.CorpCode, stmt.Year, stmt.FsDiv)] = stmt
	r.saved = append(r.saved, stmt)
	return nil
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
	return nil, contracts.ErrCompanyNotFound
}

func (r *fakeCompanyRepo) Search(ctx context.Context, query string, limit int) ([]*contracts.Company, error) {
	return nil, nil
}

func (r *fakeCompanyRepo) ListListed(ctx context.Context, limit int) ([]*contracts.Company, error) {
	return r.companies, nil
}

func (r *fakeCompanyRepo) ListSectors(ctx context.Context) ([]string, error) { return nil, nil }

func (r *fakeCompanyRepo) UpsertBatch(ctx context.Context, companies []*contracts.Company) (int, error) {
	return len(companies), nil
}

func (r *fakeCompanyRepo) Count(ctx context.Context) (int, error) { return len(r.companies), nil }

type fakeBuilder struct {
	stmt  *contracts.RawStatement
	err   error
	built int
}

func (b *fakeBuilder) Build(ctx context.Context, company *contracts.Company, year int, fsDiv contracts.FsDiv) (*contracts.RawStatement, error) {
	b.built++
	if b.err != nil {
		return nil, b.err
	}
	return b.stmt, nil
}

// growingStmt: 3개년 모두 수집된 성장 기업.
// 2021 → 2022 영업이익 +10%, 2022 → 2023 +20% (성장세 개선),
// 이자보상배율 2.0 → 2.75 → 3.25, 현금흐름 품질 false → true.
func growingStmt() *contracts.RawStatement {
	return &contracts.RawStatement{
		CorpCode:  "00126380",
		CorpName:  "삼성전자",
		StockCode: "005930",
		Year:      2023,
		FsDiv:     contracts.FsDivConsolidated,
		BeforePrevious: contracts.FinancialMetrics{
			Revenue:           900e9,
			OperatingIncome:   100e9,
			NetIncome:         80e9,
			OperatingCashFlow: 90e9,
			FinanceCost:       50e9,
			TotalEquity:       500e9,
			TotalAssets:       1000e9,
		},
		Previous: contracts.FinancialMetrics{
			Revenue:           950e9,
			OperatingIncome:   110e9,
			NetIncome:         70e9,
			OperatingCashFlow: 60e9,
			FinanceCost:       40e9,
			TotalEquity:       540e9,
			TotalAssets:       1050e9,
		},
		Current: contracts.FinancialMetrics{
			Revenue:           1000e9,
			OperatingIncome:   132e9,
			NetIncome:         90e9,
			OperatingCashFlow: 100e9,
			FinanceCost:       40e9,
			TotalEquity:       600e9,
			TotalAssets:       1100e9,
		},
	}
}

func newTestService(statements *fakeStatementRepo, builder contracts.StatementBuilder) *Service {
	companies := &fakeCompanyRepo{}
	return NewService(statements, companies, builder, newTestLogger())
}

func TestTrendThreeYearWindow(t *testing.T) {
	statements := newFakeStatementRepo()
	stmt := growingStmt()
	require.NoError(t, statements.Save(context.Background(), stmt))

	svc := newTestService(statements, nil)
	report, err := svc.Trend(context.Background(), "00126380", 2023, contracts.FsDivConsolidated)
	require.NoError(t, err)

	require.Len(t, report.Years, 3)
	assert.Equal(t, "삼성전자", report.CorpName)
	assert.Equal(t, contracts.FsDivConsolidated, report.FsDiv)

	first, mid, last := report.Years[0], report.Years[1], report.Years[2]

	// 과거 → 최신 순
	assert.Equal(t, 2021, first.Year)
	assert.Equal(t, 2022, mid.Year)
	assert.Equal(t, 2023, last.Year)

	// 첫 해에는 비교 대상이 없다
	assert.Zero(t, first.OperatingGrowth)
	assert.Zero(t, first.NetIncomeGrowth)

	assert.InDelta(t, 10.0, mid.OperatingGrowth, 0.01)
	assert.InDelta(t, -12.5, mid.NetIncomeGrowth, 0.01)
	assert.InDelta(t, 20.0, last.OperatingGrowth, 0.01)
	assert.InDelta(t, 28.57, last.NetIncomeGrowth, 0.01)

	assert.InDelta(t, 2.0, first.InterestCoverage, 0.001)
	assert.InDelta(t, 2.75, mid.InterestCoverage, 0.001)
	assert.InDelta(t, 3.3, last.InterestCoverage, 0.001)

	assert.True(t, first.CashQuality)
	assert.False(t, mid.CashQuality)
	assert.True(t, last.CashQuality)

	assert.Equal(t, []string{"영업이익 성장세 개선", "재무안정성 개선", "현금흐름 품질 개선"}, report.Improving)
	assert.Empty(t, report.Declining)
	assert.Equal(t, contracts.TrendImproving, report.Signal)

	require.NotNil(t, report.Latest())
	assert.Equal(t, 2023, report.Latest().Year)
}

func TestTrendDecliningCompany(t *testing.T) {
	stmt := &contracts.RawStatement{
		CorpCode: "00999999",
		CorpName: "쇠락한업",
		Year:     2023,
		FsDiv:    contracts.FsDivConsolidated,
		// 전전기 미수집 (2개년 분석)
		Previous: contracts.FinancialMetrics{
			Revenue:           500e9,
			OperatingIncome:   200e9,
			NetIncome:         150e9,
			OperatingCashFlow: 180e9,
			FinanceCost:       0, // 무차입 → 999
			TotalEquity:       400e9,
			TotalAssets:       700e9,
		},
		Current: contracts.FinancialMetrics{
			Revenue:           420e9,
			OperatingIncome:   150e9,
			NetIncome:         100e9,
			OperatingCashFlow: 90e9,
			FinanceCost:       100e9,
			TotalEquity:       420e9,
			TotalAssets:       720e9,
		},
	}
	statements := newFakeStatementRepo()
	require.NoError(t, statements.Save(context.Background(), stmt))

	svc := newTestService(statements, nil)
	report, err := svc.Trend(context.Background(), "00999999", 2023, contracts.FsDivConsolidated)
	require.NoError(t, err)

	require.Len(t, report.Years, 2)
	assert.Equal(t, 2022, report.Years[0].Year)
	assert.Equal(t, 2023, report.Years[1].Year)

	assert.InDelta(t, 999, report.Years[0].InterestCoverage, 0.001)
	assert.InDelta(t, 1.5, report.Years[1].InterestCoverage, 0.001)
	assert.InDelta(t, -25.0, report.Years[1].OperatingGrowth, 0.01)

	assert.Empty(t, report.Improving)
	assert.Equal(t, []string{"영업이익 성장세 둔화", "재무안정성 악화", "현금흐름 품질 악화"}, report.Declining)
	assert.Equal(t, contracts.TrendDeclining, report.Signal)
}

func TestTrendStableWhenMixed(t *testing.T) {
	stmt := growingStmt()
	// 성장세는 개선 유지, 이자보상배율만 악화시킨다 (1 vs 1 → stable)
	stmt.Current.FinanceCost = 80e9 // coverage 1.65 < 2.75
	stmt.Current.OperatingCashFlow = 60e9
	stmt.Previous.OperatingCashFlow = 50e9
	stmt.Previous.NetIncome = 70e9
	stmt.Current.NetIncome = 90e9 // 품질 false → false (변화 없음)

	statements := newFakeStatementRepo()
	require.NoError(t, statements.Save(context.Background(), stmt))

	svc := newTestService(statements, nil)
	report, err := svc.Trend(context.Background(), "00126380", 2023, contracts.FsDivConsolidated)
	require.NoError(t, err)

	assert.Equal(t, []string{"영업이익 성장세 개선"}, report.Improving)
	assert.Equal(t, []string{"재무안정성 악화"}, report.Declining)
	assert.Equal(t, contracts.TrendStable, report.Signal)
}

func TestTrendInsufficientData(t *testing.T) {
	stmt := growingStmt()
	stmt.Previous = contracts.FinancialMetrics{}
	stmt.BeforePrevious = contracts.FinancialMetrics{}

	statements := newFakeStatementRepo()
	require.NoError(t, statements.Save(context.Background(), stmt))

	svc := newTestService(statements, nil)
	_, err := svc.Trend(context.Background(), "00126380", 2023, contracts.FsDivConsolidated)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrMissingData)
}

func TestTrendMissingStatementWithoutBuilder(t *testing.T) {
	svc := newTestService(newFakeStatementRepo(), nil)
	_, err := svc.Trend(context.Background(), "00126380", 2023, contracts.FsDivConsolidated)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrMissingData)
}

func TestTrendBuildsOnDemand(t *testing.T) {
	statements := newFakeStatementRepo()
	builder := &fakeBuilder{stmt: growingStmt()}

	svc := newTestService(statements, builder)
	report, err := svc.Trend(context.Background(), "00126380", 2023, contracts.FsDivConsolidated)
	require.NoError(t, err)

	assert.Equal(t, 1, builder.built)
	assert.Len(t, statements.saved, 1, "on-demand 수집분은 저장되어야 한다")
	assert.Equal(t, contracts.TrendImproving, report.Signal)
}

func TestTrendBuilderFailurePropagates(t *testing.T) {
	statements := newFakeStatementRepo()
	builder := &fakeBuilder{err: fmt.Errorf("%w: DART 응답 없음", contracts.ErrMissingData)}

	svc := newTestService(statements, builder)
	_, err := svc.Trend(context.Background(), "00126380", 2023, contracts.FsDivConsolidated)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrMissingData)
}

func TestTrendRejectsUnknownBasis(t *testing.T) {
	svc := newTestService(newFakeStatementRepo(), nil)
	_, err := svc.Trend(context.Background(), "00126380", 2023, contracts.FsDiv("IFRS"))
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInvalidRequest)
}

func TestGrowthRateZeroBase(t *testing.T) {
	assert.Zero(t, growthRate(100, 0))
	assert.InDelta(t, -50, growthRate(50, 100), 0.001)
	// 적자 폭 축소도 분모는 절대값
	assert.InDelta(t, 50, growthRate(-50, -100), 0.001)
}
