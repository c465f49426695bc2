package trend

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// windowYears is how far back the direction analysis looks.
const windowYears = 3

// Service builds multi-year direction reports from collected statements.
// ⭐ SSOT: 추세 분석은 여기서만
//
// 한 건의 RawStatement가 당기/전기/전전기 3개 회계연도를 품고 있으므로
// 기준연도 스냅샷 하나로 전체 분석 구간을 복원한다.
type Service struct {
	statements contracts.StatementRepository
	companies  contracts.CompanyRepository
	builder    contracts.StatementBuilder

	logger *logger.Logger
}

// NewService creates the trend analyzer. builder may be nil when
// on-demand collection is not wanted (store-only deployments).
func NewService(
	statements contracts.StatementRepository,
	companies contracts.CompanyRepository,
	builder contracts.StatementBuilder,
	log *logger.Logger,
) *Service {
	return &Service{
		statements: statements,
		companies:  companies,
		builder:    builder,
		logger:     log.WithField("module", "trend"),
	}
}

// Trend analyzes the direction of the last three fiscal years ending at
// year. Needs at least two usable years, otherwise ErrMissingData.
func (s *Service) Trend(ctx context.Context, corpCode string, year int, fsDiv contracts.FsDiv) (*contracts.TrendReport, error) {
	if !fsDiv.IsValid() {
		return nil, fmt.Errorf("%w: fs_div %q", contracts.ErrInvalidRequest, fsDiv)
	}

	stmt, err := s.loadStatement(ctx, corpCode, year, fsDiv)
	if err != nil {
		return nil, err
	}

	years := windowFromStatement(stmt)
	if len(years) < 2 {
		return nil, fmt.Errorf("%w: %s %d년 추세 분석 데이터 부족 (%d개년)",
			contracts.ErrMissingData, corpCode, year, len(years))
	}

	report := &contracts.TrendReport{
		CorpCode: corpCode,
		CorpName: stmt.CorpName,
		FsDiv:    fsDiv,
		Years:    years,
	}
	judge(report)

	s.logger.WithFields(map[string]interface{}{
		"corp_code": corpCode,
		"year":      year,
		"terms":     len(years),
		"signal":    report.Signal,
	}).Debug("Trend analysis complete")
	return report, nil
}

// loadStatement reads the stored snapshot and falls back to an on-demand
// build (write-through) when nothing has been collected yet.
func (s *Service) loadStatement(ctx context.Context, corpCode string, year int, fsDiv contracts.FsDiv) (*contracts.RawStatement, error) {
	stmt, err := s.statements.Get(ctx, corpCode, year, fsDiv)
	if err == nil {
		return stmt, nil
	}
	if !errors.Is(err, contracts.ErrMissingData) || s.builder == nil {
		return nil, err
	}

	company, lookupErr := s.companies.Get(ctx, corpCode)
	if lookupErr != nil {
		if !errors.Is(lookupErr, contracts.ErrCompanyNotFound) {
			return nil, lookupErr
		}
		company = &contracts.Company{CorpCode: corpCode}
	}

	stmt, err = s.builder.Build(ctx, company, year, fsDiv)
	if err != nil {
		return nil, err
	}
	if saveErr := s.statements.Save(ctx, stmt); saveErr != nil {
		s.logger.WithError(saveErr).WithField("corp_code", corpCode).Error("Failed to persist on-demand statement")
	}
	return stmt, nil
}

// windowFromStatement unrolls the embedded terms into per-year rows,
// oldest first. Empty terms (신규 상장 등) are dropped.
func windowFromStatement(stmt *contracts.RawStatement) []contracts.TrendYear {
	terms := []struct {
		year    int
		metrics *contracts.FinancialMetrics
	}{
		{stmt.Year - 2, &stmt.BeforePrevious},
		{stmt.Year - 1, &stmt.Previous},
		{stmt.Year, &stmt.Current},
	}

	years := make([]contracts.TrendYear, 0, windowYears)
	var prev *contracts.FinancialMetrics
	for _, t := range terms {
		if t.metrics.IsEmpty() {
			continue
		}

		ty := contracts.TrendYear{
			Year:              t.year,
			OperatingIncome:   t.metrics.OperatingIncome,
			NetIncome:         t.metrics.NetIncome,
			OperatingCashFlow: t.metrics.OperatingCashFlow,
			FinanceCost:       t.metrics.FinanceCost,
			TotalEquity:       t.metrics.TotalEquity,
			TotalAssets:       t.metrics.TotalAssets,
			InterestCoverage:  interestCoverage(t.metrics),
			CashQuality:       t.metrics.OperatingCashFlow > t.metrics.NetIncome,
		}
		if prev != nil {
			ty.OperatingGrowth = growthRate(t.metrics.OperatingIncome, prev.OperatingIncome)
			ty.NetIncomeGrowth = growthRate(t.metrics.NetIncome, prev.NetIncome)
		}

		years = append(years, ty)
		prev = t.metrics
	}
	return years
}

// growthRate 전년 대비 증감률 %. 전년이 0이면 0.
func growthRate(curr, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (curr - prev) / math.Abs(prev) * 100
}

// interestCoverage 이자보상배율. 이자비용이 없으면 999.
func interestCoverage(m *contracts.FinancialMetrics) float64 {
	if m.FinanceCost == 0 {
		return 999
	}
	return m.OperatingIncome / m.FinanceCost
}

// judge fills Improving/Declining and the aggregate signal by comparing
// the latest year against the one before it.
func judge(report *contracts.TrendReport) {
	latest := report.Years[len(report.Years)-1]
	previous := report.Years[len(report.Years)-2]

	improving := []string{}
	declining := []string{}

	switch {
	case latest.OperatingGrowth > previous.OperatingGrowth:
		improving = append(improving, "영업이익 성장세 개선")
	case latest.OperatingGrowth < previous.OperatingGrowth:
		declining = append(declining, "영업이익 성장세 둔화")
	}

	switch {
	case latest.InterestCoverage > previous.InterestCoverage:
		improving = append(improving, "재무안정성 개선")
	case latest.InterestCoverage < previous.InterestCoverage:
		declining = append(declining, "재무안정성 악화")
	}

	switch {
	case latest.CashQuality && !previous.CashQuality:
		improving = append(improving, "현금흐름 품질 개선")
	case !latest.CashQuality && previous.CashQuality:
		declining = append(declining, "현금흐름 품질 악화")
	}

	report.Improving = improving
	report.Declining = declining

	switch {
	case len(improving) > len(declining):
		report.Signal = contracts.TrendImproving
	case len(declining) > len(improving):
		report.Signal = contracts.TrendDeclining
	default:
		report.Signal = contracts.TrendStable
	}
}
