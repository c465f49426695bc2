package dart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

const (
	// 재무제표 탐색 범위: 요청 연도 포함 최대 6개년
	maxYearFallback = 6

	// 총 주식수 추정용 액면가 (원)
	parValue = 5000

	// 임원 순매수 집계 기간
	insiderWindow = 180 * 24 * time.Hour

	// 전환사채 공시 조회 기간: 최근 1년
	convertibleWindowDays = 365
)

// Builder assembles one company's complete RawStatement: three terms of
// financial metrics plus dilution and insider enrichments.
// ⭐ SSOT: 원시 재무데이터 조립은 이 빌더에서만
type Builder struct {
	client *Client
	logger *logger.Logger
}

// NewBuilder creates a statement builder on top of the DART client.
func NewBuilder(client *Client, log *logger.Logger) *Builder {
	return &Builder{client: client, logger: log}
}

// Build fetches and assembles the RawStatement for a company, walking the
// fallback chain until a filing with data is found: requested basis before
// separate statements, requested year back up to five years, annual report
// before half-year report.
func (b *Builder) Build(ctx context.Context, company *contracts.Company, year int, fsDiv contracts.FsDiv) (*contracts.RawStatement, error) {
	found, err := b.searchStatements(ctx, company, year, fsDiv)
	if err != nil {
		return nil, err
	}

	current := ExtractMetricsWithFallback(found.rows)
	previous := ExtractMetrics(found.rows, TermPrevious)
	beforePrev := ExtractMetrics(found.rows, TermBeforePrevious)

	// 저장 키는 요청한 (연도, 구분) 그대로 유지하고,
	// 실제로 어느 공시를 썼는지는 DataSource가 기록한다.
	stmt := &contracts.RawStatement{
		CorpCode:       company.CorpCode,
		CorpName:       company.CorpName,
		StockCode:      company.StockCode,
		Year:           year,
		FsDiv:          fsDiv,
		Current:        current,
		Previous:       previous,
		BeforePrevious: beforePrev,
		DataSource:     dataSourceNote(fsDiv, found.fsDiv, year, found.year, found.report),
		SourceYear:     found.year,
		SourceFsDiv:    found.fsDiv,
		FetchedAt:      time.Now(),
	}

	// 자본금 / 액면가로 총 주식수 추정
	if current.CapitalStock > 0 {
		stmt.TotalShares = int64(current.CapitalStock / parValue)
	}

	b.enrichDilution(ctx, stmt)
	b.enrichInsider(ctx, stmt)

	b.logger.WithFields(map[string]interface{}{
		"corp_code":   stmt.CorpCode,
		"corp_name":   stmt.CorpName,
		"data_source": stmt.DataSource,
	}).Debug("Built raw statement")

	return stmt, nil
}

type foundStatements struct {
	rows   []AccountRow
	year   int
	fsDiv  contracts.FsDiv
	report contracts.ReportCode
}

// searchStatements walks the fallback chain until a filing with rows
// turns up. The upstream answering "no data" anywhere in the chain
// classifies the company as missing; only a chain of pure transport
// failures surfaces as an upstream error.
func (b *Builder) searchStatements(ctx context.Context, company *contracts.Company, year int, fsDiv contracts.FsDiv) (*foundStatements, error) {
	fsDivs := []contracts.FsDiv{fsDiv}
	if fsDiv == contracts.FsDivConsolidated {
		fsDivs = append(fsDivs, contracts.FsDivSeparate)
	}
	reports := []contracts.ReportCode{contracts.ReportAnnual, contracts.ReportHalfYear}

	var lastErr error
	sawNoData := false
	attempts := 0

	for _, tryFsDiv := range fsDivs {
		for offset := 0; offset < maxYearFallback; offset++ {
			tryYear := year - offset
			for _, report := range reports {
				attempts++

				rows, err := b.client.FetchStatements(ctx, company.CorpCode, tryYear, report, tryFsDiv)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return nil, err
					}
					if errors.Is(err, contracts.ErrMissingData) {
						sawNoData = true
						continue
					}

					lastErr = err
					b.logger.WithError(err).WithFields(map[string]interface{}{
						"corp_code": company.CorpCode,
						"fs_div":    tryFsDiv,
						"year":      tryYear,
						"report":    report,
					}).Debug("Statement fetch attempt failed")
					continue
				}

				if len(rows) == 0 {
					sawNoData = true
					continue
				}

				return &foundStatements{rows: rows, year: tryYear, fsDiv: tryFsDiv, report: report}, nil
			}
		}
	}

	if !sawNoData && lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %s (%d combinations tried)", contracts.ErrMissingData, company.CorpCode, attempts)
}

// dataSourceNote describes which filing actually backed the analysis,
// e.g. "OFS/2022 (CFS 없음, 1년 전, 반기보고서)".
func dataSourceNote(wantFsDiv, gotFsDiv contracts.FsDiv, wantYear, gotYear int, report contracts.ReportCode) string {
	note := fmt.Sprintf("%s/%d", gotFsDiv, gotYear)

	var remarks []string
	if gotFsDiv != wantFsDiv {
		remarks = append(remarks, fmt.Sprintf("%s 없음", wantFsDiv))
	}
	if diff := wantYear - gotYear; diff > 0 {
		remarks = append(remarks, fmt.Sprintf("%d년 전", diff))
	}
	if report != contracts.ReportAnnual {
		remarks = append(remarks, "반기보고서")
	}

	if len(remarks) > 0 {
		note += " (" + strings.Join(remarks, ", ") + ")"
	}
	return note
}

// enrichDilution pulls convertible bond decisions from the last year.
// Failures leave the statement without overhang data rather than failing
// the whole build.
func (b *Builder) enrichDilution(ctx context.Context, stmt *contracts.RawStatement) {
	to := time.Now()
	from := to.AddDate(0, 0, -convertibleWindowDays)

	shares, err := b.client.FetchConvertibleShares(ctx, stmt.CorpCode, from, to)
	if err != nil {
		b.logger.WithError(err).WithField("corp_code", stmt.CorpCode).Debug("Convertible bond lookup failed")
		return
	}
	stmt.ConvertibleShares = shares
}

// enrichInsider pulls executive trade counts for the last six months.
func (b *Builder) enrichInsider(ctx context.Context, stmt *contracts.RawStatement) {
	since := time.Now().Add(-insiderWindow)

	activity, err := b.client.FetchInsiderActivity(ctx, stmt.CorpCode, since)
	if err != nil {
		b.logger.WithError(err).WithField("corp_code", stmt.CorpCode).Debug("Insider activity lookup failed")
		return
	}

	stmt.InsiderBuyCount = activity.BuyCount
	stmt.InsiderSellCount = activity.SellCount
	stmt.CEOBought = activity.CEOBought
}
