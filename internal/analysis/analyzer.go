package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// Analyzer orchestrates the calculators, the filter and the aggregation.
// ⭐ SSOT: 종합 채점 오케스트레이션은 여기서만
// 순수 함수다: 같은 RawStatement는 언제나 같은 점수/등급/신호를 낸다.
type Analyzer struct {
	cash     *CashGenerationCalculator
	coverage *InterestCoverageCalculator
	growth   *GrowthCalculator
	dilution *DilutionCalculator
	insider  *InsiderCalculator
	bonus    *BonusCalculator
	filter   *Filter

	logger *logger.Logger
}

// NewAnalyzer creates a new company analyzer
func NewAnalyzer(
	cash *CashGenerationCalculator,
	coverage *InterestCoverageCalculator,
	growth *GrowthCalculator,
	dilution *DilutionCalculator,
	insider *InsiderCalculator,
	bonus *BonusCalculator,
	filter *Filter,
	log *logger.Logger,
) *Analyzer {
	return &Analyzer{
		cash:     cash,
		coverage: coverage,
		growth:   growth,
		dilution: dilution,
		insider:  insider,
		bonus:    bonus,
		filter:   filter,
		logger:   log,
	}
}

// NewDefaultAnalyzer wires an analyzer with all standard calculators
func NewDefaultAnalyzer(log *logger.Logger) *Analyzer {
	return NewAnalyzer(
		NewCashGenerationCalculator(log),
		NewInterestCoverageCalculator(log),
		NewGrowthCalculator(log),
		NewDilutionCalculator(log),
		NewInsiderCalculator(log),
		NewBonusCalculator(log),
		NewFilter(log),
		log,
	)
}

// Analyze scores one raw statement into a full company analysis.
// 핵심 5대 지표 100점 + 보완 4개 지표 45점. 필터 탈락 시 표시 점수는 0이며
// 원점수는 RawScore에 보존된다.
func (a *Analyzer) Analyze(stmt *contracts.RawStatement) *contracts.CompanyAnalysis {
	// 핵심 5대 지표 (지표당 20점)
	indicators := []contracts.Indicator{
		a.cash.Calculate(stmt),
		a.coverage.Calculate(stmt),
		a.growth.Calculate(stmt),
		a.dilution.Calculate(stmt),
		a.insider.Calculate(stmt),
	}

	baseScore := 0.0
	for _, ind := range indicators {
		baseScore += ind.Score
	}

	// 보완 지표 (45점)
	bonusIndicators := a.bonus.Calculate(stmt)
	indicators = append(indicators, bonusIndicators...)

	bonusScore := 0.0
	for _, ind := range bonusIndicators {
		bonusScore += ind.Score
	}

	rawScore := baseScore + bonusScore
	filterResult := a.filter.Check(stmt)

	analysis := &contracts.CompanyAnalysis{
		CorpCode:      stmt.CorpCode,
		CorpName:      stmt.CorpName,
		StockCode:     stmt.StockCode,
		Year:          stmt.Year,
		FsDiv:         stmt.FsDiv,
		Indicators:    indicators,
		BaseScore:     baseScore,
		BonusScore:    bonusScore,
		RawScore:      rawScore,
		FilterPassed:  filterResult.Passed,
		FilterReasons: filterResult.Reasons,
		DataSource:    stmt.DataSource,
		AnalyzedAt:    time.Now(),
	}

	if filterResult.Passed {
		analysis.TotalScore = rawScore
		analysis.Signal = contracts.SignalForScore(rawScore)
		analysis.Rating = contracts.RatingForScore(rawScore)
	} else {
		// 표시 점수는 0으로 강제, 신호는 투자부적격
		analysis.TotalScore = 0
		analysis.Signal = contracts.SignalDisqualified
		analysis.Rating = contracts.RatingForFilterFail(filterResult.Reasons)
	}

	analysis.Grade = contracts.GradeForScore(analysis.TotalScore, 100)
	analysis.Recommendation = sourceNote(stmt) + analysis.Rating.Advice

	a.logger.WithFields(map[string]interface{}{
		"corp_code":     stmt.CorpCode,
		"corp_name":     stmt.CorpName,
		"base_score":    baseScore,
		"bonus_score":   bonusScore,
		"total_score":   analysis.TotalScore,
		"signal":        analysis.Signal,
		"filter_passed": filterResult.Passed,
	}).Debug("Analyzed company")

	return analysis
}

// sourceNote prefixes the recommendation when the analysis ran on a
// fallback filing, 예: "[2022년, 개별재무제표 사용] "
func sourceNote(stmt *contracts.RawStatement) string {
	var parts []string
	if stmt.SourceYear != 0 && stmt.SourceYear != stmt.Year {
		parts = append(parts, fmt.Sprintf("%d년", stmt.SourceYear))
	}
	if stmt.SourceFsDiv != "" && stmt.SourceFsDiv != stmt.FsDiv {
		parts = append(parts, stmt.SourceFsDiv.Korean()+"재무제표")
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ", ") + " 사용] "
}
