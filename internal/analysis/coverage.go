package analysis

import (
	"fmt"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// InterestCoverageCalculator scores operating income against finance cost.
// ⭐ SSOT: 이자보상배율 지표 계산은 여기서만
// 3배 이상 안전, 1배 미만은 이자도 못 갚는 좀비 기업
type InterestCoverageCalculator struct {
	logger *logger.Logger
}

// NewInterestCoverageCalculator creates a new interest coverage calculator
func NewInterestCoverageCalculator(log *logger.Logger) *InterestCoverageCalculator {
	return &InterestCoverageCalculator{logger: log}
}

// Calculate scores the current term's interest coverage
func (c *InterestCoverageCalculator) Calculate(stmt *contracts.RawStatement) contracts.Indicator {
	m := &stmt.Current

	value, signal, desc := c.classify(m)

	ind := contracts.Indicator{
		Name:         "이자보상배율",
		Category:     contracts.CategorySafety,
		Value:        value,
		Score:        signal.Points(),
		MaxScore:     20,
		Signal:       signal,
		Description:  desc,
		GoodCriteria: "3배 이상 안전, 1배 미만 위험",
	}
	ind.Grade = contracts.GradeForScore(ind.Score, ind.MaxScore)

	c.logger.WithFields(map[string]interface{}{
		"corp_code":    stmt.CorpCode,
		"oi":           m.OperatingIncome,
		"finance_cost": m.FinanceCost,
		"value":        value,
		"signal":       signal,
	}).Debug("Calculated interest coverage indicator")

	return ind
}

func (c *InterestCoverageCalculator) classify(m *contracts.FinancialMetrics) (float64, contracts.Signal, string) {
	// 이자비용이 없으면 무한대 센티널 (무차입 경영)
	if m.FinanceCost <= 0 {
		if m.OperatingIncome > 0 {
			return 999, contracts.SignalStrongBuy, "무차입 또는 이자비용 없음. 매우 안전합니다"
		}
		return 0, contracts.SignalStrongSell, "영업이익 없음"
	}

	ratio := m.OperatingIncome / m.FinanceCost

	switch {
	case ratio >= 3.0:
		return ratio, contracts.SignalStrongBuy,
			fmt.Sprintf("이자보상배율 %.2f배로 매우 안전합니다", ratio)
	case ratio >= 1.5:
		return ratio, contracts.SignalBuy,
			fmt.Sprintf("이자보상배율 %.2f배로 최소 기준을 충족합니다", ratio)
	case ratio >= 1.0:
		return ratio, contracts.SignalCaution,
			fmt.Sprintf("이자보상배율 %.2f배로 주의가 필요합니다", ratio)
	default:
		return ratio, contracts.SignalStrongSell,
			fmt.Sprintf("이자보상배율 %.2f배로 이자도 못 갚는 좀비 기업입니다", ratio)
	}
}
