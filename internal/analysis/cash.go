package analysis

import (
	"fmt"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// CashGenerationCalculator scores operating cash flow against net income.
// ⭐ SSOT: 현금창출력 지표 계산은 여기서만
// 버핏 기준: 영업활동현금흐름 > 당기순이익 (장부상 이익이 아닌 실제 현금)
type CashGenerationCalculator struct {
	logger *logger.Logger
}

// NewCashGenerationCalculator creates a new cash generation calculator
func NewCashGenerationCalculator(log *logger.Logger) *CashGenerationCalculator {
	return &CashGenerationCalculator{logger: log}
}

// Calculate scores the current term's cash generation quality
func (c *CashGenerationCalculator) Calculate(stmt *contracts.RawStatement) contracts.Indicator {
	m := &stmt.Current

	value, signal, desc := c.classify(m)

	ind := contracts.Indicator{
		Name:         "현금창출력 (OCF/NI)",
		Category:     contracts.CategoryCash,
		Value:        value,
		Score:        signal.Points(),
		MaxScore:     20,
		Signal:       signal,
		Description:  desc,
		GoodCriteria: "영업현금흐름 > 순이익 (이익보다 현금이 많이 들어옴)",
	}
	ind.Grade = contracts.GradeForScore(ind.Score, ind.MaxScore)

	c.logger.WithFields(map[string]interface{}{
		"corp_code": stmt.CorpCode,
		"ocf":       m.OperatingCashFlow,
		"ni":        m.NetIncome,
		"value":     value,
		"signal":    signal,
	}).Debug("Calculated cash generation indicator")

	return ind
}

func (c *CashGenerationCalculator) classify(m *contracts.FinancialMetrics) (float64, contracts.Signal, string) {
	// 적자 기업: 현금흐름만 양수면 오히려 최상 (적자에도 현금을 벌어옴)
	if m.NetIncome <= 0 {
		if m.OperatingCashFlow > 0 {
			return 999, contracts.SignalStrongBuy, "적자에도 현금 창출"
		}
		return 0, contracts.SignalStrongSell, "적자 + 현금흐름 부정적"
	}

	ratio := m.OperatingCashFlow / m.NetIncome

	switch {
	case m.OperatingCashFlow > m.NetIncome:
		return ratio, contracts.SignalStrongBuy,
			fmt.Sprintf("순이익 대비 %.2f배 현금 창출. 현금 창출 능력이 우수합니다", ratio)
	case ratio >= 0.7:
		return ratio, contracts.SignalHold,
			fmt.Sprintf("순이익 대비 %.2f배 현금 창출", ratio)
	case ratio >= 0.5:
		return ratio, contracts.SignalCaution,
			fmt.Sprintf("순이익 대비 %.2f배. 매출채권 회수나 재고 관리에 주의가 필요합니다", ratio)
	default:
		return ratio, contracts.SignalSell,
			fmt.Sprintf("순이익 대비 %.2f배. 이익의 질이 의심됩니다", ratio)
	}
}
