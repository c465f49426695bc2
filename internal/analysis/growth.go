package analysis

import (
	"fmt"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// GrowthCalculator scores operating profit growth year over year.
// ⭐ SSOT: 영업이익 성장률 지표 계산은 여기서만
// 15% 이상 고성장주, 역성장은 감점
type GrowthCalculator struct {
	logger *logger.Logger
}

// NewGrowthCalculator creates a new growth calculator
func NewGrowthCalculator(log *logger.Logger) *GrowthCalculator {
	return &GrowthCalculator{logger: log}
}

// Calculate scores operating profit growth against the prior term
func (c *GrowthCalculator) Calculate(stmt *contracts.RawStatement) contracts.Indicator {
	value, signal, desc := c.classify(&stmt.Current, &stmt.Previous)

	ind := contracts.Indicator{
		Name:         "영업이익 성장률",
		Category:     contracts.CategoryGrowth,
		Value:        value,
		Score:        signal.Points(),
		MaxScore:     20,
		Signal:       signal,
		Description:  desc,
		GoodCriteria: "15% 이상 고성장",
	}
	ind.Grade = contracts.GradeForScore(ind.Score, ind.MaxScore)

	c.logger.WithFields(map[string]interface{}{
		"corp_code": stmt.CorpCode,
		"curr_oi":   stmt.Current.OperatingIncome,
		"prev_oi":   stmt.Previous.OperatingIncome,
		"value":     value,
		"signal":    signal,
	}).Debug("Calculated growth indicator")

	return ind
}

func (c *GrowthCalculator) classify(curr, prev *contracts.FinancialMetrics) (float64, contracts.Signal, string) {
	// 전기 영업이익이 없으면 성장률 계산 불가: 흑자 전환 여부로 판정
	if prev.OperatingIncome <= 0 {
		if curr.OperatingIncome > 0 {
			return 100, contracts.SignalStrongBuy, "흑자 전환 성공"
		}
		return 0, contracts.SignalStrongSell, "적자 지속"
	}

	growth := (curr.OperatingIncome - prev.OperatingIncome) / prev.OperatingIncome * 100

	trend := "유지"
	if growth > 0 {
		trend = "성장"
	} else if growth < 0 {
		trend = "감소"
	}
	desc := fmt.Sprintf("전년 대비 %+.1f%% %s", growth, trend)

	switch {
	case growth >= 15:
		return growth, contracts.SignalStrongBuy, desc + ". 고성장주입니다"
	case growth >= 10:
		return growth, contracts.SignalBuy, desc + ". 양호한 성장세입니다"
	case growth >= 0:
		return growth, contracts.SignalHold, desc
	default:
		return growth, contracts.SignalSell, desc + ". 역성장 중입니다"
	}
}
