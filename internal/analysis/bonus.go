package analysis

import (
	"fmt"
	"math"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// BonusCalculator produces the four supplementary indicators (45점).
// ⭐ SSOT: 보완 지표 계산은 여기서만
// 핵심 5대 지표와 달리 매매 신호 없이 점수만 더한다.
type BonusCalculator struct {
	logger *logger.Logger
}

// NewBonusCalculator creates a new supplementary indicator calculator
func NewBonusCalculator(log *logger.Logger) *BonusCalculator {
	return &BonusCalculator{logger: log}
}

// Calculate returns the four supplementary indicators in fixed order
func (c *BonusCalculator) Calculate(stmt *contracts.RawStatement) []contracts.Indicator {
	indicators := []contracts.Indicator{
		c.roic(&stmt.Current),
		c.operatingMargin(&stmt.Current),
		c.retentionRatio(&stmt.Current),
		c.marginStability(stmt),
	}

	total := 0.0
	for _, ind := range indicators {
		total += ind.Score
	}

	c.logger.WithFields(map[string]interface{}{
		"corp_code":   stmt.CorpCode,
		"bonus_score": total,
	}).Debug("Calculated supplementary indicators")

	return indicators
}

// roic 투하자본이익률 (15점): 순수 영업 실력
func (c *BonusCalculator) roic(m *contracts.FinancialMetrics) contracts.Indicator {
	value := m.ROIC()

	var score float64
	switch {
	case value >= 20:
		score = 15
	case value >= 15:
		score = 12
	case value >= 10:
		score = 8
	case value >= 5:
		score = 4
	}

	desc := "수익 미흡"
	if value > 0 {
		desc = fmt.Sprintf("투하자본 대비 %.1f%% 수익", value)
	}

	return contracts.Indicator{
		Name:         "ROIC (투하자본이익률)",
		Category:     contracts.CategoryProfitability,
		Value:        round1(value),
		Score:        score,
		MaxScore:     15,
		Grade:        contracts.GradeForScore(score, 15),
		Description:  desc,
		GoodCriteria: "15% 이상 (순수 영업 실력)",
	}
}

// operatingMargin 영업이익률 (10점): 가격 결정력(해자)
func (c *BonusCalculator) operatingMargin(m *contracts.FinancialMetrics) contracts.Indicator {
	value := m.OperatingMargin()

	var score float64
	switch {
	case value >= 20:
		score = 10
	case value >= 15:
		score = 8
	case value >= 10:
		score = 6
	case value >= 5:
		score = 3
	}

	desc := "영업이익 없음"
	if value > 0 {
		desc = fmt.Sprintf("매출 대비 %.1f%% 영업이익", value)
	}

	return contracts.Indicator{
		Name:         "영업이익률",
		Category:     contracts.CategoryProfitability,
		Value:        round1(value),
		Score:        score,
		MaxScore:     10,
		Grade:        contracts.GradeForScore(score, 10),
		Description:  desc,
		GoodCriteria: "15% 이상 (가격 결정력 보유)",
	}
}

// retentionRatio 유보율 (10점): 위기 대응 능력
func (c *BonusCalculator) retentionRatio(m *contracts.FinancialMetrics) contracts.Indicator {
	value := m.RetentionRatio()

	var score float64
	switch {
	case value >= 1000:
		score = 10
	case value >= 500:
		score = 8
	case value >= 300:
		score = 5
	case value >= 100:
		score = 2
	}

	desc := "유보금 없음"
	if value > 0 {
		desc = fmt.Sprintf("자본금 대비 %.0f%% 유보", value)
	}

	return contracts.Indicator{
		Name:         "유보율",
		Category:     contracts.CategorySafety,
		Value:        round1(value),
		Score:        score,
		MaxScore:     10,
		Grade:        contracts.GradeForScore(score, 10),
		Description:  desc,
		GoodCriteria: "500% 이상 (위기 대응력 우수)",
	}
}

// marginStability 영업이익률 안정성 (10점): 3년간 변동성으로 해자 지속성 판정
func (c *BonusCalculator) marginStability(stmt *contracts.RawStatement) contracts.Indicator {
	var margins []float64
	for _, m := range []*contracts.FinancialMetrics{&stmt.Current, &stmt.Previous, &stmt.BeforePrevious} {
		if m.Revenue > 0 {
			margins = append(margins, m.OperatingMargin())
		}
	}

	// 2개년 미만이면 판정 불가: 중립 점수
	if len(margins) < 2 {
		return contracts.Indicator{
			Name:         "영업이익률 안정성",
			Category:     contracts.CategoryMoat,
			Value:        0,
			Score:        5,
			MaxScore:     10,
			Grade:        contracts.GradeForScore(5, 10),
			Description:  "데이터 부족",
			GoodCriteria: "3년 연속 10% 이상 유지",
		}
	}

	avg := 0.0
	for _, m := range margins {
		avg += m
	}
	avg /= float64(len(margins))

	variance := 0.0
	for _, m := range margins {
		variance += (m - avg) * (m - avg)
	}
	stdDev := math.Sqrt(variance / float64(len(margins)))

	var score float64
	switch {
	case avg >= 10 && stdDev < 3:
		score = 10
	case avg >= 10 && stdDev < 5:
		score = 8
	case avg >= 7 && stdDev < 5:
		score = 5
	case avg >= 5:
		score = 3
	}

	return contracts.Indicator{
		Name:         "영업이익률 안정성",
		Category:     contracts.CategoryMoat,
		Value:        round1(avg),
		Score:        score,
		MaxScore:     10,
		Grade:        contracts.GradeForScore(score, 10),
		Description:  fmt.Sprintf("3년 평균 %.1f%% (변동성 %.1f%%p)", avg, stdDev),
		GoodCriteria: "3년 연속 10% 이상 + 낮은 변동성",
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
