package analysis

import (
	"fmt"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// DilutionCalculator scores convertible overhang against issued shares.
// ⭐ SSOT: 희석 가능 물량 지표 계산은 여기서만
// 전환사채/신주인수권은 주가 상승 시 매물로 돌아온다. 낮을수록 좋다.
type DilutionCalculator struct {
	logger *logger.Logger
}

// NewDilutionCalculator creates a new dilution calculator
func NewDilutionCalculator(log *logger.Logger) *DilutionCalculator {
	return &DilutionCalculator{logger: log}
}

// Calculate scores the potential dilution ratio
func (c *DilutionCalculator) Calculate(stmt *contracts.RawStatement) contracts.Indicator {
	ratio := stmt.DilutionRatio()

	var signal contracts.Signal
	var desc string

	// 5.0%는 '감내 가능'이 아니라 '주의' 구간이다 (미만 비교)
	switch {
	case ratio == 0:
		signal = contracts.SignalStrongBuy
		desc = "전환사채가 없어 희석 위험이 없습니다"
	case ratio < 5:
		signal = contracts.SignalBuy
		desc = fmt.Sprintf("희석 비율 %.1f%%로 감내 가능한 수준입니다", ratio)
	case ratio < 10:
		signal = contracts.SignalCaution
		desc = fmt.Sprintf("희석 비율 %.1f%%로 주의가 필요합니다", ratio)
	default:
		signal = contracts.SignalSell
		desc = fmt.Sprintf("희석 비율 %.1f%%로 주가 상승시 매물 출회 우려가 있습니다", ratio)
	}

	ind := contracts.Indicator{
		Name:         "희석 가능 물량 비율",
		Category:     contracts.CategorySafety,
		Value:        ratio,
		Score:        signal.Points(),
		MaxScore:     20,
		Signal:       signal,
		Description:  desc,
		GoodCriteria: "0% 최선, 5% 미만 감내 가능, 10% 이상 주의",
	}
	ind.Grade = contracts.GradeForScore(ind.Score, ind.MaxScore)

	c.logger.WithFields(map[string]interface{}{
		"corp_code":          stmt.CorpCode,
		"convertible_shares": stmt.ConvertibleShares,
		"total_shares":       stmt.TotalShares,
		"value":              ratio,
		"signal":             signal,
	}).Debug("Calculated dilution indicator")

	return ind
}
