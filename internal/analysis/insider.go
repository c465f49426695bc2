package analysis

import (
	"fmt"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// InsiderCalculator scores executive net buying over the recent window.
// ⭐ SSOT: 임원/주요주주 순매수 지표 계산은 여기서만
// 회사를 가장 잘 아는 사람들의 자기 돈이 가장 정직한 신호다.
type InsiderCalculator struct {
	logger *logger.Logger
}

// NewInsiderCalculator creates a new insider trading calculator
func NewInsiderCalculator(log *logger.Logger) *InsiderCalculator {
	return &InsiderCalculator{logger: log}
}

// Calculate scores insider net-buy strength from the collected 6-month window
func (c *InsiderCalculator) Calculate(stmt *contracts.RawStatement) contracts.Indicator {
	buys := stmt.InsiderBuyCount
	sells := stmt.InsiderSellCount

	var signal contracts.Signal
	var desc string

	switch {
	case stmt.CEOBought || buys >= 2:
		signal = contracts.SignalStrongBuy
		desc = fmt.Sprintf("최근 6개월간 %d명의 임원이 순매수했습니다. 강력한 호재", buys)
	case buys >= 1:
		signal = contracts.SignalBuy
		desc = fmt.Sprintf("최근 6개월간 %d명의 임원이 순매수했습니다", buys)
	case sells > buys:
		signal = contracts.SignalSell
		desc = fmt.Sprintf("매도가 매수보다 많습니다 (%d건 매도)", sells)
	default:
		signal = contracts.SignalHold
		desc = "특별한 내부자 거래 신호가 없습니다"
	}

	ind := contracts.Indicator{
		Name:         "임원/주요주주 순매수 강도",
		Category:     contracts.CategorySafety,
		Value:        float64(buys - sells),
		Score:        signal.Points(),
		MaxScore:     20,
		Signal:       signal,
		Description:  desc,
		GoodCriteria: "2인 이상 순매수 또는 대표이사 매수",
	}
	ind.Grade = contracts.GradeForScore(ind.Score, ind.MaxScore)

	c.logger.WithFields(map[string]interface{}{
		"corp_code":  stmt.CorpCode,
		"buy_count":  buys,
		"sell_count": sells,
		"ceo_bought": stmt.CEOBought,
		"signal":     signal,
	}).Debug("Calculated insider indicator")

	return ind
}
