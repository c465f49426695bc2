package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/internal/contracts"
)

func analysisFixture(corpCode string, total float64, icr, dilution float64) *contracts.CompanyAnalysis {
	return &contracts.CompanyAnalysis{
		CorpCode:   corpCode,
		Year:       2023,
		FsDiv:      contracts.FsDivConsolidated,
		TotalScore: total,
		Indicators: []contracts.Indicator{
			{Name: "이자보상배율", Value: icr},
			{Name: "희석 가능 물량 비율", Value: dilution},
		},
	}
}

func TestCompareWinners(t *testing.T) {
	a := analysisFixture("00126380", 120, 3.5, 2.0)
	b := analysisFixture("00164742", 95, 1.2, 0)

	cmp := Compare(2023, contracts.FsDivConsolidated, a, b)

	assert.Equal(t, 2023, cmp.Year)
	assert.Equal(t, contracts.FsDivConsolidated, cmp.FsDiv)
	assert.Equal(t, "00126380", cmp.Winner)
	assert.InDelta(t, 25.0, cmp.ScoreDiff, 0.001)

	require.Len(t, cmp.Indicators, 2)

	icr := cmp.Indicators[0]
	assert.Equal(t, "이자보상배율", icr.Name)
	assert.True(t, icr.HigherIsBetter)
	assert.Equal(t, "00126380", icr.Winner)

	// 희석 물량은 적을수록 좋다
	dilution := cmp.Indicators[1]
	assert.Equal(t, "희석 가능 물량 비율", dilution.Name)
	assert.False(t, dilution.HigherIsBetter)
	assert.Equal(t, "00164742", dilution.Winner)
}

func TestCompareTie(t *testing.T) {
	a := analysisFixture("00126380", 100, 2.0, 1.0)
	b := analysisFixture("00164742", 100, 2.0, 1.0)

	cmp := Compare(2023, contracts.FsDivConsolidated, a, b)

	assert.Equal(t, "tie", cmp.Winner)
	assert.Zero(t, cmp.ScoreDiff)
	for _, ind := range cmp.Indicators {
		assert.Equal(t, "tie", ind.Winner)
	}
}

func TestCompareSkipsUnmatchedIndicators(t *testing.T) {
	a := analysisFixture("00126380", 110, 3.0, 1.0)
	a.Indicators = append(a.Indicators, contracts.Indicator{Name: "유보율", Value: 700})
	b := analysisFixture("00164742", 90, 2.0, 2.0)

	cmp := Compare(2023, contracts.FsDivConsolidated, a, b)

	// 한쪽에만 있는 지표는 비교 대상에서 빠진다
	require.Len(t, cmp.Indicators, 2)
	for _, ind := range cmp.Indicators {
		assert.NotEqual(t, "유보율", ind.Name)
	}
}
