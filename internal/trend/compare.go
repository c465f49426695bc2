package trend

import (
	"math"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// dilutionIndicator is the one indicator where a smaller value wins.
const dilutionIndicator = "희석 가능 물량 비율"

// Compare builds a head-to-head diff of two analyses run on the same
// (year, basis). Indicators are matched by name, the overall winner by
// total score. 동점이면 "tie".
func Compare(year int, fsDiv contracts.FsDiv, a, b *contracts.CompanyAnalysis) *contracts.Comparison {
	cmp := &contracts.Comparison{
		Year:      year,
		FsDiv:     fsDiv,
		CompanyA:  a,
		CompanyB:  b,
		ScoreDiff: math.Abs(a.TotalScore - b.TotalScore),
	}

	byName := make(map[string]contracts.Indicator, len(b.Indicators))
	for _, ind := range b.Indicators {
		byName[ind.Name] = ind
	}

	for _, indA := range a.Indicators {
		indB, ok := byName[indA.Name]
		if !ok {
			continue
		}

		higherIsBetter := indA.Name != dilutionIndicator
		cmp.Indicators = append(cmp.Indicators, contracts.IndicatorWinner{
			Name:           indA.Name,
			ValueA:         indA.Value,
			ValueB:         indB.Value,
			Winner:         indicatorWinner(a.CorpCode, b.CorpCode, indA.Value, indB.Value, higherIsBetter),
			HigherIsBetter: higherIsBetter,
		})
	}

	switch {
	case a.TotalScore > b.TotalScore:
		cmp.Winner = a.CorpCode
	case b.TotalScore > a.TotalScore:
		cmp.Winner = b.CorpCode
	default:
		cmp.Winner = "tie"
	}
	return cmp
}

func indicatorWinner(codeA, codeB string, valueA, valueB float64, higherIsBetter bool) string {
	if valueA == valueB {
		return "tie"
	}
	aWins := valueA > valueB
	if !higherIsBetter {
		aWins = !aWins
	}
	if aWins {
		return codeA
	}
	return codeB
}
