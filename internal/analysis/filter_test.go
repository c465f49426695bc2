package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// soundStmt returns a statement that clears every knockout rule.
func soundStmt() *contracts.RawStatement {
	return &contracts.RawStatement{
		CorpCode: "00164779",
		CorpName: "SK하이닉스",
		Year:     2023,
		FsDiv:    contracts.FsDivConsolidated,
		Current: contracts.FinancialMetrics{
			Revenue:           1000,
			OperatingIncome:   150,
			FinanceCost:       10,
			NetIncome:         100,
			TotalEquity:       800,
			OperatingCashFlow: 120,
		},
		Previous: contracts.FinancialMetrics{
			Revenue:           900,
			OperatingIncome:   130,
			NetIncome:         90,
			OperatingCashFlow: 110,
		},
	}
}

func TestFilter_SoundCompanyPasses(t *testing.T) {
	f := NewFilter(newTestLogger())

	result := f.Check(soundStmt())
	assert.True(t, result.Passed)
	assert.Empty(t, result.Reasons)
}

func TestFilter_KnockoutRules(t *testing.T) {
	f := NewFilter(newTestLogger())

	tests := []struct {
		name       string
		mutate     func(*contracts.RawStatement)
		wantReason string
	}{
		{
			name: "earnings quality suspect two years running",
			mutate: func(s *contracts.RawStatement) {
				s.Current.OperatingCashFlow = 50
				s.Previous.OperatingCashFlow = 40
			},
			wantReason: "2년 연속 영업현금흐름 < 순이익 (이익의 질 의심)",
		},
		{
			name: "cannot cover interest",
			mutate: func(s *contracts.RawStatement) {
				s.Current.OperatingIncome = 5
				s.Current.FinanceCost = 10
			},
			wantReason: "이자보상배율 0.5배 (이자도 못 갚는 좀비 기업)",
		},
		{
			name: "impaired capital",
			mutate: func(s *contracts.RawStatement) {
				s.Current.TotalEquity = -100
			},
			wantReason: "자본잠식 (자기자본 <= 0)",
		},
		{
			name: "two straight years of losses",
			mutate: func(s *contracts.RawStatement) {
				s.Current.NetIncome = -10
				s.Previous.NetIncome = -20
			},
			wantReason: "2년 연속 적자",
		},
		{
			name: "core business failing two years",
			mutate: func(s *contracts.RawStatement) {
				s.Current.OperatingIncome = -5
				s.Previous.OperatingIncome = -15
			},
			wantReason: "2년 연속 영업이익 마이너스 (본업 실패)",
		},
		{
			name: "no revenue at all",
			mutate: func(s *contracts.RawStatement) {
				s.Current.Revenue = 0
			},
			wantReason: "매출액 없음",
		},
		{
			name: "revenue collapsed",
			mutate: func(s *contracts.RawStatement) {
				s.Current.Revenue = 300
				s.Previous.Revenue = 1000
			},
			wantReason: "매출액 급감 (-70.0% - 사업 축소)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := soundStmt()
			tt.mutate(stmt)

			result := f.Check(stmt)
			assert.False(t, result.Passed)
			assert.Contains(t, result.Reasons, tt.wantReason)
		})
	}
}

func TestFilter_RevenueDropAtThresholdPasses(t *testing.T) {
	f := NewFilter(newTestLogger())

	// 정확히 -50%는 급감으로 보지 않는다 (초과 하락만 탈락)
	stmt := soundStmt()
	stmt.Current.Revenue = 500
	stmt.Previous.Revenue = 1000

	result := f.Check(stmt)
	assert.True(t, result.Passed)
}

func TestFilter_CollectsAllReasonsInOrder(t *testing.T) {
	f := NewFilter(newTestLogger())

	stmt := soundStmt()
	stmt.Current.OperatingIncome = -5
	stmt.Current.FinanceCost = 2
	stmt.Current.NetIncome = -10
	stmt.Previous.NetIncome = -12
	stmt.Previous.OperatingIncome = -8

	result := f.Check(stmt)
	assert.False(t, result.Passed)
	assert.Equal(t, []string{
		"이자보상배율 -2.5배 (이자도 못 갚는 좀비 기업)",
		"2년 연속 적자",
		"2년 연속 영업이익 마이너스 (본업 실패)",
	}, result.Reasons)
}
