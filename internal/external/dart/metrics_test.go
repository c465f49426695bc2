package dart

import (
	"testing"
)

func incomeRow(accountID, accountName, current, previous string) AccountRow {
	return AccountRow{
		StatementDiv:   "CIS",
		AccountID:      accountID,
		AccountName:    accountName,
		CurrentAmount:  current,
		PreviousAmount: previous,
	}
}

func balanceRow(accountID, accountName, current string) AccountRow {
	return AccountRow{
		StatementDiv:  "BS",
		AccountID:     accountID,
		AccountName:   accountName,
		CurrentAmount: current,
	}
}

func cashFlowRow(accountID, accountName, current string) AccountRow {
	return AccountRow{
		StatementDiv:  "CF",
		AccountID:     accountID,
		AccountName:   accountName,
		CurrentAmount: current,
	}
}

func TestExtractMetrics(t *testing.T) {
	rows := []AccountRow{
		incomeRow("ifrs-full_Revenue", "수익(매출액)", "300,000", "280,000"),
		incomeRow("dart_OperatingIncomeLoss", "영업이익", "45,000", "35,000"),
		incomeRow("", "금융비용", "1,000", "900"),
		incomeRow("ifrs-full_ProfitLoss", "당기순이익", "30,000", "25,000"),
		// 지배기업 지분 순이익은 총액보다 작아서 무시되어야 한다
		incomeRow("ifrs-full_ProfitLossAttributableToOwnersOfParent", "지배기업 소유주지분 순이익", "28,000", "23,000"),
		// 포괄손익은 순이익으로 집계하지 않는다
		incomeRow("ifrs-full_ComprehensiveIncome", "총포괄손익", "99,999", "99,999"),

		balanceRow("ifrs-full_Assets", "자산총계", "500,000"),
		balanceRow("ifrs-full_CurrentAssets", "유동자산", "200,000"),
		balanceRow("ifrs-full_CashAndCashEquivalents", "현금및현금성자산", "50,000"),
		balanceRow("ifrs-full_Liabilities", "부채총계", "100,000"),
		balanceRow("ifrs-full_Equity", "자본총계", "250,000"),
		balanceRow("ifrs-full_EquityAttributableToOwnersOfParent", "지배기업의 소유주에게 귀속되는 자본", "240,000"),
		balanceRow("ifrs-full_RetainedEarnings", "이익잉여금", "200,000"),
		balanceRow("ifrs_IssuedCapital", "자본금", "5,000"),
		// 합계 표기 행은 건너뛴다
		balanceRow("", "자본과부채총계", "500,000"),

		cashFlowRow("ifrs-full_CashFlowsFromUsedInOperatingActivities", "영업활동현금흐름", "40,000"),
		cashFlowRow("ifrs-full_CashFlowsFromUsedInInvestingActivities", "투자활동현금흐름", "-20,000"),
		cashFlowRow("ifrs-full_CashFlowsFromUsedInFinancingActivities", "재무활동현금흐름", "-5,000"),
	}

	m := ExtractMetrics(rows, TermCurrent)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"revenue", m.Revenue, 300000},
		{"operating income", m.OperatingIncome, 45000},
		{"finance cost", m.FinanceCost, 1000},
		{"net income keeps statement total", m.NetIncome, 30000},
		{"total assets", m.TotalAssets, 500000},
		{"current assets", m.CurrentAssets, 200000},
		{"cash", m.CashAndEquivalents, 50000},
		{"total liabilities", m.TotalLiabilities, 100000},
		{"equity keeps statement total", m.TotalEquity, 250000},
		{"retained earnings", m.RetainedEarnings, 200000},
		{"capital stock", m.CapitalStock, 5000},
		{"operating cash flow", m.OperatingCashFlow, 40000},
		{"investing cash flow", m.InvestingCashFlow, -20000},
		{"financing cash flow", m.FinancingCashFlow, -5000},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	prev := ExtractMetrics(rows, TermPrevious)
	if prev.Revenue != 280000 {
		t.Errorf("previous revenue = %v, want 280000", prev.Revenue)
	}
	if prev.NetIncome != 25000 {
		t.Errorf("previous net income = %v, want 25000", prev.NetIncome)
	}
}

func TestExtractMetricsKeepsLossSign(t *testing.T) {
	rows := []AccountRow{
		incomeRow("ifrs-full_ProfitLoss", "당기순이익(손실)", "-12,000", "-8,000"),
		incomeRow("dart_OperatingIncomeLoss", "영업이익(손실)", "-5,000", "-3,000"),
		balanceRow("ifrs-full_Equity", "자본총계", "-1,500"),
		cashFlowRow("ifrs-full_CashFlowsFromUsedInOperatingActivities", "영업활동현금흐름", "-7,000"),
	}

	m := ExtractMetrics(rows, TermCurrent)

	if m.NetIncome != -12000 {
		t.Errorf("net income = %v, want -12000", m.NetIncome)
	}
	if m.OperatingIncome != -5000 {
		t.Errorf("operating income = %v, want -5000", m.OperatingIncome)
	}
	if m.TotalEquity != -1500 {
		t.Errorf("total equity = %v, want -1500", m.TotalEquity)
	}
	if m.OperatingCashFlow != -7000 {
		t.Errorf("operating cash flow = %v, want -7000", m.OperatingCashFlow)
	}
}

func TestExtractMetricsWithFallback(t *testing.T) {
	// 반기보고서에는 당기 순이익/자본총계가 비어 있는 경우가 있다
	rows := []AccountRow{
		{
			StatementDiv:   "CIS",
			AccountID:      "ifrs-full_ProfitLoss",
			AccountName:    "당기순이익",
			CurrentAmount:  "",
			PreviousAmount: "22,000",
		},
		{
			StatementDiv:   "BS",
			AccountID:      "ifrs-full_Equity",
			AccountName:    "자본총계",
			CurrentAmount:  "-",
			PreviousAmount: "180,000",
		},
		{
			StatementDiv:  "CIS",
			AccountID:     "dart_OperatingIncomeLoss",
			AccountName:   "영업이익",
			CurrentAmount: "9,000",
		},
	}

	m := ExtractMetricsWithFallback(rows)

	if m.NetIncome != 22000 {
		t.Errorf("net income fallback = %v, want 22000", m.NetIncome)
	}
	if m.TotalEquity != 180000 {
		t.Errorf("total equity fallback = %v, want 180000", m.TotalEquity)
	}
	if m.OperatingIncome != 9000 {
		t.Errorf("operating income = %v, want 9000", m.OperatingIncome)
	}
}

func TestPickLarger(t *testing.T) {
	tests := []struct {
		current   float64
		candidate float64
		want      float64
	}{
		{0, 100, 100},
		{100, 50, 100},
		{50, 100, 100},
		{0, -100, -100},
		{-100, -50, -100},
		{100, 0, 100},
	}

	for _, tt := range tests {
		if got := pickLarger(tt.current, tt.candidate); got != tt.want {
			t.Errorf("pickLarger(%v, %v) = %v, want %v", tt.current, tt.candidate, got, tt.want)
		}
	}
}
