package dart

import (
	"math"
	"strings"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// nameCleaner normalizes account names before matching: DART filings
// vary in spacing and parenthesis usage for the same account.
var nameCleaner = strings.NewReplacer(" ", "", "(", "", ")", "")

// ExtractMetrics maps raw statement rows to FinancialMetrics for one term.
// Several filings carry both a subtotal and a total row for the same
// concept (지배기업지분 vs 자본총계); the larger-magnitude amount wins so
// the statement total is kept while loss signs survive.
// ⭐ SSOT: 계정과목 매핑 규칙은 이 함수에서만
func ExtractMetrics(rows []AccountRow, term Term) contracts.FinancialMetrics {
	var m contracts.FinancialMetrics

	for _, row := range rows {
		amount := ParseAmount(row.AmountFor(term))
		id := strings.ToLower(row.AccountID)
		name := row.AccountName
		nameClean := nameCleaner.Replace(name)

		switch row.StatementDiv {
		case "IS", "CIS":
			applyIncomeRow(&m, id, name, nameClean, amount)
		case "BS":
			applyBalanceRow(&m, id, name, nameClean, amount)
		case "CF":
			applyCashFlowRow(&m, id, name, amount)
		}
	}

	return m
}

// ExtractMetricsWithFallback extracts current-term metrics, backfilling
// key fields from prior terms when the current term reports zero.
// Half-year filings often leave annual-only accounts blank.
func ExtractMetricsWithFallback(rows []AccountRow) contracts.FinancialMetrics {
	current := ExtractMetrics(rows, TermCurrent)
	previous := ExtractMetrics(rows, TermPrevious)
	beforePrev := ExtractMetrics(rows, TermBeforePrevious)

	if current.NetIncome == 0 && previous.NetIncome != 0 {
		current.NetIncome = previous.NetIncome
	} else if current.NetIncome == 0 && beforePrev.NetIncome != 0 {
		current.NetIncome = beforePrev.NetIncome
	}

	if current.TotalEquity == 0 && previous.TotalEquity != 0 {
		current.TotalEquity = previous.TotalEquity
	} else if current.TotalEquity == 0 && beforePrev.TotalEquity != 0 {
		current.TotalEquity = beforePrev.TotalEquity
	}

	if current.TotalAssets == 0 && previous.TotalAssets != 0 {
		current.TotalAssets = previous.TotalAssets
	}

	if current.TotalLiabilities == 0 && previous.TotalLiabilities != 0 {
		current.TotalLiabilities = previous.TotalLiabilities
	}

	if current.OperatingIncome == 0 && previous.OperatingIncome != 0 {
		current.OperatingIncome = previous.OperatingIncome
	}

	return current
}

// applyIncomeRow classifies one income-statement row. Branch order matters:
// the first match wins for a row, so specific accounts must come before
// looser name matches.
func applyIncomeRow(m *contracts.FinancialMetrics, id, name, nameClean string, amount float64) {
	switch {
	case strings.Contains(id, "revenue") || strings.Contains(name, "매출액") || name == "수익(매출액)" || name == "매출":
		m.Revenue = pickLarger(m.Revenue, amount)

	case strings.Contains(id, "costofsales") || strings.Contains(name, "매출원가"):
		m.CostOfSales = pickLarger(m.CostOfSales, amount)

	case strings.Contains(id, "grossprofit") || strings.Contains(name, "매출총이익"):
		m.GrossProfit = pickLarger(m.GrossProfit, amount)

	case strings.Contains(id, "operatingincome") || strings.Contains(name, "영업이익") || strings.Contains(name, "영업손익"):
		m.OperatingIncome = pickLarger(m.OperatingIncome, amount)

	case strings.Contains(name, "금융비용") || strings.Contains(name, "이자비용") || strings.Contains(id, "financecost"):
		m.FinanceCost = pickLarger(m.FinanceCost, amount)

	case isNetIncomeRow(id, name, nameClean):
		m.NetIncome = pickLarger(m.NetIncome, amount)
	}
}

// isNetIncomeRow matches the many spellings of 당기순이익 while keeping
// comprehensive-income lines out.
func isNetIncomeRow(id, name, nameClean string) bool {
	if strings.Contains(id, "profitloss") && !strings.Contains(id, "comprehensive") {
		return true
	}
	if strings.Contains(id, "netincome") || strings.Contains(id, "netprofit") {
		return true
	}
	for _, key := range []string{"당기순이익", "당기순손익", "분기순이익", "반기순이익", "연결당기순이익", "연결순이익"} {
		if strings.Contains(nameClean, key) {
			return true
		}
	}
	if (strings.Contains(name, "순이익") || strings.Contains(name, "순손익")) && !strings.Contains(name, "포괄") {
		return true
	}
	if strings.Contains(name, "지배기업") && (strings.Contains(name, "이익") || strings.Contains(name, "손익")) && !strings.Contains(name, "포괄") {
		return true
	}
	return false
}

// applyBalanceRow classifies one balance-sheet row.
func applyBalanceRow(m *contracts.FinancialMetrics, id, name, nameClean string, amount float64) {
	// 합계 표기 행은 자산/부채 어느 쪽도 아니므로 건너뛴다
	if strings.Contains(name, "자본과부채") || strings.Contains(name, "부채와자본") {
		return
	}

	switch {
	case strings.Contains(id, "assets") && !strings.Contains(id, "current") && !strings.Contains(id, "net"),
		name == "자산총계" || name == "자산" || name == "자산 계",
		strings.Contains(nameClean, "자산총계"):
		m.TotalAssets = pickLarger(m.TotalAssets, amount)

	case strings.Contains(id, "currentassets") || strings.Contains(name, "유동자산"):
		m.CurrentAssets = pickLarger(m.CurrentAssets, amount)

	case strings.Contains(id, "cash") && strings.Contains(id, "equivalent"),
		strings.Contains(nameClean, "현금및현금성자산") || strings.Contains(nameClean, "현금및현금등가물"),
		nameClean == "현금" || nameClean == "현금및예치금":
		m.CashAndEquivalents = pickLarger(m.CashAndEquivalents, amount)

	case strings.Contains(id, "liabilities") && !strings.Contains(id, "current") && !strings.Contains(id, "asset"),
		name == "부채총계" || name == "부채" || name == "부채 계",
		nameClean == "부채총계":
		m.TotalLiabilities = pickLarger(m.TotalLiabilities, amount)

	case strings.Contains(id, "currentliabilities") || strings.Contains(name, "유동부채"):
		m.CurrentLiabilities = pickLarger(m.CurrentLiabilities, amount)

	case strings.Contains(id, "equity") && !strings.Contains(id, "retained") && !strings.Contains(id, "minority"),
		name == "자본총계" || name == "자본 총계",
		nameClean == "자본총계",
		name == "자본" || name == "자본계" || name == "자본 계",
		strings.Contains(name, "지배기업") && (strings.Contains(name, "지분") || strings.Contains(name, "자본")),
		strings.Contains(name, "지배주주지분") || strings.Contains(name, "지배기업소유주지분"):
		m.TotalEquity = pickLarger(m.TotalEquity, amount)

	case strings.Contains(id, "retainedearnings") || strings.Contains(name, "이익잉여금"):
		m.RetainedEarnings = pickLarger(m.RetainedEarnings, amount)

	case strings.Contains(id, "issuedcapital") || strings.Contains(id, "sharecapital"),
		nameClean == "자본금" || nameClean == "보통주자본금" || nameClean == "납입자본",
		strings.Contains(name, "자본금") && !strings.Contains(name, "잉여금"):
		m.CapitalStock = pickLarger(m.CapitalStock, amount)
	}
}

// applyCashFlowRow classifies one cash-flow row. Cash-flow statements
// carry one line per activity, so plain assignment is enough.
func applyCashFlowRow(m *contracts.FinancialMetrics, id, name string, amount float64) {
	switch {
	case strings.Contains(id, "operating") || strings.Contains(name, "영업활동"):
		m.OperatingCashFlow = amount
	case strings.Contains(id, "investing") || strings.Contains(name, "투자활동"):
		m.InvestingCashFlow = amount
	case strings.Contains(id, "financing") || strings.Contains(name, "재무활동"):
		m.FinancingCashFlow = amount
	}
}

// pickLarger keeps the amount with the larger magnitude. Statement totals
// beat partial lines and loss signs are preserved.
func pickLarger(current, candidate float64) float64 {
	if math.Abs(candidate) > math.Abs(current) {
		return candidate
	}
	return current
}
