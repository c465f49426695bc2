package contracts

// TrendSignal is the aggregate direction over the trend window
type TrendSignal string

const (
	TrendImproving TrendSignal = "improving"
	TrendDeclining TrendSignal = "declining"
	TrendStable    TrendSignal = "stable"
)

// TrendYear holds one year of the multi-year trend window
type TrendYear struct {
	Year int `json:"year"`

	OperatingIncome   float64 `json:"operating_income"`
	NetIncome         float64 `json:"net_income"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	FinanceCost       float64 `json:"finance_cost"`
	TotalEquity       float64 `json:"total_equity"`
	TotalAssets       float64 `json:"total_assets"`

	// 전년 대비 (첫 해는 0)
	OperatingGrowth float64 `json:"op_growth"`
	NetIncomeGrowth float64 `json:"ni_growth"`

	InterestCoverage float64 `json:"interest_coverage"` // 이자비용 없으면 999
	CashQuality      bool    `json:"cash_quality"`      // OCF > NI
}

// TrendReport is the 3-year direction analysis for one company.
// ⭐ SSOT: 추세 분석 결과 (최신 연도 vs 직전 연도 비교)
type TrendReport struct {
	CorpCode string `json:"corp_code"`
	CorpName string `json:"corp_name"`
	FsDiv    FsDiv  `json:"fs_div"`

	Years []TrendYear `json:"trends"` // 과거 → 최신 순

	Improving []string    `json:"improving"` // 개선된 항목
	Declining []string    `json:"declining"` // 악화된 항목
	Signal    TrendSignal `json:"trend_signal"`
}

// Latest returns the most recent year of the window
func (t *TrendReport) Latest() *TrendYear {
	if len(t.Years) == 0 {
		return nil
	}
	return &t.Years[len(t.Years)-1]
}

// IndicatorWinner marks which side of a comparison is stronger per indicator
type IndicatorWinner struct {
	Name           string  `json:"name"`
	ValueA         float64 `json:"value_a"`
	ValueB         float64 `json:"value_b"`
	Winner         string  `json:"winner"` // corp_code 또는 "tie"
	HigherIsBetter bool    `json:"higher_is_better"`
}

// Comparison is a structured two-company diff for the same (year, basis).
// 종합 승자는 총점 비교, 동점이면 "tie".
type Comparison struct {
	Year  int   `json:"year"`
	FsDiv FsDiv `json:"fs_div"`

	CompanyA *CompanyAnalysis `json:"company_a"`
	CompanyB *CompanyAnalysis `json:"company_b"`

	Indicators []IndicatorWinner `json:"indicators"`
	Winner     string            `json:"winner"` // corp_code 또는 "tie"
	ScoreDiff  float64           `json:"score_diff"`
}
