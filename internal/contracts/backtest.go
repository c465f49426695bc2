package contracts

import "time"

// BacktestConfig selects the screener snapshot and holding period to simulate
type BacktestConfig struct {
	Year         int   `json:"year"`          // 스크리닝 기준 사업연도
	FsDiv        FsDiv `json:"fs_div"`
	TopN         int   `json:"top_n"`         // 상위 N개 종목 매수
	HoldingYears int   `json:"holding_years"` // 보유 기간 (년)
}

// BacktestPosition is the simulated outcome for one stock
type BacktestPosition struct {
	Rank       int     `json:"rank"`
	CorpName   string  `json:"corp_name"`
	StockCode  string  `json:"stock_code"`
	TotalScore float64 `json:"total_score"`
	Signal     Signal  `json:"signal"`

	BuyDate    string  `json:"buy_date,omitempty"`  // 실제 체결 기준일 (YYYY-MM-DD)
	BuyPrice   float64 `json:"buy_price,omitempty"`
	SellDate   string  `json:"sell_date,omitempty"`
	SellPrice  float64 `json:"sell_price,omitempty"`
	ReturnRate float64 `json:"return_rate"` // % (소수 둘째 자리 반올림)

	Error string `json:"error,omitempty"` // 가격 데이터 없음 등
}

// Valid reports whether the position produced a usable return
func (p *BacktestPosition) Valid() bool {
	return p.Error == ""
}

// Win reports whether the position closed with a positive return
func (p *BacktestPosition) Win() bool {
	return p.Valid() && p.ReturnRate > 0
}

// BacktestStats summarizes a backtest run.
// valid_stocks에서 에러 종목은 제외되며, 유효 종목이 없으면 win_rate는 0이다.
type BacktestStats struct {
	TotalStocks     int     `json:"total_stocks"`
	ValidStocks     int     `json:"valid_stocks"`
	AvgReturn       float64 `json:"avg_return"`       // 유효 종목 평균 수익률 %
	WinCount        int     `json:"win_count"`
	WinRate         float64 `json:"win_rate"`         // %
	BenchmarkReturn float64 `json:"benchmark_return"` // KOSPI 동일 기간 수익률 %
	Alpha           float64 `json:"alpha"`            // avg_return - benchmark_return
}

// BacktestRun is a complete strategy validation.
// ⭐ SSOT: 백테스트 실행 결과
// 매수일은 (기준연도+1)년 4월 1일 (사업보고서 제출 마감 직후),
// 매도일은 매수일 + 보유기간 (미래면 오늘까지로 절단).
type BacktestRun struct {
	Config BacktestConfig `json:"config"`

	BuyDate  time.Time `json:"buy_date"`
	SellDate time.Time `json:"sell_date"`

	Positions []BacktestPosition `json:"results"`
	Stats     BacktestStats      `json:"statistics"`

	RanAt time.Time `json:"ran_at"`
}
