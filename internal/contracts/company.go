package contracts

import "time"

// Company is one listed corporation of the screening universe.
// ⭐ SSOT: DART corpCode 레지스트리 + 상장 필터 결과
type Company struct {
	CorpCode  string    `json:"corp_code"`  // DART 고유번호 (8자리)
	CorpName  string    `json:"corp_name"`
	StockCode string    `json:"stock_code"` // 6자리, 비상장이면 빈 값
	Sector    string    `json:"sector,omitempty"`
	Market    string    `json:"market,omitempty"` // KOSPI / KOSDAQ
	UpdatedAt time.Time `json:"updated_at"`
}

// Listed reports whether the company has a tradable stock code
func (c *Company) Listed() bool {
	return len(c.StockCode) == 6
}
