package contracts

import "time"

// RankedCompany is one passing entry of a screener run
type RankedCompany struct {
	Rank       int     `json:"rank"` // 1부터 연속
	CorpCode   string  `json:"corp_code"`
	CorpName   string  `json:"corp_name"`
	StockCode  string  `json:"stock_code"`
	Sector     string  `json:"sector,omitempty"`
	BaseScore  float64 `json:"base_score"`
	BonusScore float64 `json:"bonus_score"`
	TotalScore float64 `json:"total_score"`
	Signal     Signal  `json:"signal"`
	Grade      Grade   `json:"grade"`
	Rating     Rating  `json:"rating"`
	DataSource string  `json:"data_source,omitempty"`
}

// FilteredCompany records a company excluded by the hard filters
type FilteredCompany struct {
	CorpCode string   `json:"corp_code"`
	CorpName string   `json:"corp_name"`
	RawScore float64  `json:"raw_score"` // 필터 무시 원점수
	Reasons  []string `json:"reasons"`
}

// ScreenerResult is a full screening run over the universe.
// ⭐ SSOT: 스크리너 실행 결과 (Redis 핫 캐시 + Postgres 보관 단위)
// (year, fs_div)당 하나이며, 더 작은 limit으로 만든 캐시는
// 더 큰 limit 요청을 만족시킬 수 없다.
type ScreenerResult struct {
	Year  int   `json:"year"`
	FsDiv FsDiv `json:"fs_div"`
	Limit int   `json:"limit"`

	// 집계
	Analyzed int `json:"analyzed"` // 분석 시도 기업 수
	Passed   int `json:"passed"`   // 필터 통과
	Filtered int `json:"filtered"` // 필터 탈락
	NoData   int `json:"no_data"`  // 재무 데이터 없음

	Ranked      []RankedCompany   `json:"ranked"`
	FilteredOut []FilteredCompany `json:"filtered_out,omitempty"` // 표시용 상위 20개
	NoDataCorps []string          `json:"no_data_corps,omitempty"` // 표시용 상위 30개

	FromCache   bool      `json:"from_cache"`
	ElapsedMS   int64     `json:"elapsed_ms"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Top returns the first n ranked entries
func (r *ScreenerResult) Top(n int) []RankedCompany {
	if n <= 0 || n >= len(r.Ranked) {
		return r.Ranked
	}
	return r.Ranked[:n]
}

// Satisfies reports whether this cached result can answer a request for limit n
func (r *ScreenerResult) Satisfies(n int) bool {
	if r.Limit <= 0 {
		return true // 전체 스캔 결과
	}
	return n > 0 && n <= r.Limit
}
