package contracts

import "time"

// Universe is the set of tradable companies one screening run covers.
// ⭐ SSOT: 유니버스 구성 결과 (스크리너 입력)
type Universe struct {
	Date      time.Time         `json:"date"`
	Companies []*Company        `json:"companies"`          // 분석 대상 (상장 + 정적 필터 통과)
	Excluded  map[string]string `json:"excluded,omitempty"` // corp_code → 제외 사유
}

// Count returns the number of companies entering analysis
func (u *Universe) Count() int {
	return len(u.Companies)
}

// ExclusionFor returns the recorded exclusion reason for a corp code
func (u *Universe) ExclusionFor(corpCode string) (string, bool) {
	reason, ok := u.Excluded[corpCode]
	return reason, ok
}

// Contains checks whether a stock code made it into the universe
func (u *Universe) Contains(stockCode string) bool {
	for _, c := range u.Companies {
		if c.StockCode == stockCode {
			return true
		}
	}
	return false
}
