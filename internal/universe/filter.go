package universe

import (
	"fmt"
	"strings"
)

// 분석 가치가 없는 종목을 이름/종목코드만으로 걸러내는 정적 필터.
// ⭐ SSOT: 유니버스 편입 판정은 여기서만

var spacKeywords = []string{
	"스팩", "SPAC", "제1호", "제2호", "제3호", "제4호", "제5호",
	"제6호", "제7호", "제8호", "제9호", "호스팩",
}

var spvKeywords = []string{"투자회사", "리츠", "선박투자", "부동산투자", "인프라"}

var riskKeywords = []string{"정리매매", "관리종목"}

// ExclusionReason returns why a company cannot enter the universe, or
// "" when it is tradable. 사유 문자열은 진단 화면에 그대로 노출된다.
func ExclusionReason(corpName, stockCode string) string {
	// 1. 스팩
	for _, kw := range spacKeywords {
		if strings.Contains(corpName, kw) {
			return fmt.Sprintf("스팩(%s)", kw)
		}
	}

	// 2. 우선주 (종목코드 끝자리가 0이 아닌 것)
	if len(stockCode) == 6 && stockCode[5] != '0' {
		return "우선주"
	}

	// 3. 비상장 (종목코드 없음)
	if stockCode == "" || stockCode == "N/A" || len(stockCode) != 6 {
		return "비상장"
	}

	// 4. 특수목적법인
	for _, kw := range spvKeywords {
		if strings.Contains(corpName, kw) {
			return fmt.Sprintf("특수목적법인(%s)", kw)
		}
	}

	// 5. 정리매매/관리종목 표식
	for _, kw := range riskKeywords {
		if strings.Contains(corpName, kw) {
			return fmt.Sprintf("리스크(%s)", kw)
		}
	}

	return ""
}

// Tradable reports whether the company passes every static filter
func Tradable(corpName, stockCode string) bool {
	return ExclusionReason(corpName, stockCode) == ""
}

// MarketCapBillion 시가총액 계산 (억원)
func MarketCapBillion(price float64, shares int64) float64 {
	if price <= 0 || shares <= 0 {
		return 0
	}
	return price * float64(shares) / 100_000_000
}

// IsMicroCap reports whether the cap sits under the cutoff (억원).
// 재무제표 왜곡이 심한 초소형주 구분용.
func IsMicroCap(capBillion, threshold float64) bool {
	return capBillion > 0 && capBillion < threshold
}
