package contracts

import (
	"strings"
	"time"
)

// Signal is the closed trading-signal enum.
// ⭐ SSOT: 매매 신호 (엔진 로직은 반드시 이 enum으로만 분기)
// 화면 표시용 한글 문자열은 Korean()/RatingForScore()로만 변환한다.
type Signal string

const (
	SignalStrongBuy    Signal = "strong_buy"   // 강력매수
	SignalBuy          Signal = "buy"          // 매수
	SignalHold         Signal = "hold"         // 관망
	SignalCaution      Signal = "caution"      // 주의 (개별 지표 전용)
	SignalSell         Signal = "sell"         // 매도
	SignalStrongSell   Signal = "strong_sell"  // 강력매도
	SignalDisqualified Signal = "disqualified" // 투자부적격 (필터 탈락)
)

// IsValid checks if the signal is a known enum value
func (s Signal) IsValid() bool {
	switch s {
	case SignalStrongBuy, SignalBuy, SignalHold, SignalCaution,
		SignalSell, SignalStrongSell, SignalDisqualified:
		return true
	}
	return false
}

// Korean returns the display label for a signal
func (s Signal) Korean() string {
	switch s {
	case SignalStrongBuy:
		return "강력매수"
	case SignalBuy:
		return "매수"
	case SignalHold:
		return "관망"
	case SignalCaution:
		return "주의"
	case SignalSell:
		return "매도"
	case SignalStrongSell:
		return "강력매도"
	case SignalDisqualified:
		return "투자부적격"
	default:
		return string(s)
	}
}

// Points converts an indicator-level signal to its sub-score contribution.
// SSOT: 지표당 20점 만점 배점표
func (s Signal) Points() float64 {
	switch s {
	case SignalStrongBuy:
		return 20
	case SignalBuy:
		return 15
	case SignalHold:
		return 10
	case SignalCaution:
		return 5
	case SignalSell:
		return 2
	case SignalStrongSell:
		return 0
	default:
		return 10
	}
}

// SignalForScore maps a total score to the company-level signal.
// SSOT: 종합 신호 구간 (100점 핵심 척도 기준, 단조 증가)
func SignalForScore(score float64) Signal {
	switch {
	case score >= 80:
		return SignalStrongBuy
	case score >= 65:
		return SignalBuy
	case score >= 50:
		return SignalHold
	case score >= 35:
		return SignalSell
	default:
		return SignalStrongSell
	}
}

// Grade is a 49-step letter grade: S~F, each refined by +++/++/+/(none)/-/--/---
type Grade string

var (
	gradeLetters   = []string{"S", "A", "B", "C", "D", "E", "F"}
	gradeModifiers = []string{"+++", "++", "+", "", "-", "--", "---"}
)

// GradeForScore converts a score against its maximum into a 49-step grade.
// 비율 1.0 → S+++, 비율 0 → F---
func GradeForScore(score, maxScore float64) Grade {
	ratio := 0.0
	if maxScore > 0 {
		ratio = score / maxScore
	}

	idx := int((1 - ratio) * 49)
	if idx < 0 {
		idx = 0
	}
	if idx > 48 {
		idx = 48
	}

	return Grade(gradeLetters[idx/7] + gradeModifiers[idx%7])
}

// Letter returns the S~F letter without the refinement
func (g Grade) Letter() string {
	if g == "" {
		return ""
	}
	return string(g[0])
}

// Rating is the 10-band display classification of a total score.
// 등급 라벨과 추천 문구는 여기서만 생성한다 (UI 표시 전용).
type Rating struct {
	Label  string `json:"label"`  // 예: "A급 매수"
	Advice string `json:"advice"` // 추천 문구
}

// RatingForScore maps a total score (bonus included) to its display rating.
// SSOT: 10단계 세분화 신호 구간표
func RatingForScore(score float64) Rating {
	switch {
	case score >= 90:
		return Rating{"S급 강력매수", "최상위권 종목. 버핏이 사랑할 기업. 장기 보유 강력 추천."}
	case score >= 80:
		return Rating{"A급 강력매수", "모든 지표가 버핏 기준 충족. 장기 투자 적합."}
	case score >= 72:
		return Rating{"A급 매수", "대부분의 지표가 우수. 적극적 투자 검토 권장."}
	case score >= 65:
		return Rating{"B급 매수", "주요 지표 양호. 투자 검토 권장."}
	case score >= 58:
		return Rating{"B급 관망(매수우위)", "괜찮은 편. 추가 분석 후 투자 고려."}
	case score >= 50:
		return Rating{"C급 관망", "일부 지표 부족. 신중한 검토 필요."}
	case score >= 42:
		return Rating{"C급 관망(매도우위)", "부정적 지표 다수. 투자 주의."}
	case score >= 35:
		return Rating{"D급 매도", "여러 지표 부정적. 보유 시 손절 검토."}
	case score >= 25:
		return Rating{"D급 강력매도", "대부분 지표 미달. 투자 회피."}
	default:
		return Rating{"F급 회피", "심각한 재무 상태. 절대 투자 금지."}
	}
}

// RatingForFilterFail builds the disqualified rating with up to two reasons
func RatingForFilterFail(reasons []string) Rating {
	shown := reasons
	if len(shown) > 2 {
		shown = shown[:2]
	}
	return Rating{"투자부적격", "필터링 탈락: " + strings.Join(shown, ", ")}
}

// IndicatorCategory groups indicators for display
type IndicatorCategory string

const (
	CategoryProfitability IndicatorCategory = "profitability" // 수익성
	CategoryCash          IndicatorCategory = "cash"          // 현금창출
	CategoryGrowth        IndicatorCategory = "growth"        // 성장성
	CategorySafety        IndicatorCategory = "safety"        // 안정성
	CategoryMoat          IndicatorCategory = "moat"          // 해자
)

// Korean returns the display label for a category
func (c IndicatorCategory) Korean() string {
	switch c {
	case CategoryProfitability:
		return "수익성"
	case CategoryCash:
		return "현금창출"
	case CategoryGrowth:
		return "성장성"
	case CategorySafety:
		return "안정성"
	case CategoryMoat:
		return "해자"
	default:
		return string(c)
	}
}

// Indicator is a single scored metric within a company analysis
type Indicator struct {
	Name         string            `json:"name"`             // 예: "이자보상배율"
	Category     IndicatorCategory `json:"category"`
	Value        float64           `json:"value"`            // 지표 값 (999 = 무한대 센티널)
	Score        float64           `json:"score"`            // 획득 점수
	MaxScore     float64           `json:"max_score"`        // 만점
	Grade        Grade             `json:"grade"`
	Signal       Signal            `json:"signal,omitempty"` // 핵심 5대 지표만 보유
	Description  string            `json:"description"`
	GoodCriteria string            `json:"good_criteria"`
}

// CompanyAnalysis is the full scoring result for one (company, year, basis).
// ⭐ SSOT: 분석 단계 → 스크리너/API 결과 전달
// 재분석 시 통째로 교체되며 부분 수정되지 않는다.
type CompanyAnalysis struct {
	CorpCode  string `json:"corp_code"`
	CorpName  string `json:"corp_name"`
	StockCode string `json:"stock_code"`
	Sector    string `json:"sector,omitempty"`
	Year      int    `json:"year"`
	FsDiv     FsDiv  `json:"fs_div"`

	Indicators []Indicator `json:"indicators"`

	// 점수: 핵심 5대 지표 100점 + 보완 4개 지표 45점
	BaseScore  float64 `json:"base_score"`
	BonusScore float64 `json:"bonus_score"`
	TotalScore float64 `json:"total_score"` // 표시 점수 (필터 탈락 시 0)
	RawScore   float64 `json:"raw_score"`   // 필터 무시 원점수 (진단용, 항상 보존)

	Signal Signal `json:"signal"`
	Grade  Grade  `json:"grade"`
	Rating Rating `json:"rating"`

	FilterPassed  bool     `json:"filter_passed"`
	FilterReasons []string `json:"filter_reasons,omitempty"`

	Recommendation string    `json:"recommendation"`
	DataSource     string    `json:"data_source,omitempty"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

// Disqualified reports whether the company failed the hard filters
func (a *CompanyAnalysis) Disqualified() bool {
	return !a.FilterPassed
}

// CoreIndicators returns the five base indicators (the 100-point scale)
func (a *CompanyAnalysis) CoreIndicators() []Indicator {
	if len(a.Indicators) < 5 {
		return a.Indicators
	}
	return a.Indicators[:5]
}

// BonusIndicators returns the supplementary indicators (the 45-point scale)
func (a *CompanyAnalysis) BonusIndicators() []Indicator {
	if len(a.Indicators) <= 5 {
		return nil
	}
	return a.Indicators[5:]
}
