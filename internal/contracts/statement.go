package contracts

import "time"

// FsDiv selects the financial statement basis reported to DART.
// ⭐ SSOT: 재무제표 구분 (CFS 연결 / OFS 개별)
type FsDiv string

const (
	// FsDivConsolidated 연결재무제표
	FsDivConsolidated FsDiv = "CFS"

	// FsDivSeparate 개별(별도)재무제표
	FsDivSeparate FsDiv = "OFS"
)

// IsValid checks if the basis is one of the two DART values
func (f FsDiv) IsValid() bool {
	return f == FsDivConsolidated || f == FsDivSeparate
}

// Korean returns the display name used in recommendations and data-source notes
func (f FsDiv) Korean() string {
	switch f {
	case FsDivConsolidated:
		return "연결"
	case FsDivSeparate:
		return "개별"
	default:
		return string(f)
	}
}

// ReportCode identifies the DART periodic report type
type ReportCode string

const (
	// ReportAnnual 사업보고서
	ReportAnnual ReportCode = "11011"

	// ReportHalfYear 반기보고서 (사업보고서 미제출 시 fallback)
	ReportHalfYear ReportCode = "11012"
)

// FinancialMetrics holds the core line items extracted from one fiscal term.
// ⭐ SSOT: 재무제표에서 추출한 핵심 수치 (단위: 원)
type FinancialMetrics struct {
	// 손익계산서 (IS/CIS)
	Revenue         float64 `json:"revenue"`          // 매출액
	CostOfSales     float64 `json:"cost_of_sales"`    // 매출원가
	GrossProfit     float64 `json:"gross_profit"`     // 매출총이익
	OperatingIncome float64 `json:"operating_income"` // 영업이익
	FinanceCost     float64 `json:"finance_cost"`     // 금융비용 (이자비용)
	NetIncome       float64 `json:"net_income"`       // 당기순이익

	// 재무상태표 (BS)
	TotalAssets        float64 `json:"total_assets"`         // 자산총계
	CurrentAssets      float64 `json:"current_assets"`       // 유동자산
	CashAndEquivalents float64 `json:"cash_and_equivalents"` // 현금및현금성자산
	TotalLiabilities   float64 `json:"total_liabilities"`    // 부채총계
	CurrentLiabilities float64 `json:"current_liabilities"`  // 유동부채
	TotalEquity        float64 `json:"total_equity"`         // 자본총계
	CapitalStock       float64 `json:"capital_stock"`        // 자본금
	RetainedEarnings   float64 `json:"retained_earnings"`    // 이익잉여금

	// 현금흐름표 (CF)
	OperatingCashFlow float64 `json:"operating_cash_flow"` // 영업활동 현금흐름
	InvestingCashFlow float64 `json:"investing_cash_flow"` // 투자활동 현금흐름
	FinancingCashFlow float64 `json:"financing_cash_flow"` // 재무활동 현금흐름
}

// OperatingMargin 영업이익률 = 영업이익 / 매출액 × 100
func (m *FinancialMetrics) OperatingMargin() float64 {
	if m.Revenue <= 0 {
		return 0
	}
	return m.OperatingIncome / m.Revenue * 100
}

// ROE 자기자본이익률 = 순이익 / 자본총계 × 100
func (m *FinancialMetrics) ROE() float64 {
	if m.TotalEquity <= 0 {
		return 0
	}
	return m.NetIncome / m.TotalEquity * 100
}

// ROIC 투하자본이익률 (근사치).
// 세후영업이익은 법인세 25% 가정, 투하자본은 자본총계 + 부채의 절반 - 현금성자산.
func (m *FinancialMetrics) ROIC() float64 {
	nopat := m.OperatingIncome * 0.75
	investedCapital := m.TotalEquity + m.TotalLiabilities*0.5 - m.CashAndEquivalents
	if investedCapital <= 0 {
		return 0
	}
	return nopat / investedCapital * 100
}

// DebtRatio 부채비율 = 부채총계 / 자본총계 × 100 (자본잠식 시 999)
func (m *FinancialMetrics) DebtRatio() float64 {
	if m.TotalEquity <= 0 {
		return 999
	}
	return m.TotalLiabilities / m.TotalEquity * 100
}

// RetentionRatio 유보율 = 이익잉여금 / 자본금 × 100
func (m *FinancialMetrics) RetentionRatio() float64 {
	if m.CapitalStock <= 0 {
		return 0
	}
	return m.RetainedEarnings / m.CapitalStock * 100
}

// IsEmpty reports whether no meaningful line item was extracted for the term
func (m *FinancialMetrics) IsEmpty() bool {
	return m.Revenue == 0 && m.OperatingIncome == 0 && m.NetIncome == 0 &&
		m.TotalAssets == 0 && m.TotalEquity == 0 && m.OperatingCashFlow == 0
}

// RawStatement is the immutable per-company snapshot the analyzers run on.
// ⭐ SSOT: 수집 단계 → 분석 단계 원본 재무 데이터 전달
// 한 번 수집되면 변경되지 않으며, 명시적 refresh 시에만 통째로 교체된다.
type RawStatement struct {
	CorpCode  string `json:"corp_code"`  // DART 고유번호 (8자리)
	CorpName  string `json:"corp_name"`  // 기업명
	StockCode string `json:"stock_code"` // 종목코드 (6자리)
	Year      int    `json:"year"`       // 요청 사업연도 (저장 키)
	FsDiv     FsDiv  `json:"fs_div"`     // 요청 재무제표 구분 (실제 출처는 DataSource)

	// 3개년 재무 지표 (당기 / 전기 / 전전기)
	Current        FinancialMetrics `json:"current"`
	Previous       FinancialMetrics `json:"previous"`
	BeforePrevious FinancialMetrics `json:"before_previous"`

	// 희석 가능 물량 (전환사채/신주인수권부사채 공시 집계)
	TotalShares       int64 `json:"total_shares"`       // 총 발행 주식수 (추정)
	ConvertibleShares int64 `json:"convertible_shares"` // 전환 가능 주식수

	// 임원/주요주주 거래 (최근 6개월)
	InsiderBuyCount  int  `json:"insider_buy_count"`  // 순매수 임원 수
	InsiderSellCount int  `json:"insider_sell_count"` // 매도 건수
	CEOBought        bool `json:"ceo_bought"`         // 대표이사급 매수 여부

	// 데이터 출처 (fallback 사용 시 주석 포함, 예: "OFS/2022 (CFS 없음, 1년 전)")
	DataSource  string `json:"data_source"`
	SourceYear  int    `json:"source_year,omitempty"`   // 실제 공시 연도
	SourceFsDiv FsDiv  `json:"source_fs_div,omitempty"` // 실제 공시 구분

	FetchedAt time.Time `json:"fetched_at"`
}

// DilutionRatio 희석 가능 물량 비율 = 전환 가능 주식수 / 총 발행 주식수 × 100
func (r *RawStatement) DilutionRatio() float64 {
	if r.TotalShares <= 0 {
		return 0
	}
	return float64(r.ConvertibleShares) / float64(r.TotalShares) * 100
}

// HasPreviousTerm reports whether the prior-year term carries usable data
func (r *RawStatement) HasPreviousTerm() bool {
	return !r.Previous.IsEmpty()
}
