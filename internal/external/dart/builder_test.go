package dart

import (
	"testing"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
)

func TestDataSourceNote(t *testing.T) {
	tests := []struct {
		name     string
		wantFs   contracts.FsDiv
		gotFs    contracts.FsDiv
		wantYear int
		gotYear  int
		report   contracts.ReportCode
		want     string
	}{
		{
			name:   "exact hit",
			wantFs: contracts.FsDivConsolidated, gotFs: contracts.FsDivConsolidated,
			wantYear: 2023, gotYear: 2023,
			report: contracts.ReportAnnual,
			want:   "CFS/2023",
		},
		{
			name:   "separate statements fallback",
			wantFs: contracts.FsDivConsolidated, gotFs: contracts.FsDivSeparate,
			wantYear: 2023, gotYear: 2023,
			report: contracts.ReportAnnual,
			want:   "OFS/2023 (CFS 없음)",
		},
		{
			name:   "older year",
			wantFs: contracts.FsDivConsolidated, gotFs: contracts.FsDivConsolidated,
			wantYear: 2023, gotYear: 2021,
			report: contracts.ReportAnnual,
			want:   "CFS/2021 (2년 전)",
		},
		{
			name:   "everything fell back",
			wantFs: contracts.FsDivConsolidated, gotFs: contracts.FsDivSeparate,
			wantYear: 2023, gotYear: 2022,
			report: contracts.ReportHalfYear,
			want:   "OFS/2022 (CFS 없음, 1년 전, 반기보고서)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dataSourceNote(tt.wantFs, tt.gotFs, tt.wantYear, tt.gotYear, tt.report)
			if got != tt.want {
				t.Errorf("dataSourceNote() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyHoldings(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	items := []ExecutiveHolding{
		{ReceiptDate: "2024-03-15", Reporter: "김철수", Position: "대표이사", ChangeCount: "10,000"},
		{ReceiptDate: "2024-02-10", Reporter: "이영희", Position: "전무", ChangeCount: "5,000"},
		{ReceiptDate: "2024-04-01", Reporter: "박민수", Position: "상무", ChangeCount: "-3,000"},
		// 기준일 이전 보고는 무시
		{ReceiptDate: "2023-11-20", Reporter: "최과거", Position: "회장", ChangeCount: "50,000"},
		// 수량 0은 매수도 매도도 아니다
		{ReceiptDate: "2024-05-05", Reporter: "정중립", Position: "이사", ChangeCount: "0"},
		// 날짜가 깨진 행은 건너뛴다
		{ReceiptDate: "20240301", Reporter: "오형식", Position: "이사", ChangeCount: "1,000"},
	}

	activity := classifyHoldings(items, since)

	if activity.BuyCount != 2 {
		t.Errorf("BuyCount = %d, want 2", activity.BuyCount)
	}
	if activity.SellCount != 1 {
		t.Errorf("SellCount = %d, want 1", activity.SellCount)
	}
	if !activity.CEOBought {
		t.Error("CEOBought = false, want true (대표이사 매수)")
	}
}

func TestClassifyHoldingsNoCEO(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	items := []ExecutiveHolding{
		{ReceiptDate: "2024-03-15", Reporter: "김부장", Position: "이사", ChangeCount: "1,000"},
	}

	activity := classifyHoldings(items, since)
	if activity.CEOBought {
		t.Error("CEOBought = true, want false (일반 이사)")
	}
	if activity.BuyCount != 1 {
		t.Errorf("BuyCount = %d, want 1", activity.BuyCount)
	}
}

func TestIsTopManagement(t *testing.T) {
	tests := []struct {
		position string
		want     bool
	}{
		{"대표이사", true},
		{"사장", true},
		{"회장", true},
		{"CEO", true},
		{"부사장", true}, // 사장 포함
		{"전무", false},
		{"이사", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isTopManagement(tt.position); got != tt.want {
			t.Errorf("isTopManagement(%q) = %v, want %v", tt.position, got, tt.want)
		}
	}
}

func TestSumConvertibleShares(t *testing.T) {
	items := []convertibleDecision{
		{ConvertibleShares: "100,000"},
		{ConvertibleShares: "50,000"},
		{ConvertibleShares: "-"},
	}

	if got := sumConvertibleShares(items); got != 150000 {
		t.Errorf("sumConvertibleShares() = %d, want 150000", got)
	}

	if got := sumConvertibleShares(nil); got != 0 {
		t.Errorf("sumConvertibleShares(nil) = %d, want 0", got)
	}
}

func TestEventKindIsValid(t *testing.T) {
	valid := []EventKind{EventConvertibleBond, EventPaidIncrease, EventTreasuryStock, EventLawsuit}
	for _, kind := range valid {
		if !kind.IsValid() {
			t.Errorf("EventKind(%q).IsValid() = false, want true", kind)
		}
	}
	if EventKind("fnlttSinglAcntAll").IsValid() {
		t.Error("arbitrary endpoint should not be a valid event kind")
	}
}
