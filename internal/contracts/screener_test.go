package contracts

import "testing"

func TestScreenerResult_Satisfies(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		req   int
		want  bool
	}{
		{"full scan satisfies anything", 0, 100, true},
		{"same limit", 50, 50, true},
		{"smaller request", 50, 10, true},
		{"larger request", 50, 100, false},
		{"full-scan request against limited cache", 50, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ScreenerResult{Limit: tt.limit}
			if got := r.Satisfies(tt.req); got != tt.want {
				t.Errorf("Satisfies(%d) with limit %d = %v, want %v", tt.req, tt.limit, got, tt.want)
			}
		})
	}
}

func TestScreenerResult_Top(t *testing.T) {
	r := &ScreenerResult{
		Ranked: []RankedCompany{
			{Rank: 1, CorpCode: "00126380", TotalScore: 115},
			{Rank: 2, CorpCode: "00164742", TotalScore: 98},
			{Rank: 3, CorpCode: "00401731", TotalScore: 82},
		},
	}

	if got := r.Top(2); len(got) != 2 || got[1].Rank != 2 {
		t.Errorf("Top(2) = %v entries, want first 2 ranks", len(got))
	}
	if got := r.Top(0); len(got) != 3 {
		t.Errorf("Top(0) = %v entries, want all", len(got))
	}
	if got := r.Top(10); len(got) != 3 {
		t.Errorf("Top(10) = %v entries, want all", len(got))
	}
}

func TestFetchReport_Consistent(t *testing.T) {
	ok := &FetchReport{Attempted: 10, Fetched: 6, Skipped: 3, Failed: 1}
	if !ok.Consistent() {
		t.Error("6+3+1=10 should be consistent")
	}

	bad := &FetchReport{Attempted: 10, Fetched: 6, Skipped: 3, Failed: 2}
	if bad.Consistent() {
		t.Error("6+3+2!=10 should be inconsistent")
	}
}
