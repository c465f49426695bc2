package naver

import "testing"

const sampleCompanyPage = `
<html><body>
<div class="wrap_company">
	<h2><a href="/item/main.naver?code=005930">삼성전자</a></h2>
	<div class="description">
		<img src="https://ssl.pstatic.net/imgstock/images5/ico_kospi.gif" alt="코스피">
		<span class="code">005930</span>
	</div>
</div>
<div id="tab_con1">
	<div class="first">
		<table summary="시가총액 정보">
			<tr><th>시가총액</th><td><em>429조 2,940</em>억원</td></tr>
			<tr><th>상장주식수</th><td><em>5,969,782,550</em></td></tr>
		</table>
	</div>
</div>
<div class="section trade_compare">
	<h4 class="h_sub sub_tit7">
		<em>동일업종비교 : <a href="/sise/sise_group_detail.naver?type=upjong&no=278">반도체와반도체장비</a></em>
	</h4>
</div>
</body></html>`

func TestParseProfileHTML(t *testing.T) {
	profile, err := parseProfileHTML(sampleCompanyPage)
	if err != nil {
		t.Fatalf("parseProfileHTML() error = %v", err)
	}

	if profile.Sector != "반도체와반도체장비" {
		t.Errorf("Sector = %q, want 반도체와반도체장비", profile.Sector)
	}
	if profile.Market != "KOSPI" {
		t.Errorf("Market = %q, want KOSPI", profile.Market)
	}
	if profile.ListedShares != 5969782550 {
		t.Errorf("ListedShares = %d, want 5969782550", profile.ListedShares)
	}
}

func TestParseProfileHTMLKosdaq(t *testing.T) {
	page := `
<div class="wrap_company">
	<div class="description"><img alt="코스닥"></div>
</div>
<div class="section trade_compare">
	<h4><em><a href="#">제약</a></em></h4>
</div>`

	profile, err := parseProfileHTML(page)
	if err != nil {
		t.Fatalf("parseProfileHTML() error = %v", err)
	}
	if profile.Market != "KOSDAQ" {
		t.Errorf("Market = %q, want KOSDAQ", profile.Market)
	}
	if profile.Sector != "제약" {
		t.Errorf("Sector = %q, want 제약", profile.Sector)
	}
}

func TestParseProfileHTMLEmptyPage(t *testing.T) {
	if _, err := parseProfileHTML("<html><body>점검 중입니다</body></html>"); err == nil {
		t.Error("parseProfileHTML() on a page with no profile fields should fail")
	}
}

func TestParseShareCount(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"5,969,782,550", 5969782550},
		{" 12,345 ", 12345},
		{"", 0},
		{"N/A", 0},
	}

	for _, tt := range tests {
		if got := parseShareCount(tt.input); got != tt.want {
			t.Errorf("parseShareCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
