package commands

import (
	"fmt"
	"strings"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// formatNumber renders 1234567 as 1,234,567
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	var result []rune
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, c)
	}
	return string(result)
}

// truncateName cuts a display name to max runes
func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// printSeparator prints a visual separator
func printSeparator() {
	fmt.Println(strings.Repeat("─", 72))
}

// printRankedTable prints the top entries of a screening run
func printRankedTable(ranked []contracts.RankedCompany, max int) {
	if len(ranked) == 0 {
		fmt.Println("  (통과 종목 없음)")
		return
	}
	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}

	fmt.Printf("%-4s  %-16s %-8s %7s  %-6s %-12s %s\n",
		"Rank", "기업명", "종목코드", "점수", "등급", "시그널", "업종")
	printSeparator()
	for _, rc := range ranked {
		fmt.Printf("%-4d  %-16s %-8s %7.1f  %-6s %-12s %s\n",
			rc.Rank, truncateName(rc.CorpName, 16), rc.StockCode,
			rc.TotalScore, rc.Grade, rc.Signal, rc.Sector)
	}
}

// printScreenerResult prints counts plus the ranked table
func printScreenerResult(result *contracts.ScreenerResult, show int) {
	source := "계산"
	if result.FromCache {
		source = "[캐시]"
	}
	fmt.Printf("\n✅ %d년 %s 스크리닝 %s (%.1fs)\n",
		result.Year, result.FsDiv, source, float64(result.ElapsedMS)/1000)
	fmt.Printf("   분석 %d개 = 통과 %d + 필터 탈락 %d + 데이터 없음 %d\n\n",
		result.Analyzed, result.Passed, result.Filtered, result.NoData)

	printRankedTable(result.Ranked, show)

	if len(result.Ranked) > show && show > 0 {
		fmt.Printf("\n   ... 외 %d개 통과\n", len(result.Ranked)-show)
	}
}

// printAnalysis prints one company's full indicator breakdown
func printAnalysis(a *contracts.CompanyAnalysis) {
	fmt.Printf("\n📊 %s (%s) %d년 %s\n", a.CorpName, a.CorpCode, a.Year, a.FsDiv)
	if a.Sector != "" {
		fmt.Printf("   업종: %s\n", a.Sector)
	}
	printSeparator()

	for _, ind := range a.Indicators {
		fmt.Printf("   %-18s %10.2f  %5.1f/%-3.0f점  %s\n",
			ind.Name, ind.Value, ind.Score, ind.MaxScore, ind.Grade)
	}

	printSeparator()
	fmt.Printf("   총점   : %.1f (기본 %.1f + 보너스 %.1f)\n", a.TotalScore, a.BaseScore, a.BonusScore)
	fmt.Printf("   등급   : %s (%s)\n", a.Grade, a.Rating.Label)
	fmt.Printf("   시그널 : %s\n", a.Signal)

	if a.Disqualified() {
		fmt.Println("\n❌ 필터 탈락:")
		for _, reason := range a.FilterReasons {
			fmt.Printf("   - %s\n", reason)
		}
		fmt.Printf("   (필터 무시 원점수: %.1f)\n", a.RawScore)
	}

	if a.Recommendation != "" {
		fmt.Printf("\n💡 %s\n", a.Recommendation)
	}
	if a.DataSource != "" {
		fmt.Printf("   데이터 출처: %s\n", a.DataSource)
	}
}
