package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [corp_code]",
	Short: "재무 분석 실행",
	Long: `저장된 재무제표를 다시 분석해 점수를 갱신합니다.

corp_code를 주면 해당 기업 하나만 분석해 지표 상세를 출력하고,
주지 않으면 전체 유니버스를 재분석합니다 (캐시 무시, 결과 저장).

Example:
  go run ./cmd/buffett analyze --year 2024
  go run ./cmd/buffett analyze 00126380 --year 2024`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeYear  int
	analyzeFsDiv string
	analyzeLimit int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().IntVar(&analyzeYear, "year", time.Now().Year()-1, "사업연도")
	analyzeCmd.Flags().StringVar(&analyzeFsDiv, "fs-div", "CFS", "재무제표 구분 (CFS|OFS)")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "분석 기업 수 제한 (0=전체)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Buffett Analyzer ===")

	fsDiv := contracts.FsDiv(strings.ToUpper(analyzeFsDiv))
	if !fsDiv.IsValid() {
		return fmt.Errorf("invalid fs-div %q (CFS or OFS)", analyzeFsDiv)
	}

	deps, err := initDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 단일 기업: 지표 상세 출력
	if len(args) == 1 {
		analysis, err := deps.screener.Analyze(ctx, args[0], "", analyzeYear, fsDiv)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", args[0], err)
		}
		printAnalysis(analysis)
		return nil
	}

	// 전체: 캐시 무시하고 재계산 + 저장
	fmt.Printf("\n🚀 Analyzing %d년 %s universe...\n", analyzeYear, fsDiv)
	result, err := deps.screener.Scan(ctx, analyzeYear, fsDiv, analyzeLimit, false)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	printScreenerResult(result, 20)
	return nil
}
