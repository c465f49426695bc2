package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "스크리닝 전략 백테스트",
	Long: `과거 스크리닝 결과로 매수했을 때의 수익률을 검증합니다.

매수일은 (기준연도+1)년 4월 1일 (사업보고서 제출 마감 직후),
매도일은 매수일 + 보유기간이며 미래면 오늘까지로 절단합니다.
해당 연도의 스크리닝 결과가 저장돼 있어야 합니다.

Flags:
  --year   스크리닝 기준 사업연도 (필수)
  --top    상위 N개 종목 매수 (기본: 20)
  --hold   보유 기간, 년 (기본: 3)

Example:
  go run ./cmd/buffett backtest --year 2021
  go run ./cmd/buffett backtest --year 2020 --top 10 --hold 5`,
	RunE: runBacktest,
}

var (
	backtestYear  int
	backtestFsDiv string
	backtestTopN  int
	backtestHold  int
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	// Flags
	backtestCmd.Flags().IntVar(&backtestYear, "year", 0, "스크리닝 기준 사업연도 (필수)")
	backtestCmd.Flags().StringVar(&backtestFsDiv, "fs-div", "CFS", "재무제표 구분 (CFS|OFS)")
	backtestCmd.Flags().IntVar(&backtestTopN, "top", 20, "상위 N개 종목")
	backtestCmd.Flags().IntVar(&backtestHold, "hold", 3, "보유 기간 (년)")

	backtestCmd.MarkFlagRequired("year")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Buffett Backtest ===")

	fsDiv := contracts.FsDiv(strings.ToUpper(backtestFsDiv))
	if !fsDiv.IsValid() {
		return fmt.Errorf("invalid fs-div %q (CFS or OFS)", backtestFsDiv)
	}

	deps, err := initDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n🚀 %d년 상위 %d개 종목, %d년 보유 시뮬레이션...\n",
		backtestYear, backtestTopN, backtestHold)

	run, err := deps.backtest.Validate(ctx, contracts.BacktestConfig{
		Year:         backtestYear,
		FsDiv:        fsDiv,
		TopN:         backtestTopN,
		HoldingYears: backtestHold,
	})
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestRun(run)
	return nil
}

func printBacktestRun(run *contracts.BacktestRun) {
	fmt.Println("\n✅ Backtest Completed")
	fmt.Println(strings.Repeat("═", 72))

	fmt.Printf("\n📅 Period: %s ~ %s\n",
		run.BuyDate.Format("2006-01-02"), run.SellDate.Format("2006-01-02"))
	fmt.Println()

	fmt.Printf("%-4s  %-16s %-8s %10s %10s %11s\n",
		"Rank", "기업명", "종목코드", "매수가", "매도가", "수익률")
	printSeparator()
	for _, p := range run.Positions {
		if !p.Valid() {
			fmt.Printf("%-4d  %-16s %-8s %10s %10s %11s  (%s)\n",
				p.Rank, truncateName(p.CorpName, 16), p.StockCode, "-", "-", "-", p.Error)
			continue
		}
		fmt.Printf("%-4d  %-16s %-8s %10s %10s %+10.2f%%\n",
			p.Rank, truncateName(p.CorpName, 16), p.StockCode,
			formatNumber(int64(p.BuyPrice)), formatNumber(int64(p.SellPrice)), p.ReturnRate)
	}

	s := run.Stats
	fmt.Println("\n💰 Performance")
	fmt.Printf("Valid Stocks : %d / %d\n", s.ValidStocks, s.TotalStocks)
	fmt.Printf("Avg Return   : %+.2f%%\n", s.AvgReturn)
	fmt.Printf("Win Rate     : %.1f%% (%d/%d)\n", s.WinRate, s.WinCount, s.ValidStocks)
	fmt.Printf("KOSPI        : %+.2f%%\n", s.BenchmarkReturn)

	fmt.Printf("Alpha        : %+.2f%%", s.Alpha)
	if s.Alpha > 0 {
		fmt.Print(" ✅ (시장 초과)")
	} else {
		fmt.Print(" ❌ (시장 하회)")
	}
	fmt.Println()
}
