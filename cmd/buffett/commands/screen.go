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

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "우량주 스크리닝",
	Long: `저장된 재무제표를 기준으로 우량주를 스크리닝합니다.

캐시 경로:
- Redis 핫 캐시 → Postgres 보관 결과 → 재계산
- --no-cache로 항상 재계산

Example:
  go run ./cmd/buffett screen --year 2024
  go run ./cmd/buffett screen --year 2024 --limit 50
  go run ./cmd/buffett screen --year 2024 --no-cache`,
	RunE: runScreen,
}

var (
	screenYear    int
	screenFsDiv   string
	screenLimit   int
	screenNoCache bool
	screenShow    int
)

func init() {
	rootCmd.AddCommand(screenCmd)

	// Flags
	screenCmd.Flags().IntVar(&screenYear, "year", time.Now().Year()-1, "사업연도")
	screenCmd.Flags().StringVar(&screenFsDiv, "fs-div", "CFS", "재무제표 구분 (CFS|OFS)")
	screenCmd.Flags().IntVar(&screenLimit, "limit", 0, "상위 N개만 (0=전체)")
	screenCmd.Flags().BoolVar(&screenNoCache, "no-cache", false, "캐시 무시하고 재계산")
	screenCmd.Flags().IntVar(&screenShow, "show", 30, "표에 표시할 종목 수")
}

func runScreen(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Buffett Screener ===")

	fsDiv := contracts.FsDiv(strings.ToUpper(screenFsDiv))
	if !fsDiv.IsValid() {
		return fmt.Errorf("invalid fs-div %q (CFS or OFS)", screenFsDiv)
	}

	deps, err := initDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := deps.screener.Scan(ctx, screenYear, fsDiv, screenLimit, !screenNoCache)
	if err != nil {
		return fmt.Errorf("screen failed: %w", err)
	}

	printScreenerResult(result, screenShow)
	return nil
}
