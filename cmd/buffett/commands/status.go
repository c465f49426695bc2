package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "시스템 상태 조회",
	Long: `데이터와 실행 이력의 현재 상태를 보여줍니다.

표시 정보:
- 저장소 연결 상태 (Postgres, Redis)
- 기업 레지스트리 규모
- 분석 가능 연도
- 최근 실행 이력 (수집/스크리닝/백테스트/스케줄 잡)

Example:
  go run ./cmd/buffett status
  go run ./cmd/buffett status --history 10`,
	RunE: runStatus,
}

var (
	statusHistory int
)

func init() {
	rootCmd.AddCommand(statusCmd)

	// Flags
	statusCmd.Flags().IntVar(&statusHistory, "history", 5, "종류별 이력 표시 수")
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Buffett System Status ===")

	deps, err := initDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx := context.Background()

	// 1. Storage
	fmt.Println("\n🗄  Storage")
	if h, err := deps.db.Health(ctx); err != nil {
		fmt.Printf("❌ PostgreSQL unreachable: %v\n", err)
	} else {
		fmt.Printf("✅ PostgreSQL connected (%.0fms, 연결 %d/%d)\n",
			float64(h.ResponseTime.Microseconds())/1000.0, h.TotalConns, h.MaxConns)
	}
	if deps.cache.Enabled() {
		fmt.Println("✅ Redis cache enabled")
	} else {
		fmt.Println("⚠️  Redis cache disabled")
	}

	// 2. Registry
	count, err := deps.store.Companies.Count(ctx)
	if err != nil {
		return fmt.Errorf("count companies: %w", err)
	}
	if count == 0 {
		fmt.Println("\n⚠️  기업 레지스트리 비어 있음 (fetch --sync로 동기화)")
	} else {
		fmt.Printf("\n🏢 기업 레지스트리: %s개 상장사\n", formatNumber(int64(count)))
	}

	// 3. Years with stored analyses
	years, err := deps.screener.Years(ctx)
	if err != nil {
		return fmt.Errorf("list years: %w", err)
	}
	if len(years) == 0 {
		fmt.Println("📅 분석 데이터 없음 (analyze 먼저 실행)")
	} else {
		labels := make([]string, len(years))
		for i, y := range years {
			labels[i] = fmt.Sprintf("%d", y)
		}
		fmt.Printf("📅 분석 가능 연도: %s\n", strings.Join(labels, ", "))
	}

	// 4. Recent run history per kind
	kinds := []struct {
		kind  string
		label string
	}{
		{contracts.RunKindFetch, "수집"},
		{contracts.RunKindScreen, "스크리닝"},
		{contracts.RunKindBacktest, "백테스트"},
		{contracts.RunKindJob, "스케줄 잡"},
	}

	for _, k := range kinds {
		records, err := deps.store.History.Recent(ctx, k.kind, statusHistory)
		if err != nil {
			return fmt.Errorf("recent %s history: %w", k.kind, err)
		}
		if len(records) == 0 {
			continue
		}

		fmt.Printf("\n📋 최근 %s 이력\n", k.label)
		printSeparator()
		for _, rec := range records {
			printRunRecord(rec)
		}
	}

	return nil
}

func printRunRecord(rec *contracts.RunRecord) {
	mark := "✅"
	if !rec.Success {
		mark = "❌"
	}

	line := fmt.Sprintf("%s %s  %-24s %6.1fs",
		mark, rec.StartedAt.Format("01-02 15:04"),
		truncateName(rec.Name, 24), rec.Duration().Seconds())

	if rec.Year > 0 {
		line += fmt.Sprintf("  %d년 %s", rec.Year, rec.FsDiv)
	}
	if rec.ErrorMsg != "" {
		line += "  " + truncateName(rec.ErrorMsg, 40)
	}
	fmt.Println(line)
}
