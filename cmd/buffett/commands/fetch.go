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

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "DART 재무제표 일괄 수집",
	Long: `유니버스 전체 기업의 재무제표를 수집합니다.

이 명령어는:
- 기업 레지스트리에서 상장 기업 로드 (비어 있으면 먼저 동기화)
- 투자 부적격 기업 제외 (스팩/우선주/SPV)
- 워커 풀로 기업별 재무제표 수집 + 저장
- 이미 수집된 기업은 스킵 (--force로 재수집)

Example:
  go run ./cmd/buffett fetch --year 2024
  go run ./cmd/buffett fetch --year 2024 --fs-div OFS --limit 100
  go run ./cmd/buffett fetch --year 2024 --force`,
	RunE: runFetch,
}

var (
	fetchYear    int
	fetchFsDiv   string
	fetchLimit   int
	fetchForce   bool
	fetchSync    bool
	fetchBatch   int
	fetchWorkers int
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	// Flags
	fetchCmd.Flags().IntVar(&fetchYear, "year", time.Now().Year()-1, "사업연도")
	fetchCmd.Flags().StringVar(&fetchFsDiv, "fs-div", "CFS", "재무제표 구분 (CFS|OFS)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "수집 기업 수 제한 (0=전체)")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "이미 수집된 기업도 재수집")
	fetchCmd.Flags().BoolVar(&fetchSync, "sync", false, "수집 전 기업 레지스트리 동기화")
	fetchCmd.Flags().IntVar(&fetchBatch, "batch-size", 0, "배치 크기 (기본: FETCH_BATCH_SIZE)")
	fetchCmd.Flags().IntVar(&fetchWorkers, "concurrency", 0, "동시 수집 수 (기본: FETCH_MAX_CONCURRENT)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Buffett Statement Fetcher ===")

	fsDiv := contracts.FsDiv(strings.ToUpper(fetchFsDiv))
	if !fsDiv.IsValid() {
		return fmt.Errorf("invalid fs-div %q (CFS or OFS)", fetchFsDiv)
	}

	deps, err := initDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 레지스트리가 비어 있으면 (첫 실행) 동기화부터 한다
	count, err := deps.store.Companies.Count(ctx)
	if err != nil {
		return fmt.Errorf("count companies: %w", err)
	}
	if fetchSync || count == 0 {
		fmt.Println("🔄 Syncing company registry from DART...")
		saved, total, err := deps.universe.Sync(ctx)
		if err != nil {
			return fmt.Errorf("sync registry: %w", err)
		}
		fmt.Printf("   %d개 상장사 저장 (전체 %d개 법인)\n", saved, total)
	}

	req := contracts.FetchRequest{
		Year:          fetchYear,
		FsDiv:         fsDiv,
		Limit:         fetchLimit,
		Force:         fetchForce,
		BatchSize:     fetchBatch,
		MaxConcurrent: fetchWorkers,
	}
	if req.BatchSize <= 0 {
		req.BatchSize = deps.cfg.Fetch.BatchSize
	}
	if req.MaxConcurrent <= 0 {
		req.MaxConcurrent = deps.cfg.Fetch.MaxConcurrent
	}

	fmt.Printf("\n🚀 Fetching %d년 %s statements", req.Year, req.FsDiv)
	if req.Limit > 0 {
		fmt.Printf(" (limit %d)", req.Limit)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")

	report, err := deps.newFetcher(nil).Run(ctx, req)
	if report != nil {
		printFetchReport(report)
	}
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	return nil
}

func printFetchReport(r *contracts.FetchReport) {
	fmt.Println()
	fmt.Printf("✅ %d년 %s 수집 완료 (%.1fs)\n", r.Year, r.FsDiv, float64(r.ElapsedMS)/1000)
	fmt.Printf("   Attempted : %d\n", r.Attempted)
	fmt.Printf("   Fetched   : %d\n", r.Fetched)
	fmt.Printf("   Skipped   : %d\n", r.Skipped)
	fmt.Printf("   Failed    : %d\n", r.Failed)

	if len(r.FailedCorps) > 0 {
		fmt.Println("\n⚠️  실패 기업:")
		const maxShown = 10
		for i, fc := range r.FailedCorps {
			if i == maxShown {
				fmt.Printf("   ... 외 %d개\n", len(r.FailedCorps)-maxShown)
				break
			}
			fmt.Printf("   - %s (%s): %s\n", fc.CorpName, fc.CorpCode, fc.Reason)
		}
	}
}
