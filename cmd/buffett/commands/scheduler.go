package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/scheduler"
	"github.com/wonny/buffett/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- nightly_refresh: 매일 새벽 2시 (직전 회계연도 수집 + 재분석)
- universe_sync:   매주 월요일 새벽 1시 (기업 레지스트리 동기화)

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/buffett scheduler start
  go run ./cmd/buffett scheduler list
  go run ./cmd/buffett scheduler run nightly_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Buffett Scheduler ===")

	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()

	// 세션 동안 실행된 잡 요약
	printJobStats(sched.GetJobStats())
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	fmt.Println("Registered jobs:")
	for jobName, stat := range sched.GetJobStats() {
		fmt.Printf("  - %-20s %s\n", jobName, stat.Schedule)
	}

	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	fmt.Printf("Running job: %s\n", jobName)

	// 재시도 포함 완료까지 대기
	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	history, err := sched.GetJobHistory(jobName)
	if err != nil {
		return err
	}
	last := history.Results[len(history.Results)-1]
	if !last.Success {
		return fmt.Errorf("job %s failed: %s", jobName, last.Error)
	}

	fmt.Printf("✅ Job %s completed in %.1fs\n", jobName, last.Duration.Seconds())
	return nil
}

func printJobStats(stats map[string]scheduler.JobStats) {
	for jobName, stat := range stats {
		if stat.TotalRuns == 0 {
			continue
		}
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}
	}
}

// initScheduler wires the service graph and registers every job
func initScheduler() (*scheduler.Scheduler, *appDeps, error) {
	deps, err := initDeps()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(deps.log, deps.store.History)

	fetcher := deps.newFetcher(nil)
	if err := sched.AddJob(jobs.NewRefreshJob(fetcher, deps.screener, deps.log)); err != nil {
		deps.Close()
		return nil, nil, fmt.Errorf("register refresh job: %w", err)
	}
	if err := sched.AddJob(jobs.NewUniverseSyncJob(deps.universe, deps.log)); err != nil {
		deps.Close()
		return nil, nil, fmt.Errorf("register universe job: %w", err)
	}

	return sched, deps, nil
}
