package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/fetch"
	"github.com/wonny/buffett/backend/internal/screener"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// RefreshJob collects missing statements for the latest complete
// business year and recomputes the screen nightly.
// ⭐ SSOT: 야간 갱신 스케줄은 이 Job에서만
type RefreshJob struct {
	fetcher  *fetch.Fetcher
	screener *screener.Service
	logger   *logger.Logger
}

// NewRefreshJob creates a new nightly refresh job
func NewRefreshJob(fetcher *fetch.Fetcher, scr *screener.Service, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		fetcher:  fetcher,
		screener: scr,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "nightly_refresh"
}

// Schedule returns the cron schedule (every day at 2 AM KST, DART
// quota is idle overnight)
func (j *RefreshJob) Schedule() string {
	return "0 0 2 * * *"
}

// Run executes the refresh: incremental fetch, then a full recompute
func (j *RefreshJob) Run(ctx context.Context) error {
	year := businessYear(time.Now())

	j.logger.WithField("year", year).Info("Starting nightly refresh")

	// 1. 미수집 기업만 수집 (이미 저장된 조합은 스킵)
	report, err := j.fetcher.Run(ctx, contracts.FetchRequest{
		Year:  year,
		FsDiv: contracts.FsDivConsolidated,
	})
	if err != nil {
		return fmt.Errorf("fetch statements: %w", err)
	}
	j.logger.WithFields(map[string]interface{}{
		"fetched": report.Fetched,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("Nightly fetch finished")

	// 2. 스크리너 재계산. 캐시를 무시하고 결과를 새로 저장한다.
	// 동시 요청과의 충돌은 스크리너의 갱신 잠금이 병합한다.
	result, err := j.screener.Scan(ctx, year, contracts.FsDivConsolidated, 0, false)
	if err != nil {
		return fmt.Errorf("recompute screen: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"year":     year,
		"passed":   result.Passed,
		"filtered": result.Filtered,
		"no_data":  result.NoData,
	}).Info("Nightly refresh completed")
	return nil
}

// businessYear is the most recent fiscal year whose annual report can
// exist. 사업보고서 제출 마감이 3월 말이라 4월부터 직전 연도를 본다.
func businessYear(now time.Time) int {
	if now.Month() >= time.April {
		return now.Year() - 1
	}
	return now.Year() - 2
}
