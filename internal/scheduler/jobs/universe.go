package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/buffett/backend/internal/universe"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// 섹터 백필은 네이버 스크랩이라 한 번에 다 채우지 않고 주 단위로 나눠 돈다.
const sectorBackfillLimit = 300

// UniverseSyncJob refreshes the company registry weekly
// ⭐ SSOT: 기업 마스터 동기화 스케줄은 이 Job에서만
type UniverseSyncJob struct {
	universe *universe.Service
	logger   *logger.Logger
}

// NewUniverseSyncJob creates a new universe sync job
func NewUniverseSyncJob(svc *universe.Service, log *logger.Logger) *UniverseSyncJob {
	return &UniverseSyncJob{
		universe: svc,
		logger:   log,
	}
}

// Name returns the job name
func (j *UniverseSyncJob) Name() string {
	return "universe_sync"
}

// Schedule returns the cron schedule (every Monday at 1 AM KST,
// before the nightly refresh picks up new listings)
func (j *UniverseSyncJob) Schedule() string {
	return "0 0 1 * * 1"
}

// Run executes the registry sync and a bounded sector backfill
func (j *UniverseSyncJob) Run(ctx context.Context) error {
	j.logger.Info("Starting universe sync")

	// 1. DART corpCode 전체 목록과 로컬 레지스트리 동기화
	saved, total, err := j.universe.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync registry: %w", err)
	}
	j.logger.WithFields(map[string]interface{}{
		"saved": saved,
		"total": total,
	}).Info("Registry synced")

	// 2. 섹터 미보유 기업 일부 보충. 실패해도 다음 주에 이어서 채우면
	// 되므로 동기화 자체를 실패로 돌리지 않는다.
	filled, err := j.universe.BackfillSectors(ctx, sectorBackfillLimit)
	if err != nil {
		j.logger.WithError(err).Warn("Sector backfill failed")
		return nil
	}

	j.logger.WithFields(map[string]interface{}{
		"saved":          saved,
		"sectors_filled": filled,
	}).Info("Universe sync completed")
	return nil
}
