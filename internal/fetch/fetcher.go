package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

const (
	defaultBatchSize = 50
	defaultWorkers   = 5
)

// UniverseSource supplies the companies a collection run covers
type UniverseSource interface {
	Build(ctx context.Context, limit int) (*contracts.Universe, error)
}

// Fetcher orchestrates bulk statement collection over the universe.
// ⭐ SSOT: 재무 데이터 수집 오케스트레이션은 이 패키지에서만
type Fetcher struct {
	builder    contracts.StatementBuilder
	statements contracts.StatementRepository
	universe   UniverseSource
	progress   contracts.ProgressPublisher
	logger     *logger.Logger
}

// NewFetcher creates a new Fetcher instance. progress may be nil.
func NewFetcher(
	builder contracts.StatementBuilder,
	statements contracts.StatementRepository,
	universeSource UniverseSource,
	progress contracts.ProgressPublisher,
	log *logger.Logger,
) *Fetcher {
	return &Fetcher{
		builder:    builder,
		statements: statements,
		universe:   universeSource,
		progress:   progress,
		logger:     log.WithField("module", "fetch"),
	}
}

// outcome is one company's collection result inside a batch
type outcome struct {
	corp    *contracts.Company
	fetched bool
	skipped bool
	err     error
}

// Run collects statements for every company in the universe.
// 취소 시 그때까지의 집계를 담은 리포트와 ctx 오류를 함께 반환한다.
func (f *Fetcher) Run(ctx context.Context, req contracts.FetchRequest) (*contracts.FetchReport, error) {
	if req.BatchSize <= 0 {
		req.BatchSize = defaultBatchSize
	}
	if req.MaxConcurrent <= 0 {
		req.MaxConcurrent = defaultWorkers
	}

	u, err := f.universe.Build(ctx, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("build universe: %w", err)
	}

	started := time.Now()
	report := &contracts.FetchReport{
		Year:      req.Year,
		FsDiv:     req.FsDiv,
		StartedAt: started,
	}

	companies := u.Companies
	batchCount := (len(companies) + req.BatchSize - 1) / req.BatchSize

	f.logger.WithFields(map[string]interface{}{
		"year":      req.Year,
		"fs_div":    req.FsDiv,
		"companies": len(companies),
		"batches":   batchCount,
		"workers":   req.MaxConcurrent,
		"force":     req.Force,
	}).Info("Starting statement collection")

	for bi := 0; bi*req.BatchSize < len(companies); bi++ {
		if ctx.Err() != nil {
			break
		}

		start := bi * req.BatchSize
		end := start + req.BatchSize
		if end > len(companies) {
			end = len(companies)
		}

		for _, o := range f.fetchBatch(ctx, companies[start:end], req) {
			report.Attempted++
			switch {
			case o.skipped:
				report.Skipped++
			case o.fetched:
				report.Fetched++
			default:
				report.Failed++
				report.FailedCorps = append(report.FailedCorps, contracts.FailedCorp{
					CorpCode: o.corp.CorpCode,
					CorpName: o.corp.CorpName,
					Reason:   o.err.Error(),
				})
			}
		}

		f.publish(req, bi+1, batchCount, report, false)
	}

	report.FinishedAt = time.Now()
	report.ElapsedMS = time.Since(started).Milliseconds()
	f.publish(req, batchCount, batchCount, report, true)

	f.logger.WithFields(map[string]interface{}{
		"attempted": report.Attempted,
		"fetched":   report.Fetched,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
		"elapsed":   report.ElapsedMS,
	}).Info("Statement collection completed")

	return report, ctx.Err()
}

// fetchBatch runs one batch through the worker pool
func (f *Fetcher) fetchBatch(ctx context.Context, batch []*contracts.Company, req contracts.FetchRequest) []outcome {
	jobCh := make(chan *contracts.Company, len(batch))
	resultCh := make(chan outcome, len(batch))

	var wg sync.WaitGroup
	for i := 0; i < req.MaxConcurrent; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			f.worker(ctx, workerID, req, jobCh, resultCh)
		}(i)
	}

	for _, c := range batch {
		jobCh <- c
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	outcomes := make([]outcome, 0, len(batch))
	for o := range resultCh {
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// worker collects statements until the job channel drains
func (f *Fetcher) worker(ctx context.Context, workerID int, req contracts.FetchRequest, jobCh <-chan *contracts.Company, resultCh chan<- outcome) {
	for corp := range jobCh {
		select {
		case <-ctx.Done():
			resultCh <- outcome{corp: corp, err: ctx.Err()}
			return
		default:
		}

		if !req.Force {
			exists, err := f.statements.Exists(ctx, corp.CorpCode, req.Year, req.FsDiv)
			if err == nil && exists {
				resultCh <- outcome{corp: corp, skipped: true}
				continue
			}
		}

		stmt, err := f.builder.Build(ctx, corp, req.Year, req.FsDiv)
		if err != nil {
			// 재무 데이터가 없는 기업은 정상 범주라 조용히 기록한다
			if errors.Is(err, contracts.ErrMissingData) {
				f.logger.WithFields(map[string]interface{}{
					"worker":    workerID,
					"corp_code": corp.CorpCode,
				}).Debug("No financial data")
			} else {
				f.logger.WithError(err).WithFields(map[string]interface{}{
					"worker":    workerID,
					"corp_code": corp.CorpCode,
				}).Error("Failed to build statement")
			}
			resultCh <- outcome{corp: corp, err: err}
			continue
		}

		if err := f.statements.Save(ctx, stmt); err != nil {
			f.logger.WithError(err).WithFields(map[string]interface{}{
				"worker":    workerID,
				"corp_code": corp.CorpCode,
			}).Error("Failed to save statement")
			resultCh <- outcome{corp: corp, err: fmt.Errorf("save statement: %w", err)}
			continue
		}

		f.logger.WithFields(map[string]interface{}{
			"worker":      workerID,
			"corp_code":   corp.CorpCode,
			"data_source": stmt.DataSource,
		}).Debug("Fetched statement")
		resultCh <- outcome{corp: corp, fetched: true}
	}
}

// publish emits a progress event when a publisher is wired
func (f *Fetcher) publish(req contracts.FetchRequest, batch, batchCount int, report *contracts.FetchReport, done bool) {
	if f.progress == nil {
		return
	}
	f.progress.Publish(contracts.FetchProgress{
		Year:       req.Year,
		FsDiv:      req.FsDiv,
		Batch:      batch,
		BatchCount: batchCount,
		Attempted:  report.Attempted,
		Fetched:    report.Fetched,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
		Done:       done,
		Timestamp:  time.Now(),
	})
}
