package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/logger"
)

func newTestLogger() *logger.Logger {
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	return logger.New(cfg)
}

// stubJob fails a configured number of times before succeeding
type stubJob struct {
	name     string
	schedule string
	failures int
	runs     int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	if j.runs <= j.failures {
		return fmt.Errorf("attempt %d failed", j.runs)
	}
	return nil
}

type fakeRunRepo struct {
	records []*contracts.RunRecord
}

func (f *fakeRunRepo) Record(ctx context.Context, rec *contracts.RunRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRunRepo) Recent(ctx context.Context, kind string, limit int) ([]*contracts.RunRecord, error) {
	return f.records, nil
}

func newTestScheduler(runs contracts.RunHistoryRepository) *Scheduler {
	s := New(newTestLogger(), runs)
	s.retryDelay = time.Millisecond // 테스트에서 1분 재시도 대기를 기다리지 않는다
	return s
}

func TestAddJobRejectsDuplicate(t *testing.T) {
	s := newTestScheduler(nil)

	require.NoError(t, s.AddJob(&stubJob{name: "refresh", schedule: "0 0 2 * * *"}))

	err := s.AddJob(&stubJob{name: "refresh", schedule: "0 0 3 * * *"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJobRejectsInvalidSchedule(t *testing.T) {
	s := newTestScheduler(nil)

	err := s.AddJob(&stubJob{name: "broken", schedule: "every now and then"})
	require.Error(t, err)
}

func TestRunJobUnknownName(t *testing.T) {
	s := newTestScheduler(nil)

	err := s.RunJob("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunJobRetriesUntilSuccess(t *testing.T) {
	repo := &fakeRunRepo{}
	s := newTestScheduler(repo)

	job := &stubJob{name: "flaky", schedule: "0 0 2 * * *", failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("flaky"))

	assert.Equal(t, 3, job.runs)

	history, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
	assert.Empty(t, history.Results[0].Error)

	require.Len(t, repo.records, 1)
	assert.Equal(t, contracts.RunKindJob, repo.records[0].Kind)
	assert.Equal(t, "flaky", repo.records[0].Name)
	assert.True(t, repo.records[0].Success)
}

func TestRunJobFailsAfterAllRetries(t *testing.T) {
	repo := &fakeRunRepo{}
	s := newTestScheduler(repo)

	// maxRetries 3이면 최초 시도 포함 총 4회
	job := &stubJob{name: "doomed", schedule: "0 0 2 * * *", failures: 99}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("doomed"))

	assert.Equal(t, 4, job.runs)

	history, err := s.GetJobHistory("doomed")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Contains(t, history.Results[0].Error, "failed")

	require.Len(t, repo.records, 1)
	assert.False(t, repo.records[0].Success)
	assert.NotEmpty(t, repo.records[0].ErrorMsg)
}

func TestRunJobWorksWithoutHistoryRepo(t *testing.T) {
	s := newTestScheduler(nil)

	job := &stubJob{name: "standalone", schedule: "0 0 2 * * *"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("standalone"))

	history, err := s.GetJobHistory("standalone")
	require.NoError(t, err)
	assert.Len(t, history.Results, 1)
}

func TestGetJobStats(t *testing.T) {
	s := newTestScheduler(nil)

	job := &stubJob{name: "nightly", schedule: "0 0 2 * * *"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("nightly"))

	stats := s.GetJobStats()
	require.Contains(t, stats, "nightly")

	st := stats["nightly"]
	assert.Equal(t, "0 0 2 * * *", st.Schedule)
	assert.Equal(t, 1, st.TotalRuns)
	assert.Equal(t, 1, st.SuccessCount)
	assert.Equal(t, 0, st.FailureCount)
	assert.InDelta(t, 1.0, st.SuccessRate, 0.001)
	require.NotNil(t, st.LastRun)
	require.NotNil(t, st.LastSuccess)
	assert.Nil(t, st.LastFailure)
}

func TestGetAllJobs(t *testing.T) {
	s := newTestScheduler(nil)

	require.NoError(t, s.AddJob(&stubJob{name: "a", schedule: "0 0 1 * * *"}))
	require.NoError(t, s.AddJob(&stubJob{name: "b", schedule: "0 0 2 * * *"}))

	assert.ElementsMatch(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestJobHistoryRing(t *testing.T) {
	h := &JobHistory{}

	for i := 0; i < historyRingSize+50; i++ {
		h.AddResult(JobResult{JobName: fmt.Sprintf("run-%d", i), Success: true})
	}

	require.Len(t, h.Results, historyRingSize)
	// 가장 오래된 50건이 밀려났다
	assert.Equal(t, "run-50", h.Results[0].JobName)
	assert.Equal(t, fmt.Sprintf("run-%d", historyRingSize+49), h.Results[len(h.Results)-1].JobName)
}

func TestJobHistorySuccessRate(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false})

	assert.InDelta(t, 0.75, h.GetSuccessRate(), 0.001)
	assert.Len(t, h.GetFailedResults(), 1)
}

func TestJobResultRunRecord(t *testing.T) {
	start := time.Date(2025, 8, 25, 2, 0, 0, 0, time.Local)
	end := start.Add(90 * time.Second)

	rec := JobResult{
		JobName:   "nightly_refresh",
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Success:   false,
		Error:     "fetch statements: timeout",
	}.runRecord()

	assert.Equal(t, contracts.RunKindJob, rec.Kind)
	assert.Equal(t, "nightly_refresh", rec.Name)
	assert.False(t, rec.Success)
	assert.Equal(t, "fetch statements: timeout", rec.ErrorMsg)
	assert.Equal(t, start, rec.StartedAt)
	assert.Equal(t, end, rec.FinishedAt)
	assert.Equal(t, 90*time.Second, rec.Duration())
}
