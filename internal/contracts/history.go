package contracts

import "time"

// 실행 이력 종류
const (
	RunKindFetch    = "fetch"
	RunKindScreen   = "screen"
	RunKindBacktest = "backtest"
	RunKindJob      = "job" // 스케줄러 잡
)

// RunRecord is one pipeline execution entry kept for diagnostics.
// ⭐ SSOT: 실행 이력 (수집/스캔/백테스트/잡)
type RunRecord struct {
	ID       int64  `json:"id,omitempty"`
	Kind     string `json:"kind"`
	Name     string `json:"name"` // 잡 이름 또는 실행 설명
	Year     int    `json:"year,omitempty"`
	FsDiv    FsDiv  `json:"fs_div,omitempty"`
	Success  bool   `json:"success"`
	Detail   string `json:"detail,omitempty"` // 결과 요약 JSON
	ErrorMsg string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns the run's wall-clock duration
func (r *RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
