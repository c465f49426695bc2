package contracts

import "time"

// FetchRequest controls one bulk statement collection run
type FetchRequest struct {
	Year  int   `json:"year"`
	FsDiv FsDiv `json:"fs_div"`
	Limit int   `json:"limit,omitempty"` // 0이면 유니버스 전체

	BatchSize     int  `json:"batch_size,omitempty"`
	MaxConcurrent int  `json:"max_concurrent,omitempty"`
	Force         bool `json:"force,omitempty"` // 이미 수집된 기업도 다시 수집
}

// FailedCorp records one company that could not be fetched
type FailedCorp struct {
	CorpCode string `json:"corp_code"`
	CorpName string `json:"corp_name"`
	Reason   string `json:"reason"`
}

// FetchReport is the outcome of a bulk collection run.
// ⭐ SSOT: 수집 결과 집계
// 불변식: Fetched + Skipped + Failed == Attempted
type FetchReport struct {
	Year  int   `json:"year"`
	FsDiv FsDiv `json:"fs_div"`

	Attempted int `json:"attempted"`
	Fetched   int `json:"fetched"`
	Skipped   int `json:"skipped"` // 이미 수집됨 (force 아님)
	Failed    int `json:"failed"`

	FailedCorps []FailedCorp `json:"failed_corps,omitempty"`

	ElapsedMS  int64     `json:"elapsed_ms"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Consistent verifies the count invariant
func (r *FetchReport) Consistent() bool {
	return r.Fetched+r.Skipped+r.Failed == r.Attempted
}

// FetchProgress is a progress event published while a collection run executes
type FetchProgress struct {
	Year       int       `json:"year"`
	FsDiv      FsDiv     `json:"fs_div"`
	Batch      int       `json:"batch"`       // 현재 배치 (1부터)
	BatchCount int       `json:"batch_count"`
	Attempted  int       `json:"attempted"`
	Fetched    int       `json:"fetched"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Done       bool      `json:"done"`
	Timestamp  time.Time `json:"timestamp"`
}
