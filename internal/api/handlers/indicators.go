package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/fetch"
	"github.com/wonny/buffett/backend/internal/screener"
	"github.com/wonny/buffett/backend/internal/trend"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// IndicatorHandler handles collection and per-company analysis endpoints
// ⭐ SSOT: 지표 API 핸들러는 이 구조체에서만
type IndicatorHandler struct {
	fetcher  *fetch.Fetcher
	screener *screener.Service
	trend    *trend.Service
	logger   *logger.Logger
}

// NewIndicatorHandler creates a new indicator handler
func NewIndicatorHandler(fetcher *fetch.Fetcher, scr *screener.Service, trd *trend.Service, log *logger.Logger) *IndicatorHandler {
	return &IndicatorHandler{
		fetcher:  fetcher,
		screener: scr,
		trend:    trd,
		logger:   log,
	}
}

// FetchRequestBody is the bulk collection request
type FetchRequestBody struct {
	Year          int             `json:"year"`
	FsDiv         contracts.FsDiv `json:"fs_div"`
	Limit         int             `json:"limit"`
	BatchSize     int             `json:"batch_size"`
	MaxConcurrent int             `json:"max_concurrent"`
	Force         bool            `json:"force"`
}

// FetchResponse summarizes a bulk collection run
type FetchResponse struct {
	Year           int                    `json:"year"`
	FsDiv          contracts.FsDiv        `json:"fs_div"`
	FetchedCount   int                    `json:"fetched_count"`
	SkippedCount   int                    `json:"skipped_count"`
	FailedCount    int                    `json:"failed_count"`
	FailedCorps    []contracts.FailedCorp `json:"failed_corps"`
	ElapsedSeconds float64                `json:"elapsed_seconds"`
	TotalCompanies int                    `json:"total_companies"`
}

// Fetch collects raw statements for the tradable universe
// POST /api/v2/indicators/fetch
func (h *IndicatorHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body FetchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondFail(w, http.StatusBadRequest, "요청 본문 파싱 실패 (JSON)")
		return
	}
	if err := boundYear(body.Year); err != nil {
		respondServiceError(w, err)
		return
	}
	fsDiv, err := boundFsDiv(body.FsDiv)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	limit, err := boundRange("limit", body.Limit, 0, maxLimit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	batchSize, err := boundRange("batch_size", body.BatchSize, 0, maxBatchSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	concurrent, err := boundRange("max_concurrent", body.MaxConcurrent, 0, maxConcurrent)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	report, err := h.fetcher.Run(ctx, contracts.FetchRequest{
		Year:          body.Year,
		FsDiv:         fsDiv,
		Limit:         limit,
		BatchSize:     batchSize,
		MaxConcurrent: concurrent,
		Force:         body.Force,
	})
	if err != nil {
		h.logger.WithError(err).WithField("year", body.Year).Error("Bulk fetch failed")
		respondServiceError(w, err)
		return
	}

	elapsed := float64(report.ElapsedMS) / 1000
	resp := FetchResponse{
		Year:           report.Year,
		FsDiv:          report.FsDiv,
		FetchedCount:   report.Fetched,
		SkippedCount:   report.Skipped,
		FailedCount:    report.Failed,
		FailedCorps:    report.FailedCorps,
		ElapsedSeconds: elapsed,
		TotalCompanies: report.Attempted,
	}

	// 하나라도 수집(또는 스킵)되면 success
	respondJSON(w, http.StatusOK, Response{
		Success: report.Fetched > 0 || report.Skipped > 0,
		Message: fmt.Sprintf("API 호출 완료: %d개 fetch, %d개 skip, %d개 fail (%.1f초)",
			report.Fetched, report.Skipped, report.Failed, elapsed),
		Data: resp,
	})
}

// AnalyzeRequestBody is the bulk analysis request
type AnalyzeRequestBody struct {
	Year      int             `json:"year"`
	FsDiv     contracts.FsDiv `json:"fs_div"`
	Limit     int             `json:"limit"`
	BatchSize int             `json:"batch_size"`
}

// AnalyzeResponse summarizes a bulk analysis run
type AnalyzeResponse struct {
	Year           int             `json:"year"`
	FsDiv          contracts.FsDiv `json:"fs_div"`
	PassedCount    int             `json:"passed_count"`
	FilteredCount  int             `json:"filtered_count"`
	NoDataCount    int             `json:"no_data_count"`
	NoDataCorps    []string        `json:"no_data_corps"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
}

// Analyze recomputes the screen over already-collected statements
// POST /api/v2/indicators/analyze
func (h *IndicatorHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body AnalyzeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondFail(w, http.StatusBadRequest, "요청 본문 파싱 실패 (JSON)")
		return
	}
	if err := boundYear(body.Year); err != nil {
		respondServiceError(w, err)
		return
	}
	fsDiv, err := boundFsDiv(body.FsDiv)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	limit, err := boundRange("limit", body.Limit, 0, maxLimit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	// 배치 크기는 수집 단계에서만 의미가 있다. 분석은 메모리 연산이라
	// 검증만 하고 무시한다.
	if _, err := boundRange("batch_size", body.BatchSize, 0, maxBatchSize); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := h.screener.Scan(ctx, body.Year, fsDiv, limit, false)
	if err != nil {
		h.logger.WithError(err).WithField("year", body.Year).Error("Bulk analysis failed")
		respondServiceError(w, err)
		return
	}

	elapsed := float64(result.ElapsedMS) / 1000
	respondOK(w,
		fmt.Sprintf("분석 완료: %d개 통과, %d개 필터 탈락, %d개 데이터 없음 (%.1f초)",
			result.Passed, result.Filtered, result.NoData, elapsed),
		AnalyzeResponse{
			Year:           result.Year,
			FsDiv:          result.FsDiv,
			PassedCount:    result.Passed,
			FilteredCount:  result.Filtered,
			NoDataCount:    result.NoData,
			NoDataCorps:    result.NoDataCorps,
			ElapsedSeconds: elapsed,
		})
}

// Analysis scores one company, collecting its statement on demand
// GET /api/v2/indicators/analysis/{corp}?name&year&fs_div
func (h *IndicatorHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	corpCode := mux.Vars(r)["corp"]

	year, err := queryYear(r, "year")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	fsDiv, err := queryFsDiv(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	corpName := r.URL.Query().Get("name")

	analysis, err := h.screener.Analyze(ctx, corpCode, corpName, year, fsDiv)
	if err != nil {
		h.logger.WithError(err).WithField("corp_code", corpCode).Error("Company analysis failed")
		respondServiceError(w, err)
		return
	}
	respondOK(w, "분석이 완료되었습니다.", analysis)
}

// Trend reports the multi-year direction for one company
// GET /api/v2/indicators/trend/{corp}?name&year&fs_div
func (h *IndicatorHandler) Trend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	corpCode := mux.Vars(r)["corp"]

	year, err := queryYear(r, "year")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	fsDiv, err := queryFsDiv(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	report, err := h.trend.Trend(ctx, corpCode, year, fsDiv)
	if err != nil {
		h.logger.WithError(err).WithField("corp_code", corpCode).Error("Trend analysis failed")
		respondServiceError(w, err)
		return
	}
	if report.CorpName == "" {
		report.CorpName = r.URL.Query().Get("name")
	}
	respondOK(w, "트렌드 분석 완료", report)
}
