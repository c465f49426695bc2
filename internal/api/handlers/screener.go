package handlers

import (
	"fmt"
	"net/http"

	"github.com/wonny/buffett/backend/internal/screener"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// ScreenerHandler handles screening API endpoints
// ⭐ SSOT: 스크리너 API 핸들러는 이 구조체에서만
type ScreenerHandler struct {
	screener *screener.Service
	logger   *logger.Logger
}

// NewScreenerHandler creates a new screener handler
func NewScreenerHandler(svc *screener.Service, log *logger.Logger) *ScreenerHandler {
	return &ScreenerHandler{screener: svc, logger: log}
}

// Scan runs (or serves) the value screen for a business year
// GET /api/v2/screener?year&fs_div&limit&use_cache
func (h *ScreenerHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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
	limit, err := queryInt(r, "limit", 100, maxLimit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	useCache := queryBool(r, "use_cache", true)

	result, err := h.screener.Scan(ctx, year, fsDiv, limit, useCache)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"year":   year,
			"fs_div": fsDiv,
		}).Error("Screener scan failed")
		respondServiceError(w, err)
		return
	}

	var message string
	if result.FromCache {
		message = fmt.Sprintf("[캐시] %d개 우량주 / %d개 필터링 탈락 (저장된 %d개 중)",
			result.Passed, result.Filtered, result.Analyzed)
	} else {
		message = fmt.Sprintf("%d개 우량주 / %d개 필터링 탈락 / %d개 데이터 없음",
			result.Passed, result.Filtered, result.NoData)
	}
	respondOK(w, message, result)
}

// Years lists the business years that have stored analyses
// GET /api/v2/indicators/years
func (h *ScreenerHandler) Years(w http.ResponseWriter, r *http.Request) {
	years, err := h.screener.Years(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list analysis years")
		respondServiceError(w, err)
		return
	}
	respondOK(w, fmt.Sprintf("%d개 연도 데이터 있음", len(years)), map[string]interface{}{
		"years": years,
	})
}

// ClearCache drops every stored screening artifact for (year, basis)
// DELETE /api/v2/indicators/cache?year&fs_div
func (h *ScreenerHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
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

	removed, err := h.screener.ClearCache(r.Context(), year, fsDiv)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"year":   year,
			"fs_div": fsDiv,
		}).Error("Failed to clear screener cache")
		respondServiceError(w, err)
		return
	}

	respondOK(w, fmt.Sprintf("%d년 %s 분석 %d건 삭제", year, fsDiv, removed), map[string]interface{}{
		"year":    year,
		"fs_div":  fsDiv,
		"removed": removed,
	})
}
