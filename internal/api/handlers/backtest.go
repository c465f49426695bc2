package handlers

import (
	"fmt"
	"net/http"

	"github.com/wonny/buffett/backend/internal/backtest"
	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// BacktestHandler handles strategy validation endpoints
// ⭐ SSOT: 백테스트 API 핸들러는 이 구조체에서만
type BacktestHandler struct {
	backtester *backtest.Service
	logger     *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(svc *backtest.Service, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{backtester: svc, logger: log}
}

// Validate replays a stored screening run against realized prices
// GET /api/v2/backtest/validate?year&fs_div&top_n&holding_years
func (h *BacktestHandler) Validate(w http.ResponseWriter, r *http.Request) {
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
	topN, err := queryInt(r, "top_n", 20, maxLimit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	holdingYears, err := queryInt(r, "holding_years", 3, maxHoldingYears)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	run, err := h.backtester.Validate(ctx, contracts.BacktestConfig{
		Year:         year,
		FsDiv:        fsDiv,
		TopN:         topN,
		HoldingYears: holdingYears,
	})
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"year":   year,
			"fs_div": fsDiv,
		}).Error("Backtest failed")
		respondServiceError(w, err)
		return
	}

	respondOK(w, fmt.Sprintf("%d년 상위 %d개 종목 백테스팅 완료", year, topN), run)
}
