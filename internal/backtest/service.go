package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/external/naver"
	"github.com/wonny/buffett/backend/pkg/logger"
)

const (
	defaultTopN         = 20
	defaultHoldingYears = 3
)

// PriceSource is the slice of the Naver client the backtest needs.
type PriceSource interface {
	ReturnOver(ctx context.Context, symbol string, from, to time.Time) (*naver.ReturnRate, error)
}

// Service replays past screening picks against realized prices.
// ⭐ SSOT: 전략 검증(백테스트)은 여기서만
//
// 매수일은 기준연도 사업보고서 제출 마감 직후인 다음해 4월 1일로 고정한다.
// 그 시점에야 스크리너가 쓰는 재무제표가 전부 공시되어 있기 때문이다.
type Service struct {
	runs    contracts.ScreenerRepository
	prices  PriceSource
	history contracts.RunHistoryRepository

	logger *logger.Logger
}

// NewService creates the backtester. history may be nil.
func NewService(runs contracts.ScreenerRepository, prices PriceSource, history contracts.RunHistoryRepository, log *logger.Logger) *Service {
	return &Service{
		runs:    runs,
		prices:  prices,
		history: history,
		logger:  log.WithField("module", "backtest"),
	}
}

// Validate simulates buying the stored screening run's top picks and
// holding them for the configured number of years.
func (s *Service) Validate(ctx context.Context, cfg contracts.BacktestConfig) (*contracts.BacktestRun, error) {
	if !cfg.FsDiv.IsValid() {
		return nil, fmt.Errorf("%w: fs_div %q", contracts.ErrInvalidRequest, cfg.FsDiv)
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaultTopN
	}
	if cfg.HoldingYears <= 0 {
		cfg.HoldingYears = defaultHoldingYears
	}

	started := time.Now()

	stored, err := s.runs.LatestRun(ctx, cfg.Year, cfg.FsDiv)
	if err != nil {
		return nil, err
	}
	if stored == nil || len(stored.Ranked) == 0 {
		return nil, fmt.Errorf("%w: %d년 %s 스크리닝 결과 없음 (먼저 스크리너 실행 필요)",
			contracts.ErrMissingData, cfg.Year, cfg.FsDiv)
	}
	picks := stored.Top(cfg.TopN)

	buyDate, sellDate := holdingWindow(cfg, started)

	run := &contracts.BacktestRun{
		Config:   cfg,
		BuyDate:  buyDate,
		SellDate: sellDate,
		RanAt:    started,
	}

	for _, pick := range picks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// 비상장 전환 등으로 종목코드가 없으면 체결 자체가 불가능하다
		if pick.StockCode == "" || pick.StockCode == "N/A" {
			continue
		}

		pos := contracts.BacktestPosition{
			Rank:       pick.Rank,
			CorpName:   pick.CorpName,
			StockCode:  pick.StockCode,
			TotalScore: pick.TotalScore,
			Signal:     pick.Signal,
		}

		rr, err := s.prices.ReturnOver(ctx, pick.StockCode, buyDate, sellDate)
		if err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"corp_name":  pick.CorpName,
				"stock_code": pick.StockCode,
			}).Warn("Price data unavailable for backtest position")
			pos.Error = "주가 데이터 없음"
		} else {
			pos.BuyDate = rr.StartDate.Format("2006-01-02")
			pos.BuyPrice = rr.StartPrice
			pos.SellDate = rr.EndDate.Format("2006-01-02")
			pos.SellPrice = rr.EndPrice
			pos.ReturnRate = rr.Rate
		}
		run.Positions = append(run.Positions, pos)
	}

	run.Stats = s.summarize(ctx, run)
	s.record(ctx, run, started)

	s.logger.WithFields(map[string]interface{}{
		"year":          cfg.Year,
		"fs_div":        cfg.FsDiv,
		"top_n":         cfg.TopN,
		"holding_years": cfg.HoldingYears,
		"valid_stocks":  run.Stats.ValidStocks,
		"avg_return":    run.Stats.AvgReturn,
		"alpha":         run.Stats.Alpha,
	}).Info("Backtest complete")
	return run, nil
}

// holdingWindow computes the simulated buy/sell dates. A sell date in
// the future is cut back to today.
func holdingWindow(cfg contracts.BacktestConfig, now time.Time) (buy, sell time.Time) {
	buyYear := cfg.Year + 1
	buy = time.Date(buyYear, time.April, 1, 0, 0, 0, 0, time.Local)

	sellYear := buyYear + cfg.HoldingYears
	if sellYear > now.Year() {
		sell = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
		return buy, sell
	}
	sell = time.Date(sellYear, time.April, 1, 0, 0, 0, 0, time.Local)
	return buy, sell
}

// summarize aggregates position outcomes and the KOSPI benchmark.
// 벤치마크 조회 실패는 통계를 0으로 둘 뿐 백테스트를 중단하지 않는다.
func (s *Service) summarize(ctx context.Context, run *contracts.BacktestRun) contracts.BacktestStats {
	stats := contracts.BacktestStats{TotalStocks: len(run.Positions)}

	var totalReturn float64
	for _, pos := range run.Positions {
		if !pos.Valid() {
			continue
		}
		stats.ValidStocks++
		totalReturn += pos.ReturnRate
		if pos.Win() {
			stats.WinCount++
		}
	}

	if stats.ValidStocks > 0 {
		stats.AvgReturn = round2(totalReturn / float64(stats.ValidStocks))
		stats.WinRate = round2(float64(stats.WinCount) / float64(stats.ValidStocks) * 100)
	}

	if kospi, err := s.prices.ReturnOver(ctx, naver.IndexKOSPI, run.BuyDate, run.SellDate); err != nil {
		s.logger.WithError(err).Warn("KOSPI benchmark unavailable, alpha assumes zero benchmark")
	} else {
		stats.BenchmarkReturn = kospi.Rate
	}
	stats.Alpha = round2(stats.AvgReturn - stats.BenchmarkReturn)

	return stats
}

func (s *Service) record(ctx context.Context, run *contracts.BacktestRun, started time.Time) {
	if s.history == nil {
		return
	}
	detail, _ := json.Marshal(map[string]interface{}{
		"top_n":         run.Config.TopN,
		"holding_years": run.Config.HoldingYears,
		"total_stocks":  run.Stats.TotalStocks,
		"valid_stocks":  run.Stats.ValidStocks,
		"avg_return":    run.Stats.AvgReturn,
		"win_rate":      run.Stats.WinRate,
		"alpha":         run.Stats.Alpha,
	})
	rec := &contracts.RunRecord{
		Kind:       contracts.RunKindBacktest,
		Name:       "backtest validate",
		Year:       run.Config.Year,
		FsDiv:      run.Config.FsDiv,
		Success:    true,
		Detail:     string(detail),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.logger.WithError(err).Debug("Failed to record backtest run history")
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
