package screener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/universe"
	"github.com/wonny/buffett/backend/pkg/logger"
	"github.com/wonny/buffett/backend/pkg/redis"
)

const (
	// 표시용 목록 절단. 전체 내역은 analyses 테이블에 남는다.
	filteredDisplayMax = 20
	noDataDisplayMax   = 30

	// 재계산 병합 잠금: 전체 스캔 한 번보다 넉넉하게
	refreshLockTTL = 10 * time.Minute
)

// Service runs the Buffett screen over collected statements and serves
// results through the two-tier cache (Redis hot entry → Postgres run).
// ⭐ SSOT: 스크리닝 실행은 여기서만
type Service struct {
	analyzer   contracts.Analyzer
	builder    contracts.StatementBuilder
	companies  contracts.CompanyRepository
	statements contracts.StatementRepository
	analyses   contracts.AnalysisRepository
	runs       contracts.ScreenerRepository
	history    contracts.RunHistoryRepository
	cache      *redis.Cache
	lock       *redis.Lock

	logger *logger.Logger
}

// NewService creates the screener. history may be nil when run history
// recording is not wanted (tests, one-off CLI runs).
func NewService(
	analyzer contracts.Analyzer,
	builder contracts.StatementBuilder,
	companies contracts.CompanyRepository,
	statements contracts.StatementRepository,
	analyses contracts.AnalysisRepository,
	runs contracts.ScreenerRepository,
	history contracts.RunHistoryRepository,
	cache *redis.Cache,
	lock *redis.Lock,
	log *logger.Logger,
) *Service {
	return &Service{
		analyzer:   analyzer,
		builder:    builder,
		companies:  companies,
		statements: statements,
		analyses:   analyses,
		runs:       runs,
		history:    history,
		cache:      cache,
		lock:       lock,
		logger:     log.WithField("module", "screener"),
	}
}

// Scan answers a screening request for (year, basis).
// 캐시 경로: Redis 핫 엔트리 → Postgres 보관 결과 → 재계산.
// useCache=false거나 캐시가 요청 limit을 만족하지 못하면 재계산하며,
// 같은 (year, basis)의 동시 재계산은 잠금으로 한 번에 병합된다.
func (s *Service) Scan(ctx context.Context, year int, fsDiv contracts.FsDiv, limit int, useCache bool) (*contracts.ScreenerResult, error) {
	if !fsDiv.IsValid() {
		return nil, fmt.Errorf("%w: fs_div %q", contracts.ErrInvalidRequest, fsDiv)
	}

	key := redis.ScreenerKey(year, string(fsDiv))

	if useCache {
		if res := s.fromHotCache(ctx, key, limit); res != nil {
			return res, nil
		}
		if res := s.fromStoredRun(ctx, key, year, fsDiv, limit); res != nil {
			return res, nil
		}
	}

	token, acquired, err := s.lock.Acquire(ctx, key, refreshLockTTL)
	if err != nil {
		// 잠금 없이도 결과는 낼 수 있다. 병합만 포기한다.
		s.logger.WithError(err).Warn("Screener refresh lock unavailable")
		return s.compute(ctx, year, fsDiv, limit)
	}

	if !acquired {
		// 다른 요청이 계산 중: 끝나길 기다렸다가 그 결과를 읽는다
		if err := s.lock.WaitReleased(ctx, key); err != nil {
			return nil, err
		}
		if res := s.fromHotCache(ctx, key, limit); res != nil {
			return res, nil
		}
		if res := s.fromStoredRun(ctx, key, year, fsDiv, limit); res != nil {
			return res, nil
		}
		// 계산 주체가 더 좁은 범위를 계산했거나 실패했다: 직접 계산
	} else {
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.lock.Release(releaseCtx, key, token); err != nil {
				s.logger.WithError(err).Debug("Screener lock release failed")
			}
		}()
	}

	return s.compute(ctx, year, fsDiv, limit)
}

// fromHotCache serves the request from the Redis entry when it exists
// and was built wide enough
func (s *Service) fromHotCache(ctx context.Context, key string, limit int) *contracts.ScreenerResult {
	var cached contracts.ScreenerResult
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WithError(err).Debug("Screener hot cache read failed")
		return nil
	}
	if !found || !cached.Satisfies(limit) {
		return nil
	}
	return serveCached(&cached, limit)
}

// fromStoredRun falls back to the Postgres run and rewarms Redis on a hit
func (s *Service) fromStoredRun(ctx context.Context, key string, year int, fsDiv contracts.FsDiv, limit int) *contracts.ScreenerResult {
	run, err := s.runs.LatestRun(ctx, year, fsDiv)
	if err != nil {
		s.logger.WithError(err).Error("Stored screener run lookup failed")
		return nil
	}
	if run == nil || !run.Satisfies(limit) {
		return nil
	}

	if err := s.cache.Set(ctx, key, run, redis.TTLNone); err != nil {
		s.logger.WithError(err).Debug("Screener hot cache rewarm failed")
	}
	return serveCached(run, limit)
}

// serveCached returns a display copy trimmed to the requested limit.
// 순위는 1부터 연속이므로 앞부분 절단만으로 충분하다.
func serveCached(run *contracts.ScreenerResult, limit int) *contracts.ScreenerResult {
	out := *run
	out.Ranked = run.Top(limit)
	out.FromCache = true
	return &out
}

// compute runs the full pipeline: universe walk → exclusion gate →
// analysis per statement → ranking → persist (analyses, run, hot cache)
func (s *Service) compute(ctx context.Context, year int, fsDiv contracts.FsDiv, limit int) (*contracts.ScreenerResult, error) {
	started := time.Now()

	companies, err := s.companies.ListListed(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	if len(companies) == 0 {
		return nil, fmt.Errorf("%w: 기업 레지스트리가 비어 있다 (universe 동기화 필요)", contracts.ErrMissingData)
	}

	stmts, err := s.statements.ListByYear(ctx, year, fsDiv, 0)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	byCorp := make(map[string]*contracts.RawStatement, len(stmts))
	for _, stmt := range stmts {
		byCorp[stmt.CorpCode] = stmt
	}

	var (
		ranked   []contracts.RankedCompany
		filtered []contracts.FilteredCompany
		noData   []string
		batch    []*contracts.CompanyAnalysis
	)

	for _, c := range companies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 1단계: 거래 부적합 종목 분리 (스팩/우선주/SPV/관리종목)
		if reason := universe.ExclusionReason(c.CorpName, c.StockCode); reason != "" {
			filtered = append(filtered, contracts.FilteredCompany{
				CorpCode: c.CorpCode,
				CorpName: c.CorpName,
				Reasons:  []string{"유니버스 제외: " + reason},
			})
			continue
		}

		stmt, ok := byCorp[c.CorpCode]
		if !ok {
			noData = append(noData, c.CorpName)
			continue
		}

		// 2단계: 재무제표 분석
		a := s.analyzer.Analyze(stmt)
		if a.Sector == "" {
			a.Sector = c.Sector
		}
		batch = append(batch, a)

		if a.FilterPassed {
			ranked = append(ranked, rankedEntry(a))
		} else {
			filtered = append(filtered, contracts.FilteredCompany{
				CorpCode: a.CorpCode,
				CorpName: a.CorpName,
				RawScore: a.RawScore,
				Reasons:  a.FilterReasons,
			})
		}
	}

	sortRanked(ranked)
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].RawScore != filtered[j].RawScore {
			return filtered[i].RawScore > filtered[j].RawScore
		}
		return filtered[i].CorpCode < filtered[j].CorpCode
	})

	result := &contracts.ScreenerResult{
		Year:        year,
		FsDiv:       fsDiv,
		Limit:       limit,
		Analyzed:    len(ranked) + len(filtered) + len(noData),
		Passed:      len(ranked),
		Filtered:    len(filtered),
		NoData:      len(noData),
		Ranked:      ranked,
		FilteredOut: truncateFiltered(filtered, filteredDisplayMax),
		NoDataCorps: truncateStrings(noData, noDataDisplayMax),
		GeneratedAt: time.Now(),
	}
	result.ElapsedMS = time.Since(started).Milliseconds()

	s.persist(ctx, result, batch, started)

	s.logger.WithFields(map[string]interface{}{
		"year":     year,
		"fs_div":   fsDiv,
		"analyzed": result.Analyzed,
		"passed":   result.Passed,
		"filtered": result.Filtered,
		"no_data":  result.NoData,
		"elapsed":  time.Since(started).String(),
	}).Info("Screener scan complete")

	return result, nil
}

// persist writes the per-company analyses, the aggregate run, the hot
// cache entry and the run history. 계산은 이미 끝났으므로 저장 실패가
// 응답을 막지는 않는다.
func (s *Service) persist(ctx context.Context, result *contracts.ScreenerResult, batch []*contracts.CompanyAnalysis, started time.Time) {
	if err := s.analyses.SaveBatch(ctx, batch); err != nil {
		s.logger.WithError(err).Error("Failed to persist analyses")
	}
	if err := s.runs.SaveRun(ctx, result); err != nil {
		s.logger.WithError(err).Error("Failed to persist screener run")
	}

	key := redis.ScreenerKey(result.Year, string(result.FsDiv))
	if err := s.cache.Set(ctx, key, result, redis.TTLNone); err != nil {
		s.logger.WithError(err).Debug("Screener hot cache write failed")
	}

	if s.history == nil {
		return
	}
	detail, _ := json.Marshal(map[string]interface{}{
		"analyzed": result.Analyzed,
		"passed":   result.Passed,
		"filtered": result.Filtered,
		"no_data":  result.NoData,
	})
	rec := &contracts.RunRecord{
		Kind:       contracts.RunKindScreen,
		Name:       "screener scan",
		Year:       result.Year,
		FsDiv:      result.FsDiv,
		Success:    true,
		Detail:     string(detail),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.logger.WithError(err).Debug("Failed to record screener run history")
	}
}

// Analyze scores one company, building its statement on demand when it
// has not been collected yet. 조회 전용이 아니라 write-through: 새로 만든
// 재무제표와 분석 결과는 바로 저장된다.
func (s *Service) Analyze(ctx context.Context, corpCode, corpName string, year int, fsDiv contracts.FsDiv) (*contracts.CompanyAnalysis, error) {
	if !fsDiv.IsValid() {
		return nil, fmt.Errorf("%w: fs_div %q", contracts.ErrInvalidRequest, fsDiv)
	}

	company, err := s.companies.Get(ctx, corpCode)
	if err != nil {
		if !errors.Is(err, contracts.ErrCompanyNotFound) {
			return nil, err
		}
		company = &contracts.Company{CorpCode: corpCode, CorpName: corpName}
	}
	if corpName != "" && company.CorpName == "" {
		company.CorpName = corpName
	}

	stmt, err := s.statements.Get(ctx, corpCode, year, fsDiv)
	if errors.Is(err, contracts.ErrMissingData) {
		stmt, err = s.builder.Build(ctx, company, year, fsDiv)
		if err != nil {
			return nil, err
		}
		if saveErr := s.statements.Save(ctx, stmt); saveErr != nil {
			s.logger.WithError(saveErr).WithField("corp_code", corpCode).Error("Failed to persist on-demand statement")
		}
	} else if err != nil {
		return nil, err
	}

	analysis := s.analyzer.Analyze(stmt)
	if analysis.Sector == "" {
		analysis.Sector = company.Sector
	}
	if err := s.analyses.Save(ctx, analysis); err != nil {
		s.logger.WithError(err).WithField("corp_code", corpCode).Error("Failed to persist analysis")
	}

	return analysis, nil
}

// Years lists the years that have stored analyses, newest first
func (s *Service) Years(ctx context.Context) ([]int, error) {
	return s.analyses.ListYears(ctx)
}

// ClearCache drops every stored artifact for (year, basis): the Redis
// hot entry, the aggregate run and the per-company analyses. Returns the
// number of analysis rows removed.
func (s *Service) ClearCache(ctx context.Context, year int, fsDiv contracts.FsDiv) (int64, error) {
	if !fsDiv.IsValid() {
		return 0, fmt.Errorf("%w: fs_div %q", contracts.ErrInvalidRequest, fsDiv)
	}

	key := redis.ScreenerKey(year, string(fsDiv))
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.WithError(err).Debug("Screener hot cache delete failed")
	}
	if err := s.runs.DeleteRun(ctx, year, fsDiv); err != nil {
		return 0, err
	}

	removed, err := s.analyses.DeleteByYear(ctx, year, fsDiv)
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"year":    year,
		"fs_div":  fsDiv,
		"removed": removed,
	}).Info("Cleared screener cache")

	return removed, nil
}

func rankedEntry(a *contracts.CompanyAnalysis) contracts.RankedCompany {
	return contracts.RankedCompany{
		CorpCode:   a.CorpCode,
		CorpName:   a.CorpName,
		StockCode:  a.StockCode,
		Sector:     a.Sector,
		BaseScore:  a.BaseScore,
		BonusScore: a.BonusScore,
		TotalScore: a.TotalScore,
		Signal:     a.Signal,
		Grade:      a.Grade,
		Rating:     a.Rating,
		DataSource: a.DataSource,
	}
}

// sortRanked orders by score descending, corp code ascending on ties
func sortRanked(ranked []contracts.RankedCompany) {
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].CorpCode < ranked[j].CorpCode
	})
}

func truncateFiltered(list []contracts.FilteredCompany, max int) []contracts.FilteredCompany {
	if len(list) <= max {
		return list
	}
	return list[:max]
}

func truncateStrings(list []string, max int) []string {
	if len(list) <= max {
		return list
	}
	return list[:max]
}
