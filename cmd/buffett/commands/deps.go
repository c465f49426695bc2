package commands

import (
	"context"
	"fmt"

	"github.com/wonny/buffett/backend/internal/analysis"
	"github.com/wonny/buffett/backend/internal/backtest"
	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/external/dart"
	"github.com/wonny/buffett/backend/internal/external/naver"
	"github.com/wonny/buffett/backend/internal/fetch"
	"github.com/wonny/buffett/backend/internal/screener"
	"github.com/wonny/buffett/backend/internal/store"
	"github.com/wonny/buffett/backend/internal/trend"
	"github.com/wonny/buffett/backend/internal/universe"
	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/database"
	"github.com/wonny/buffett/backend/pkg/httputil"
	"github.com/wonny/buffett/backend/pkg/logger"
	"github.com/wonny/buffett/backend/pkg/redis"
)

// appDeps is the shared service graph behind every subcommand
type appDeps struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	cache *redis.Client

	store *store.Store

	dartClient  *dart.Client
	naverClient *naver.Client
	builder     *dart.Builder

	universe *universe.Service
	screener *screener.Service
	trend    *trend.Service
	backtest *backtest.Service
}

// Close releases pooled connections
func (d *appDeps) Close() {
	if d.cache != nil {
		d.cache.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

// newFetcher builds a collection pipeline. progress may be nil (CLI 실행).
func (d *appDeps) newFetcher(progress contracts.ProgressPublisher) *fetch.Fetcher {
	return fetch.NewFetcher(d.builder, d.store.Statements, d.universe, progress, d.log)
}

// initDeps loads config and wires the full service graph
func initDeps() (*appDeps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database and ensure schema
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := store.EnsureSchema(context.Background(), db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	// 4. Redis. 없어도 동작하며 캐시만 꺼진다.
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, cache disabled")
		degraded := *cfg
		degraded.Redis.Enabled = false
		rdb, _ = redis.New(&degraded)
	}

	// 5. HTTP client + external API clients
	httpClient := httputil.New(cfg, log)
	if rdb.Enabled() {
		// api와 scheduler가 따로 떠도 네이버 호출 총량은 같이 센다
		httpClient.WithRateLimiter(redis.NewRateLimiter(rdb, "buffett"), redis.NaverRateLimit)
	}
	naverClient := naver.NewClient(httpClient, log)
	dartClient := dart.NewClient(cfg.DART.APIKey, cfg.DART.RateLimitPerMin, log)
	if cfg.DART.APIKey == "" {
		log.Warn("DART_API_KEY is empty, statement collection will fail")
	}

	// 6. Repositories
	st := store.New(db)

	// 7. Statement builder (DART 재무제표 → RawStatement)
	builder := dart.NewBuilder(dartClient, log)

	// 8. Domain services
	uni := universe.NewService(dartClient, st.Companies, naverClient, log)
	analyzer := analysis.NewDefaultAnalyzer(log)
	scr := screener.NewService(
		analyzer, builder,
		st.Companies, st.Statements, st.Analyses, st.Screener, st.History,
		redis.NewCache(rdb, "buffett"), redis.NewLock(rdb, "buffett"),
		log,
	)
	trd := trend.NewService(st.Statements, st.Companies, builder, log)
	bt := backtest.NewService(st.Screener, naverClient, st.History, log)

	return &appDeps{
		cfg:         cfg,
		log:         log,
		db:          db,
		cache:       rdb,
		store:       st,
		dartClient:  dartClient,
		naverClient: naverClient,
		builder:     builder,
		universe:    uni,
		screener:    scr,
		trend:       trd,
		backtest:    bt,
	}, nil
}
