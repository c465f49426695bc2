package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/external/dart"
	"github.com/wonny/buffett/backend/internal/external/naver"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// sectorFetchDelay spaces out Naver page fetches during backfill
const sectorFetchDelay = 150 * time.Millisecond

// Service maintains the screening universe: DART registry sync, static
// tradability filtering, and Naver sector backfill.
type Service struct {
	dart   *dart.Client
	repo   contracts.CompanyRepository
	naver  *naver.Client
	logger *logger.Logger
}

// NewService creates a new universe Service
func NewService(dartClient *dart.Client, repo contracts.CompanyRepository, naverClient *naver.Client, log *logger.Logger) *Service {
	return &Service{
		dart:   dartClient,
		repo:   repo,
		naver:  naverClient,
		logger: log,
	}
}

// Sync refreshes the company registry from the DART corp-code file.
// 상장사만 저장한다 (종목코드 없는 법인은 스크리닝 대상이 아님).
// ⭐ SSOT: 기업 레지스트리 동기화는 여기서만
func (s *Service) Sync(ctx context.Context) (saved, total int, err error) {
	companies, err := s.dart.FetchCorpRegistry(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch corp registry: %w", err)
	}

	listed := make([]*contracts.Company, 0, 4000)
	for i := range companies {
		if companies[i].StockCode == "" {
			continue
		}
		listed = append(listed, &companies[i])
	}

	saved, err = s.repo.UpsertBatch(ctx, listed)
	if err != nil {
		return saved, len(companies), fmt.Errorf("upsert companies: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"total":  len(companies),
		"listed": len(listed),
		"saved":  saved,
	}).Info("Company registry synced")
	return saved, len(companies), nil
}

// Build assembles the tradable universe from the stored registry.
// limit > 0 caps the number of companies returned (테스트/부분 실행용).
func (s *Service) Build(ctx context.Context, limit int) (*contracts.Universe, error) {
	listed, err := s.repo.ListListed(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	u := &contracts.Universe{
		Date:     time.Now(),
		Excluded: make(map[string]string),
	}

	for _, c := range listed {
		if reason := ExclusionReason(c.CorpName, c.StockCode); reason != "" {
			u.Excluded[c.CorpCode] = reason
			continue
		}
		u.Companies = append(u.Companies, c)
		if limit > 0 && len(u.Companies) >= limit {
			break
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"tradable": len(u.Companies),
		"excluded": len(u.Excluded),
	}).Info("Universe built")
	return u, nil
}

// BackfillSectors fills missing sector/market fields by scraping the
// Naver company page. limit > 0 caps how many companies are looked up
// in one pass.
func (s *Service) BackfillSectors(ctx context.Context, limit int) (int, error) {
	listed, err := s.repo.ListListed(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("list companies: %w", err)
	}

	var updates []*contracts.Company
	for _, c := range listed {
		if ctx.Err() != nil {
			break
		}
		if c.Sector != "" {
			continue
		}
		if !Tradable(c.CorpName, c.StockCode) {
			continue
		}

		profile, err := s.naver.FetchProfile(ctx, c.StockCode)
		if err != nil {
			s.logger.WithFields(map[string]interface{}{
				"corp_code":  c.CorpCode,
				"stock_code": c.StockCode,
				"error":      err.Error(),
			}).Debug("Sector lookup failed")
			continue
		}

		c.Sector = profile.Sector
		if profile.Market != "" {
			c.Market = profile.Market
		}
		c.UpdatedAt = time.Now()
		updates = append(updates, c)

		if limit > 0 && len(updates) >= limit {
			break
		}
		time.Sleep(sectorFetchDelay) // 크롤링 간격
	}

	if len(updates) == 0 {
		return 0, ctx.Err()
	}

	saved, err := s.repo.UpsertBatch(ctx, updates)
	if err != nil {
		return saved, fmt.Errorf("save sectors: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"updated": saved,
	}).Info("Sector backfill finished")
	return saved, ctx.Err()
}
