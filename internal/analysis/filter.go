package analysis

import (
	"fmt"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// Filter applies the hard disqualification rules.
// ⭐ SSOT: 투자 부적격 판정은 여기서만
// 점수와 무관하게 하나라도 걸리면 투자부적격이다. 판정은 채점 후에
// 실행되며 원점수는 진단용으로 보존된다.
type Filter struct {
	logger *logger.Logger
}

// NewFilter creates a new disqualification filter
func NewFilter(log *logger.Logger) *Filter {
	return &Filter{logger: log}
}

// FilterResult holds the verdict and the ordered, deduplicated reasons
type FilterResult struct {
	Passed  bool
	Reasons []string
}

// Check runs every rule in order and collects all failures
func (f *Filter) Check(stmt *contracts.RawStatement) FilterResult {
	curr := &stmt.Current
	prev := &stmt.Previous

	var reasons []string
	seen := make(map[string]bool)
	add := func(reason string) {
		if !seen[reason] {
			seen[reason] = true
			reasons = append(reasons, reason)
		}
	}

	// 규칙 1: 현금흐름의 법칙
	// 2년 연속 영업현금흐름이 순이익에 미달하면 장부상 이익을 의심한다
	if curr.OperatingCashFlow < curr.NetIncome && prev.OperatingCashFlow < prev.NetIncome {
		add("2년 연속 영업현금흐름 < 순이익 (이익의 질 의심)")
	}

	// 규칙 2: 좀비 기업 판독
	if curr.FinanceCost > 0 {
		coverage := curr.OperatingIncome / curr.FinanceCost
		if coverage < 1.0 {
			add(fmt.Sprintf("이자보상배율 %.1f배 (이자도 못 갚는 좀비 기업)", coverage))
		}
	}

	// 규칙 3: 자본잠식
	if curr.TotalEquity <= 0 {
		add("자본잠식 (자기자본 <= 0)")
	}

	// 규칙 4: 2년 연속 적자
	if curr.NetIncome < 0 && prev.NetIncome < 0 {
		add("2년 연속 적자")
	}

	// 규칙 5: 2년 연속 영업이익 마이너스
	if curr.OperatingIncome < 0 && prev.OperatingIncome < 0 {
		add("2년 연속 영업이익 마이너스 (본업 실패)")
	}

	// 규칙 6: 매출액 없음 또는 급감
	if curr.Revenue <= 0 {
		add("매출액 없음")
	} else if prev.Revenue > 0 {
		change := (curr.Revenue - prev.Revenue) / prev.Revenue * 100
		if change < -50 {
			add(fmt.Sprintf("매출액 급감 (%.1f%% - 사업 축소)", change))
		}
	}

	result := FilterResult{
		Passed:  len(reasons) == 0,
		Reasons: reasons,
	}

	if !result.Passed {
		f.logger.WithFields(map[string]interface{}{
			"corp_code": stmt.CorpCode,
			"reasons":   reasons,
		}).Debug("Company disqualified by hard filter")
	}

	return result
}
