package store

import (
	"github.com/wonny/buffett/backend/pkg/database"
)

// upsertBatchSize caps rows per transaction on bulk writes
const upsertBatchSize = 500

// Store bundles the Postgres repositories behind the contracts interfaces.
// ⭐ SSOT: 저장소 인스턴스 생성은 여기서만
type Store struct {
	Companies  *CompanyRepo
	Statements *StatementRepo
	Analyses   *AnalysisRepo
	Screener   *ScreenerRepo
	History    *RunHistoryRepo
}

// New creates the repository set on a shared connection pool
func New(db *database.DB) *Store {
	pool := db.Pool
	return &Store{
		Companies:  NewCompanyRepo(pool),
		Statements: NewStatementRepo(pool),
		Analyses:   NewAnalysisRepo(pool),
		Screener:   NewScreenerRepo(pool),
		History:    NewRunHistoryRepo(pool),
	}
}
