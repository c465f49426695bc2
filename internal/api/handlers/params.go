package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// 검증 한계값. 요청이 이 범위를 벗어나면 작업을 시작하기 전에 400.
const (
	minYear = 2015

	maxLimit        = 4000
	maxBatchSize    = 500
	maxConcurrent   = 500
	maxHoldingYears = 10
)

// queryYear parses and bounds the business year parameter.
// 당해 연도 보고서는 다음해 3월에야 나오지만, 연중 분석을 위해 현재
// 연도까지는 허용한다.
func queryYear(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s 파라미터 필요", contracts.ErrInvalidRequest, name)
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q 숫자가 아님", contracts.ErrInvalidRequest, name, raw)
	}
	current := time.Now().Year()
	if year < minYear || year > current {
		return 0, fmt.Errorf("%w: %s=%d 허용 범위 [%d, %d]", contracts.ErrInvalidRequest, name, year, minYear, current)
	}
	return year, nil
}

// queryFsDiv parses the statement basis, defaulting to 연결(CFS).
func queryFsDiv(r *http.Request) (contracts.FsDiv, error) {
	raw := r.URL.Query().Get("fs_div")
	if raw == "" {
		return contracts.FsDivConsolidated, nil
	}
	fsDiv := contracts.FsDiv(raw)
	if !fsDiv.IsValid() {
		return "", fmt.Errorf("%w: fs_div=%q (CFS 또는 OFS)", contracts.ErrInvalidRequest, raw)
	}
	return fsDiv, nil
}

// queryInt parses a bounded positive integer with a default.
func queryInt(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q 숫자가 아님", contracts.ErrInvalidRequest, name, raw)
	}
	if v < 1 || v > max {
		return 0, fmt.Errorf("%w: %s=%d 허용 범위 [1, %d]", contracts.ErrInvalidRequest, name, v, max)
	}
	return v, nil
}

// queryBool parses a boolean flag with a default.
func queryBool(r *http.Request, name string, def bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}

// boundYear validates a year taken from a JSON body.
func boundYear(year int) error {
	current := time.Now().Year()
	if year < minYear || year > current {
		return fmt.Errorf("%w: year=%d 허용 범위 [%d, %d]", contracts.ErrInvalidRequest, year, minYear, current)
	}
	return nil
}

// boundFsDiv validates a basis taken from a JSON body, defaulting empty to CFS.
func boundFsDiv(fsDiv contracts.FsDiv) (contracts.FsDiv, error) {
	if fsDiv == "" {
		return contracts.FsDivConsolidated, nil
	}
	if !fsDiv.IsValid() {
		return "", fmt.Errorf("%w: fs_div=%q (CFS 또는 OFS)", contracts.ErrInvalidRequest, fsDiv)
	}
	return fsDiv, nil
}

// boundRange validates a bounded positive integer from a JSON body,
// zero meaning "use the default".
func boundRange(name string, v, def, max int) (int, error) {
	if v == 0 {
		return def, nil
	}
	if v < 1 || v > max {
		return 0, fmt.Errorf("%w: %s=%d 허용 범위 [1, %d]", contracts.ErrInvalidRequest, name, v, max)
	}
	return v, nil
}
