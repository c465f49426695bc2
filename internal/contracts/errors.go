package contracts

import "errors"

// 도메인 공통 에러. API 핸들러는 이 에러들로 HTTP 상태 코드를 결정하고,
// 수집 단계는 ErrUpstreamUnavailable 계열만 재시도한다.
var (
	// ErrMissingData 해당 (기업, 연도, 기준)에 재무 데이터 없음
	ErrMissingData = errors.New("financial data not available")

	// ErrUpstreamUnavailable 외부 데이터 소스(DART/Naver) 일시 장애 (재시도 대상)
	ErrUpstreamUnavailable = errors.New("upstream data source unavailable")

	// ErrPriceUnavailable 가격 데이터 조회 실패 (백테스트에서 종목 단위 에러로 기록)
	ErrPriceUnavailable = errors.New("price data unavailable")

	// ErrCompanyNotFound 유니버스에 없는 기업
	ErrCompanyNotFound = errors.New("company not found")

	// ErrInvalidRequest 요청 파라미터 검증 실패
	ErrInvalidRequest = errors.New("invalid request")
)
