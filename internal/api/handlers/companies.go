package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/screener"
	"github.com/wonny/buffett/backend/internal/trend"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// CompanyHandler handles company lookup and comparison endpoints
// ⭐ SSOT: 기업 API 핸들러는 이 구조체에서만
type CompanyHandler struct {
	companies contracts.CompanyRepository
	screener  *screener.Service
	logger    *logger.Logger
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companies contracts.CompanyRepository, scr *screener.Service, log *logger.Logger) *CompanyHandler {
	return &CompanyHandler{
		companies: companies,
		screener:  scr,
		logger:    log,
	}
}

// Search finds companies by name or stock code
// GET /api/v2/companies/search?q&limit
func (h *CompanyHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondFail(w, http.StatusBadRequest, "q 파라미터 필요 (기업명 또는 종목코드)")
		return
	}
	limit, err := queryInt(r, "limit", 10, 50)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	results, err := h.companies.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.WithError(err).WithField("query", query).Error("Company search failed")
		respondServiceError(w, err)
		return
	}
	respondOK(w, fmt.Sprintf("%d개 기업 검색됨", len(results)), results)
}

// Sectors lists the distinct sectors in the registry
// GET /api/v2/companies/sectors
func (h *CompanyHandler) Sectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.companies.ListSectors(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list sectors")
		respondServiceError(w, err)
		return
	}
	respondOK(w, fmt.Sprintf("%d개 업종", len(sectors)), sectors)
}

// Compare runs the full analysis for two companies and diffs them
// GET /api/v2/companies/compare?corp1&corp2&year&fs_div
func (h *CompanyHandler) Compare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	corp1 := r.URL.Query().Get("corp1")
	corp2 := r.URL.Query().Get("corp2")
	if corp1 == "" || corp2 == "" {
		respondFail(w, http.StatusBadRequest, "corp1, corp2 파라미터 필요 (기업 고유번호)")
		return
	}
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

	// 비교는 등록된 기업끼리만. on-demand 수집으로 미지의 기업을
	// 합성해서 비교하면 한쪽만 데이터가 채워진 왜곡 결과가 나온다.
	companyA, err := h.companies.Get(ctx, corp1)
	if err != nil {
		h.respondLookupError(w, corp1, err)
		return
	}
	companyB, err := h.companies.Get(ctx, corp2)
	if err != nil {
		h.respondLookupError(w, corp2, err)
		return
	}

	analysisA, err := h.screener.Analyze(ctx, companyA.CorpCode, companyA.CorpName, year, fsDiv)
	if err != nil {
		h.logger.WithError(err).WithField("corp_code", corp1).Error("Comparison analysis failed")
		respondServiceError(w, err)
		return
	}
	analysisB, err := h.screener.Analyze(ctx, companyB.CorpCode, companyB.CorpName, year, fsDiv)
	if err != nil {
		h.logger.WithError(err).WithField("corp_code", corp2).Error("Comparison analysis failed")
		respondServiceError(w, err)
		return
	}

	respondOK(w, "비교 분석 완료", trend.Compare(year, fsDiv, analysisA, analysisB))
}

func (h *CompanyHandler) respondLookupError(w http.ResponseWriter, corpCode string, err error) {
	if errors.Is(err, contracts.ErrCompanyNotFound) {
		respondFail(w, http.StatusNotFound, fmt.Sprintf("기업을 찾을 수 없습니다: %s", corpCode))
		return
	}
	h.logger.WithError(err).WithField("corp_code", corpCode).Error("Company lookup failed")
	respondServiceError(w, err)
}
