package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// Response is the envelope every endpoint returns.
// ⭐ SSOT: API 응답 포맷은 이 구조체에서만
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respondJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// respondOK wraps data in a success envelope
func respondOK(w http.ResponseWriter, message string, data interface{}) {
	respondJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// respondFail sends a failure envelope with the given status code
func respondFail(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Success: false, Message: message})
}

// respondServiceError maps domain errors onto HTTP status codes.
// 검증 실패 400, 데이터 없음 404, 외부 소스 장애 502, 나머지 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contracts.ErrInvalidRequest):
		respondFail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contracts.ErrMissingData), errors.Is(err, contracts.ErrCompanyNotFound):
		respondFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, contracts.ErrUpstreamUnavailable), errors.Is(err, contracts.ErrPriceUnavailable):
		respondFail(w, http.StatusBadGateway, err.Error())
	default:
		respondFail(w, http.StatusInternalServerError, err.Error())
	}
}
