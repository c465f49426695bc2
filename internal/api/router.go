package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/buffett/backend/internal/api/handlers"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(
	screenerH *handlers.ScreenerHandler,
	indicatorH *handlers.IndicatorHandler,
	companyH *handlers.CompanyHandler,
	backtestH *handlers.BacktestHandler,
	progress *handlers.ProgressHub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v2
	api := r.PathPrefix("/api/v2").Subrouter()

	// Screener
	api.HandleFunc("/screener", screenerH.Scan).Methods("GET")

	// Indicators (collection + per-company analysis)
	api.HandleFunc("/indicators/fetch", indicatorH.Fetch).Methods("POST")
	api.HandleFunc("/indicators/analyze", indicatorH.Analyze).Methods("POST")
	api.HandleFunc("/indicators/analysis/{corp}", indicatorH.Analysis).Methods("GET")
	api.HandleFunc("/indicators/trend/{corp}", indicatorH.Trend).Methods("GET")
	api.HandleFunc("/indicators/years", screenerH.Years).Methods("GET")
	api.HandleFunc("/indicators/cache", screenerH.ClearCache).Methods("DELETE")
	api.HandleFunc("/indicators/progress", progress.Subscribe).Methods("GET")

	// Companies
	api.HandleFunc("/companies/search", companyH.Search).Methods("GET")
	api.HandleFunc("/companies/sectors", companyH.Sectors).Methods("GET")
	api.HandleFunc("/companies/compare", companyH.Compare).Methods("GET")

	// Backtest
	api.HandleFunc("/backtest/validate", backtestH.Validate).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "buffett-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]interface{}{
						"success": false,
						"message": "Internal server error",
						"data":    nil,
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
