package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/api"
	"github.com/wonny/buffett/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 스크리닝/분석/백테스트 엔드포인트 제공
- 수집 진행 상황 웹소켓 스트림 제공

Endpoints:
  GET  /health                          - Health check
  GET  /api/v2/screener                 - 우량주 스크리닝
  POST /api/v2/indicators/fetch         - 재무제표 일괄 수집
  POST /api/v2/indicators/analyze       - 전체 재분석
  GET  /api/v2/indicators/analysis/{corp} - 기업 분석 상세
  GET  /api/v2/indicators/trend/{corp}  - 다년도 추세
  GET  /api/v2/backtest/validate        - 전략 백테스트

Example:
  go run ./cmd/buffett api
  go run ./cmd/buffett api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Buffett API Server ===")

	// 1. Wire the service graph (config, logger, db, redis, clients)
	deps, err := initDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	// Override port if flag is set
	if apiPort != "" {
		deps.cfg.Port = apiPort
	}
	log := deps.log

	log.WithFields(map[string]interface{}{
		"port": deps.cfg.Port,
		"env":  deps.cfg.Env,
	}).Info("Initializing API server")

	// 2. Progress hub (수집 진행 상황 웹소켓 브로드캐스트)
	progress := handlers.NewProgressHub(log)

	// 3. Fetcher bound to the hub
	fetcher := deps.newFetcher(progress)

	// 4. Handlers
	screenerHandler := handlers.NewScreenerHandler(deps.screener, log)
	indicatorHandler := handlers.NewIndicatorHandler(fetcher, deps.screener, deps.trend, log)
	companyHandler := handlers.NewCompanyHandler(deps.store.Companies, deps.screener, log)
	backtestHandler := handlers.NewBacktestHandler(deps.backtest, log)

	// 5. Router
	router := api.NewRouter(screenerHandler, indicatorHandler, companyHandler, backtestHandler, progress, log)

	// 6. Server
	server := api.New(deps.cfg, log, router)

	// 7. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", deps.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/v2/screener")
	fmt.Println("  POST /api/v2/indicators/fetch")
	fmt.Println("  POST /api/v2/indicators/analyze")
	fmt.Println("  GET  /api/v2/indicators/analysis/{corp}")
	fmt.Println("  GET  /api/v2/indicators/trend/{corp}")
	fmt.Println("  GET  /api/v2/indicators/years")
	fmt.Println("  DELETE /api/v2/indicators/cache")
	fmt.Println("  GET  /api/v2/indicators/progress (ws)")
	fmt.Println("  GET  /api/v2/companies/search")
	fmt.Println("  GET  /api/v2/companies/sectors")
	fmt.Println("  GET  /api/v2/companies/compare")
	fmt.Println("  GET  /api/v2/backtest/validate")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
