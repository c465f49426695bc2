package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "buffett",
	Short: "Buffett - 한국 주식 가치투자 스크리너",
	Long: `Buffett Screener CLI

DART 전자공시 재무제표 기반 우량주 스크리닝 시스템.
수집, 분석, 스크리닝, 백테스트를 하나의 CLI로 실행합니다.

Usage:
  go run ./cmd/buffett [command]

Examples:
  go run ./cmd/buffett api
  go run ./cmd/buffett fetch --year 2024
  go run ./cmd/buffett screen --year 2024
  go run ./cmd/buffett backtest --year 2021 --hold 3`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug 로그 출력")
}
