package main

import (
	"os"

	"github.com/wonny/buffett/backend/cmd/buffett/commands"
)

// main is the entry point for the Buffett CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/buffett [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
