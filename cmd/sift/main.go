package main

import (
	"os"

	"github.com/wonny/sift/cmd/sift/commands"
)

// main is the entry point for the sift CLI
// ⭐ unified CLI entry point: go run ./cmd/sift [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
