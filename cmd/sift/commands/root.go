package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wonny/sift/pkg/config"
)

var (
	// Global flags
	configFile string
	envName    string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Sift - staged stock screener",
	Long: `Sift Unified CLI

Staged screening pipeline over a configurable symbol universe:
candle feed, short-circuiting filter stages, weighted scoring,
trade setup derivation.

Usage:
  go run ./cmd/sift [command]

Examples:
  go run ./cmd/sift screen
  go run ./cmd/sift screen --strategy breakout --date 2025-06-02
  go run ./cmd/sift api
  go run ./cmd/sift scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to load (default is .env)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose console logging")
}

// loadConfig applies the global flag overrides, then reads the
// environment.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		if err := godotenv.Overload(configFile); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	if envName != "" {
		os.Setenv("ENV", envName)
	}
	if verbose {
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("LOG_FORMAT", "console")
	}
	return config.Load()
}
