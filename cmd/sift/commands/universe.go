package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/sift/internal/universe"
	"github.com/wonny/sift/pkg/httputil"
	"github.com/wonny/sift/pkg/logger"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Show the resolved symbol universe",
	Long: `Resolves and prints the symbol universe a screening pass would use.

Resolution order: universe file, constituents URL, built-in list.

Example:
  go run ./cmd/sift universe
  go run ./cmd/sift universe --file universe.yaml`,
	RunE: runUniverse,
}

var universeFileFlag string

func init() {
	rootCmd.AddCommand(universeCmd)

	// Flags
	universeCmd.Flags().StringVar(&universeFileFlag, "file", "", "universe YAML file (overrides config)")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if universeFileFlag != "" {
		cfg.Screen.UniverseFile = universeFileFlag
	}

	log := logger.New(cfg)
	client := httputil.NewWithTimeout(cfg, log, cfg.Feed.Timeout)

	src, err := universe.Resolve(cfg, client, nil, log)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	symbols, err := src.Symbols(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch universe: %w", err)
	}

	fmt.Printf("Benchmark: %s\n", src.Benchmark())
	fmt.Printf("Symbols:   %d\n", len(symbols))
	fmt.Println()
	for _, symbol := range symbols {
		fmt.Printf("  %s\n", symbol)
	}

	return nil
}
