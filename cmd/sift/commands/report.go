package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/sift/internal/output"
	"github.com/wonny/sift/pkg/logger"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the latest saved screening report",
	Long: `Renders the most recent report artifact from the results directory.

Example:
  go run ./cmd/sift report
  go run ./cmd/sift report --json`,
	RunE: runReport,
}

var reportJSON bool

func init() {
	rootCmd.AddCommand(reportCmd)

	// Flags
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	store := output.NewStore(cfg.Screen.ResultsDir, log)

	report, err := store.Latest()
	if errors.Is(err, output.ErrNoReports) {
		fmt.Println("No saved reports. Run 'sift screen' first.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load latest report: %w", err)
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	output.NewRenderer(os.Stdout).Render(report)
	return nil
}
