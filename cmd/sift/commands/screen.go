package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sift/internal/output"
	"github.com/wonny/sift/pkg/logger"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run a screening pass",
	Long: `Runs the staged screening pipeline over the configured universe.

The pass fetches candles for every universe symbol, applies the
strategy's filter stages in order, scores the survivors, and derives
trade setups for strategies that request them. The report is printed
to the console and saved under the results directory.

Example:
  go run ./cmd/sift screen
  go run ./cmd/sift screen --strategy breakout
  go run ./cmd/sift screen --date 2025-06-02 --top 5
  go run ./cmd/sift screen --json > report.json`,
	RunE: runScreen,
}

var (
	screenStrategy string
	screenDate     string
	screenTop      int
	screenJSON     bool
	screenNoSave   bool
	screenUniverse string
	screenProfile  string
)

func init() {
	rootCmd.AddCommand(screenCmd)

	// Flags
	screenCmd.Flags().StringVar(&screenStrategy, "strategy", "", "strategy profile (default from SCREEN_STRATEGY)")
	screenCmd.Flags().StringVar(&screenDate, "date", "", "session date YYYY-MM-DD (default today)")
	screenCmd.Flags().IntVar(&screenTop, "top", 0, "cap the number of ranked candidates")
	screenCmd.Flags().BoolVar(&screenJSON, "json", false, "print the report as JSON")
	screenCmd.Flags().BoolVar(&screenNoSave, "no-save", false, "skip writing the report artifact")
	screenCmd.Flags().StringVar(&screenUniverse, "universe", "", "universe YAML file (overrides config)")
	screenCmd.Flags().StringVar(&screenProfile, "profile", "", "strategy overlay YAML file (overrides config)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	// 1. Load config with flag overrides
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if screenStrategy != "" {
		cfg.Screen.Strategy = screenStrategy
	}
	if screenUniverse != "" {
		cfg.Screen.UniverseFile = screenUniverse
	}
	if screenProfile != "" {
		cfg.Screen.ProfileFile = screenProfile
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Wire dependencies
	deps, err := initDeps(cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	// 4. Resolve the strategy profile
	profile, err := deps.registry.Get(cfg.Screen.Strategy)
	if err != nil {
		return err
	}
	if screenTop > 0 {
		profile.MaxCandidates = screenTop
	}

	scr, err := deps.newScreener(profile)
	if err != nil {
		return err
	}

	var asOf time.Time
	if screenDate != "" {
		asOf, err = time.Parse("2006-01-02", screenDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", screenDate)
		}
	}

	// 5. Run the pass. Ctrl+C cancels and yields a partial report error.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := scr.Run(ctx, asOf)
	if err != nil {
		return fmt.Errorf("screening run: %w", err)
	}

	// 6. Persist and render
	if !screenNoSave {
		if path, err := deps.store.Save(report); err != nil {
			log.WithError(err).Warn("Failed to save report artifact")
		} else {
			fmt.Printf("Report saved to %s\n", path)
		}
	}

	if screenJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	output.NewRenderer(os.Stdout).Render(report)
	return nil
}
