package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// strategiesCmd represents the strategies command
var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List available strategy profiles",
	Long: `Lists the registered strategy profiles and their key settings.

Includes the built-in profiles plus the SCREEN_PROFILE_FILE overlay,
when one is configured.

Example:
  go run ./cmd/sift strategies`,
	RunE: runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	fmt.Println("Available strategies:")
	fmt.Println()

	for _, name := range registry.Names() {
		profile, err := registry.Get(name)
		if err != nil {
			return err
		}

		marker := "  "
		if name == cfg.Screen.Strategy {
			marker = "* "
		}

		fmt.Printf("%s%s\n", marker, name)
		fmt.Printf("    max candidates: %d\n", profile.MaxCandidates)
		fmt.Printf("    timeframes:     %s\n", strings.Join(profile.Timeframes, ", "))
		fmt.Printf("    stages:         %s\n", strings.Join(profile.Stages, ", "))
		fmt.Printf("    trade setups:   %t\n", profile.DeriveSetups)
		fmt.Println()
	}

	fmt.Println("* default strategy (SCREEN_STRATEGY)")
	return nil
}
