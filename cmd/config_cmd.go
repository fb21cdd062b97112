// Package cmd implements the jobpulse CLI commands.
package cmd

import (
	"fmt"

	"github.com/oakline-data/jobpulse/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Company:        %s\n", cfg.General.Company)
	fmt.Printf("    Data directory: %s\n", dataDir(cfg))
	fmt.Printf("    Cache TTL:      %ds\n", cfg.General.CacheTTLSeconds)
	fmt.Println()

	fmt.Println("  [Analysis]")
	fmt.Printf("    Active job recency:        %d days\n", cfg.Analysis.ActiveJobRecencyDays)
	fmt.Printf("    Active staff window:       %d months\n", cfg.Analysis.ActiveStaffMonths)
	fmt.Printf("    Recency half-life:         %d months\n", cfg.Analysis.RecencyHalfLifeMonths)
	fmt.Printf("    Severe overrun multiplier: %.2f\n", cfg.Analysis.SevereOverrunMultiplier)
	fmt.Printf("    Weeks in window:           %d\n", cfg.Analysis.WeeksInWindow)
	fmt.Printf("    Utilisation target:        %.0f%%\n", cfg.Analysis.UtilTarget*100)
	return nil
}
