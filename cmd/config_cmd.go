// Package cmd implements the moneyplan CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/moneyplan/internal/config"

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
	dbPath := config.DBPath(cfg)
	if flagDB != "" {
		dbPath = flagDB
	}
	fmt.Printf("    Database:         %s%s\n", dbPath, envNote(config.EnvDB))
	fmt.Printf("    Import directory: %s\n", valueOr(cfg.General.ImportDir, "not set"))
	fmt.Println()

	fmt.Println("  [Budget]")
	fmt.Printf("    Default alert threshold: %.0f%%\n", cfg.Budget.DefaultAlertThreshold)
	fmt.Printf("    Default period:          %s\n", cfg.Budget.DefaultPeriod)
	fmt.Println()

	fmt.Println("  [Streak]")
	fmt.Printf("    Show badge: %v\n", cfg.Streak.ShowBadge)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s%s\n", config.ServerAddr(cfg), envNote(config.EnvAddr))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `moneyplan setup` to reconfigure.")
	return nil
}

func envNote(name string) string {
	if os.Getenv(name) != "" {
		return "  (from $" + name + ")"
	}
	return ""
}
