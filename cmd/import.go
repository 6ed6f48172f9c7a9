package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/moneyplan/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagImportDryRun bool

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import budgets and expenses from JSON exports",
	Long: "Import every *.json export under dir (default: general.import_dir from the config).\n" +
		"Files unchanged since the last import are skipped; records are upserted by id.",
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Parse and report without writing to the database")
	rootCmd.AddCommand(importCmd)
}

func importProgress(current, total int) {
	if flagQuiet {
		return
	}
	if current%50 == 0 || current == total {
		fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	dir := cfg.General.ImportDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no directory given and general.import_dir is not set")
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", dir)
	}

	if flagImportDryRun {
		result, err := pipeline.Load(dir, importProgress)
		if err != nil {
			return err
		}
		if !flagQuiet && result.TotalFiles > 0 {
			fmt.Fprintln(os.Stderr)
		}
		fmt.Printf("  %d files: %d budgets, %d expenses would be imported\n",
			result.TotalFiles, len(result.Budgets), len(result.Expenses))
		printImportProblems(result.ParseErrors, result.FileErrors)
		return nil
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := pipeline.Import(cmd.Context(), dir, st, importProgress)
	if err != nil {
		return err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintln(os.Stderr)
	}

	fmt.Printf("  Imported %d files (%d unchanged): %d budgets, %d expenses\n",
		result.Imported, result.Unchanged, len(result.Budgets), len(result.Expenses))
	printImportProblems(result.ParseErrors, result.FileErrors)
	return nil
}

func printImportProblems(parseErrors, fileErrors int) {
	if parseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d records skipped as invalid\n", parseErrors)
	}
	if fileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be parsed\n", fileErrors)
	}
}
