package cmd

import (
	"errors"
	"fmt"

	"github.com/oakline-data/jobpulse/internal/audit"
	"github.com/oakline-data/jobpulse/internal/cli"
	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/source"

	"github.com/spf13/cobra"
)

var flagTolerance float64

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check allocated revenue against the audit snapshots",
	RunE:  runReconcile,
}

func init() {
	reconcileCmd.Flags().Float64Var(&flagTolerance, "tolerance", audit.DefaultTolerance, "Absolute difference treated as rounding noise")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(_ *cobra.Command, _ []string) error {
	loaded, err := loadFacts()
	if err != nil {
		return err
	}

	auditRows, err := readRevenueAudit(loaded.DataDir)
	if err != nil {
		return err
	}

	discrepancies := audit.ReconcileRevenue(loaded.Timesheet, auditRows, flagTolerance)
	fmt.Println()
	if len(discrepancies) == 0 {
		fmt.Printf("  %s allocated revenue matches the audit snapshot (%d job/month pairs checked)\n",
			cli.Good("OK"), len(auditRows))
	} else {
		var rows [][]string
		for _, d := range discrepancies {
			rows = append(rows, []string{
				d.JobNo, d.MonthKey,
				cli.FormatCurrency(d.Allocated),
				cli.FormatCurrency(d.Audited),
				cli.Bad(cli.FormatCurrency(d.Diff())),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Revenue discrepancies",
			Headers: []string{"Job", "Month", "Allocated", "Audited", "Diff"},
			Rows:    rows,
		}))
	}

	unalloc, err := readUnallocatedAudit(loaded.DataDir)
	if err != nil {
		return err
	}
	if total := audit.TotalUnallocated(unalloc); total != 0 {
		fmt.Printf("\n  Unallocated revenue on record: %s across %d months\n",
			cli.Warn(cli.FormatCurrency(total)), len(unalloc))
	}

	if len(discrepancies) > 0 {
		return fmt.Errorf("%d job/month pairs outside tolerance", len(discrepancies))
	}
	return nil
}

// readRevenueAudit loads the revenue audit table; an absent file is an empty
// snapshot, not an error.
func readRevenueAudit(dir string) ([]model.RevenueAuditRow, error) {
	path, err := source.ResolveTable(dir, source.TableRevenueAudit)
	if err != nil {
		var missing *source.MissingInputError
		if errors.As(err, &missing) {
			progress("No revenue audit table, skipping allocation check")
			return nil, nil
		}
		return nil, err
	}
	return source.ReadRevenueAudit(path)
}

func readUnallocatedAudit(dir string) ([]model.UnallocatedAuditRow, error) {
	path, err := source.ResolveTable(dir, source.TableUnallocatedAudit)
	if err != nil {
		var missing *source.MissingInputError
		if errors.As(err, &missing) {
			return nil, nil
		}
		return nil, err
	}
	return source.ReadUnallocatedAudit(path)
}
