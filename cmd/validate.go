package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakline-data/jobpulse/internal/cli"
	"github.com/oakline-data/jobpulse/internal/config"
	"github.com/oakline-data/jobpulse/internal/source"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the input tables against the expected schemas",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dir := dataDir(cfg)

	type check struct {
		spec     source.TableSpec
		required bool
	}
	checks := []check{
		{source.TimesheetSpec, true},
		{source.JobTaskMonthSpec, true},
		{source.RevenueAuditSpec, false},
		{source.UnallocatedAuditSpec, false},
	}

	var rows [][]string
	failures := 0
	for _, c := range checks {
		status := cli.Good("ok")
		detail := ""

		path, err := source.ResolveTable(dir, c.spec.Name)
		if err != nil {
			if c.required {
				status = cli.Bad("missing")
				failures++
			} else {
				status = cli.Warn("absent")
				detail = "optional table, skipped"
			}
			rows = append(rows, []string{c.spec.Name, status, detail})
			continue
		}

		result, err := source.ValidateTable(path, c.spec)
		if err != nil {
			var schemaErr *source.SchemaError
			if errors.As(err, &schemaErr) {
				status = cli.Bad("invalid")
				detail = "missing columns: " + strings.Join(schemaErr.Missing, ", ")
			} else {
				status = cli.Bad("unreadable")
				detail = err.Error()
			}
			failures++
		} else if result.Degraded() {
			status = cli.Warn("degraded")
			detail = "soft columns absent: " + strings.Join(result.MissingSoft, ", ")
		}
		rows = append(rows, []string{c.spec.Name, status, detail})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Input validation  " + dir,
		Headers: []string{"Table", "Status", "Detail"},
		Rows:    rows,
	}))

	if failures > 0 {
		return fmt.Errorf("%d input table(s) failed validation", failures)
	}
	return nil
}
