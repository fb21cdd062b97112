package cmd

import (
	"fmt"
	"sort"

	"github.com/oakline-data/jobpulse/internal/cli"
	"github.com/oakline-data/jobpulse/internal/marts"

	"github.com/spf13/cobra"
)

var martsCmd = &cobra.Command{
	Use:   "marts",
	Short: "Build the derived mart tables and write them to disk",
	RunE:  runMarts,
}

func init() {
	rootCmd.AddCommand(martsCmd)
}

func runMarts(_ *cobra.Command, _ []string) error {
	loaded, err := loadFacts()
	if err != nil {
		return err
	}

	params := marts.Params{
		Company:                 loaded.Config.General.Company,
		RecencyDays:             loaded.Config.Analysis.ActiveJobRecencyDays,
		WeeksInWindow:           loaded.Config.Analysis.WeeksInWindow,
		UtilTarget:              loaded.Config.Analysis.UtilTarget,
		SevereOverrunMultiplier: loaded.Config.Analysis.SevereOverrunMultiplier,
	}

	tables, err := marts.BuildAll(loaded.Timesheet, loaded.JobTask, params)
	if err != nil {
		return err
	}
	if err := marts.Write(loaded.DataDir, tables); err != nil {
		return err
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows [][]string
	for _, name := range names {
		rows = append(rows, []string{name, cli.FormatNumber(int64(len(tables[name].Rows)))})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Marts written to " + loaded.DataDir + "/marts",
		Headers: []string{"Mart", "Rows"},
		Rows:    rows,
	}))
	return nil
}
