package cmd

import (
	"fmt"
	"sort"

	"github.com/oakline-data/jobpulse/internal/cli"
	"github.com/oakline-data/jobpulse/internal/rollup"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Profitability summary by department and month",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	loaded, err := loadFacts()
	if err != nil {
		return err
	}

	if len(loaded.Timesheet) == 0 {
		fmt.Println("\n  No timesheet rows found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("JOB PROFITABILITY  " + loaded.Config.General.Company))
	fmt.Println()

	dims := []rollup.Dimension{rollup.Department, rollup.Month}
	rows := rollup.Profitability(loaded.Timesheet, dims)

	var cells [][]string
	var totalHours, totalCost, totalRevenue float64
	monthlyRevenue := make(map[string]float64)
	for _, r := range rows {
		margin := cli.FormatCurrency(r.Margin)
		if r.Margin < 0 {
			margin = cli.Bad(margin)
		}
		cells = append(cells, []string{
			r.Key.Department, r.Key.Month,
			cli.FormatHours(r.Hours),
			cli.FormatCurrency(r.Cost),
			cli.FormatCurrency(r.Revenue),
			margin,
			cli.FormatOptPercent(r.MarginPct),
			cli.FormatOptRate(r.RealisedRate),
		})
		totalHours += r.Hours
		totalCost += r.Cost
		totalRevenue += r.Revenue
		monthlyRevenue[r.Key.Month] += r.Revenue
	}

	totalMargin := totalRevenue - totalCost
	cells = append(cells, []string{"---"})
	totalRow := []string{"TOTAL", "",
		cli.FormatHours(totalHours),
		cli.FormatCurrency(totalCost),
		cli.FormatCurrency(totalRevenue),
		cli.FormatCurrency(totalMargin),
	}
	if totalRevenue != 0 {
		totalRow = append(totalRow, cli.FormatPercent(totalMargin/totalRevenue))
	} else {
		totalRow = append(totalRow, cli.Missing)
	}
	if totalHours != 0 {
		totalRow = append(totalRow, cli.FormatRate(totalRevenue/totalHours))
	} else {
		totalRow = append(totalRow, cli.Missing)
	}
	cells = append(cells, totalRow)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Department", "Month", "Hours", "Cost", "Revenue", "Margin", "Margin %", "Rate"},
		Rows:    cells,
	}))

	months := make([]string, 0, len(monthlyRevenue))
	for m := range monthlyRevenue {
		months = append(months, m)
	}
	sort.Strings(months)
	series := make([]float64, len(months))
	for i, m := range months {
		series[i] = monthlyRevenue[m]
	}
	if len(series) > 1 {
		fmt.Printf("\n  Revenue trend  %s  %s\n",
			cli.RenderSparkline(series),
			cli.Muted(months[0]+" to "+months[len(months)-1]))
	}

	return nil
}
