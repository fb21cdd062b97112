package cmd

import (
	"fmt"

	"github.com/oakline-data/jobpulse/internal/cli"
	"github.com/oakline-data/jobpulse/internal/metrics"

	"github.com/spf13/cobra"
)

var (
	flagBenchDepartment string
	flagBenchCategory   string
	flagBenchWindow     int
	flagBenchUnweighted bool
	flagBenchAllStaff   bool
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Benchmark quoted hours and amounts per task for a cohort",
	Long:  "Compute recency-weighted median quoted hours and amounts per task for a department/category cohort, as a basis for pricing new jobs.",
	RunE:  runBenchmark,
}

func init() {
	benchmarkCmd.Flags().StringVar(&flagBenchDepartment, "department", "", "Department to benchmark (required)")
	benchmarkCmd.Flags().StringVar(&flagBenchCategory, "category", "", "Job category to benchmark (required)")
	benchmarkCmd.Flags().IntVar(&flagBenchWindow, "window", 0, "Trailing window in months (0 = all history)")
	benchmarkCmd.Flags().BoolVar(&flagBenchUnweighted, "unweighted", false, "Disable recency weighting")
	benchmarkCmd.Flags().BoolVar(&flagBenchAllStaff, "all-staff", false, "Include staff with no recent hours")
	_ = benchmarkCmd.MarkFlagRequired("department")
	_ = benchmarkCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(benchmarkCmd)
}

func runBenchmark(_ *cobra.Command, _ []string) error {
	loaded, err := loadFacts()
	if err != nil {
		return err
	}

	bench := metrics.BenchmarkQuote(loaded.Timesheet, metrics.QuoteBenchmarkParams{
		Department:        flagBenchDepartment,
		Category:          flagBenchCategory,
		WindowMonths:      flagBenchWindow,
		RecencyWeighted:   !flagBenchUnweighted,
		ActiveStaffOnly:   !flagBenchAllStaff,
		HalfLifeMonths:    loaded.Config.Analysis.RecencyHalfLifeMonths,
		ActiveStaffMonths: loaded.Config.Analysis.ActiveStaffMonths,
	})

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("QUOTE BENCHMARK  %s / %s", flagBenchDepartment, flagBenchCategory)))
	fmt.Println()

	if len(bench.Tasks) == 0 {
		fmt.Println("  No matching work in the cohort.")
		return nil
	}

	var rows [][]string
	for _, t := range bench.Tasks {
		rows = append(rows, []string{
			t.TaskName,
			cli.FormatOptHours(t.MedianQuotedHours),
			cli.FormatOptCurrency(t.MedianQuotedAmount),
			cli.FormatOptHours(t.MedianHours),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Task", "Median Quoted", "Median Amount", "Median Actual"},
		Rows:    rows,
	}))

	fmt.Println()
	weighting := "recency-weighted"
	if !bench.Cohort.RecencyWeighted {
		weighting = "unweighted"
	}
	fmt.Printf("  Cohort: %d jobs, %d active staff, %s (%s)\n",
		bench.Cohort.Jobs, bench.Cohort.ActiveStaff, bench.Cohort.DateSpan, weighting)
	fmt.Printf("  Cost rate %s   Realised rate %s\n",
		cli.FormatOptRate(bench.CostRate), cli.FormatOptRate(bench.RealisedRate))
	return nil
}
