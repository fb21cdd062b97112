package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oakline-data/jobpulse/internal/config"
	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/source"
	"github.com/oakline-data/jobpulse/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDataDir string
	flagNoCache bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobpulse",
	Short: "Job profitability analytics CLI",
	Long:  "Analyze job profitability from timesheet and quote fact tables: margins, utilisation, quote delivery, and more.",
	RunE:  runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Data directory holding processed/ input tables")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// dataDir resolves the data directory: flag, then config, then cwd.
func dataDir(cfg config.Config) string {
	if flagDataDir != "" {
		return flagDataDir
	}
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	return "."
}

// loadedFacts is the shared result of the fact loading path.
type loadedFacts struct {
	Timesheet []model.TimesheetFact
	JobTask   []model.JobTaskMonthFact
	DataDir   string
	Config    config.Config
}

// loadFacts is the shared data loading path used by all analysis commands.
// Uses the SQLite cache when available for fast subsequent runs.
func loadFacts() (*loadedFacts, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dir := dataDir(cfg)

	tsPath, err := source.ResolveTable(dir, source.TableTimesheet)
	if err != nil {
		return nil, err
	}
	jtPath, err := source.ResolveTable(dir, source.TableJobTaskMonth)
	if err != nil {
		return nil, err
	}

	var cache *store.Cache
	if !flagNoCache {
		cache, err = store.Open(config.CachePath(dir))
		if err != nil {
			// Cache open failed — fall back to uncached parsing.
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
			cache = nil
		} else {
			defer cache.Close()
		}
	}
	ttl := time.Duration(cfg.General.CacheTTLSeconds) * time.Second

	ts, err := loadTimesheet(cache, tsPath, ttl)
	if err != nil {
		return nil, err
	}
	jt, err := loadJobTask(cache, jtPath, ttl)
	if err != nil {
		return nil, err
	}

	return &loadedFacts{Timesheet: ts, JobTask: jt, DataDir: dir, Config: cfg}, nil
}

func loadTimesheet(cache *store.Cache, path string, ttl time.Duration) ([]model.TimesheetFact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		fresh, err := cache.Fresh(path, info, ttl)
		if err == nil && fresh {
			facts, err := cache.LoadTimesheetFacts(path)
			if err == nil {
				progress("Loaded %d timesheet rows from cache", len(facts))
				return facts, nil
			}
		}
	}

	facts, result, err := source.ReadTimesheetFacts(path)
	if err != nil {
		return nil, err
	}
	warnDegraded(source.TableTimesheet, result)
	progress("Parsed %d timesheet rows", len(facts))

	if cache != nil {
		if err := cache.SaveTimesheetFacts(path, info, facts); err != nil && !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Cache write failed: %v\n", err)
		}
	}
	return facts, nil
}

func loadJobTask(cache *store.Cache, path string, ttl time.Duration) ([]model.JobTaskMonthFact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		fresh, err := cache.Fresh(path, info, ttl)
		if err == nil && fresh {
			facts, err := cache.LoadJobTaskFacts(path)
			if err == nil {
				progress("Loaded %d job/task rows from cache", len(facts))
				return facts, nil
			}
		}
	}

	facts, result, err := source.ReadJobTaskMonthFacts(path)
	if err != nil {
		return nil, err
	}
	warnDegraded(source.TableJobTaskMonth, result)
	progress("Parsed %d job/task rows", len(facts))

	if cache != nil {
		if err := cache.SaveJobTaskFacts(path, info, facts); err != nil && !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Cache write failed: %v\n", err)
		}
	}
	return facts, nil
}

func warnDegraded(table string, result source.SchemaResult) {
	if flagQuiet || !result.Degraded() {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s: optional columns absent, some features degraded: %s\n",
		table, strings.Join(result.MissingSoft, ", "))
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
