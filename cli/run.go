package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/reserveflow/config"
	"github.com/rustyeddy/reserveflow/journal"
	"github.com/rustyeddy/reserveflow/market"
	"github.com/rustyeddy/reserveflow/sim"
	"github.com/rustyeddy/reserveflow/stats"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation and optionally export the results",
	Long: `Run executes a daily simulation over the given horizon.

By default the baseline configuration is used; pass a scenario name or a
configuration file to change the setup.

Example:
  reserveflow run --months 12 --scenario crisis --csv results.csv`,
	RunE: runSimulation,
}

var (
	runConfigPath string
	runScenario   string
	runMonths     int
	runSeed       int64
	runCSVPath    string
	runDBPath     string
	runSummary    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to a YAML or JSON configuration file")
	runCmd.Flags().StringVarP(&runScenario, "scenario", "s", "", "scenario name (baseline, crisis, dedollarization, inflation_surge)")
	runCmd.Flags().IntVarP(&runMonths, "months", "m", 12, "simulation horizon in months")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed override")
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "write daily results to this CSV file")
	runCmd.Flags().StringVarP(&runDBPath, "db", "d", "", "write daily results to this SQLite database")
	runCmd.Flags().BoolVar(&runSummary, "summary", true, "print summary statistics after the run")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.RandomSeed = runSeed
	}

	s := sim.New(cfg)

	var tbl market.Table
	if runScenario != "" {
		fmt.Printf("Running scenario %q for %d months (seed %d)\n", runScenario, runMonths, cfg.RandomSeed)
		var err error
		tbl, err = s.RunScenario(runScenario, runMonths)
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("Running simulation for %d months (seed %d)\n", runMonths, cfg.RandomSeed)
		tbl = runWithProgress(s, runMonths)
	}
	fmt.Printf("Simulated %d days\n", len(tbl))

	if err := export(tbl); err != nil {
		return err
	}

	if runSummary {
		printSummary(tbl, cfg)
	}
	return nil
}

// runWithProgress drives the simulation a day at a time so we can report
// progress every 30 simulated days.
func runWithProgress(s *sim.Simulation, months int) market.Table {
	s.Initialize()

	days := months * 30
	end := s.Now().AddDate(0, 0, days)
	day := 0
	for s.Now().Before(end) {
		s.Advance()
		s.Step()
		day++
		if day%30 == 0 {
			fmt.Printf("  day %d/%d (%s)\n", day, days, s.Now().Format("2006-01-02"))
		}
	}
	return s.Results()
}

func export(tbl market.Table) error {
	if runCSVPath != "" {
		j, err := journal.NewCSV(runCSVPath)
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}
		if err := journal.RecordAll(j, tbl); err != nil {
			j.Close()
			return fmt.Errorf("write csv: %w", err)
		}
		if err := j.Close(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", runCSVPath)
	}

	if runDBPath != "" {
		j, err := journal.NewSQLite(runDBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		if err := journal.RecordAll(j, tbl); err != nil {
			j.Close()
			return fmt.Errorf("write db: %w", err)
		}
		if err := j.Close(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", runDBPath)
	}
	return nil
}

func printSummary(tbl market.Table, cfg *config.Config) {
	sum := stats.Summarize(tbl, cfg.MajorCurrencies)

	fmt.Printf("\nExchange rates:\n")
	for _, c := range cfg.MajorCurrencies {
		fx, ok := sum.FX[c]
		if !ok {
			continue
		}
		fmt.Printf("  %s: final %.4f, return %+.2f%%, vol %.1f%%\n",
			c, fx.FinalRate, fx.TotalReturnPc, fx.Volatility*100)
	}

	if g := sum.Gold; g != nil {
		fmt.Printf("\nGold:\n")
		fmt.Printf("  final $%.2f, return %+.2f%%, vol %.1f%%, range [$%.2f, $%.2f]\n",
			g.FinalPrice, g.TotalReturnPc, g.VolatilityPc, g.MinPrice, g.MaxPrice)
	}

	if r := sum.Geopolitical; r != nil {
		fmt.Printf("\nGeopolitical risk:\n")
		fmt.Printf("  mean %.3f, max %.3f, stddev %.3f, crisis days %d\n",
			r.AverageRisk, r.MaxRisk, r.RiskStdDev, r.CrisisPeriods)
	}
}
