// Package cli wires the reserveflow command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reserveflow",
	Short: "A stochastic simulator for the international reserve system",
	Long: `Reserveflow simulates the international monetary system day by day:
geopolitical risk events, correlated exchange rate dynamics, precious
metal markets, SDR basket valuation and usage, and central bank reserve
management.

It provides tools for:
  - Running baseline and stress scenario simulations
  - Exporting daily results to CSV or a SQLite database
  - Summarizing FX, gold and geopolitical risk statistics per run`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
