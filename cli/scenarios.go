package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/reserveflow/sim"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the available simulation scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range sim.Scenarios() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}
