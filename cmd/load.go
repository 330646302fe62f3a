package cmd

import (
	"github.com/spf13/cobra"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run one load cycle",
	Long:  `Discovers archives, resolves the mod order, loads every enabled mod and prints the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		report, err := rt.pipeline.RunLoadCycle(cmd.Context(), rt.sources...)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	loadCmd.Flags().Bool("json", false, "print the cycle report as JSON")
	RootCmd.AddCommand(loadCmd)
}
