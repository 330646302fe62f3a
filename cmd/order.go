package cmd

import (
	"github.com/spf13/cobra"
)

// orderCmd represents the order command
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Resolve the mod load order",
	Long:  `Resolves the load order of the available mods without loading them or rewriting the order file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		report, err := rt.pipeline.Resolve(cmd.Context(), rt.sources...)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"order":    report.Order,
				"enabled":  report.Enabled,
				"warnings": report.Warnings,
			})
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	orderCmd.Flags().Bool("json", false, "print the order and warnings as JSON")
	RootCmd.AddCommand(orderCmd)
}
