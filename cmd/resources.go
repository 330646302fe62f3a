package cmd

import (
	"fmt"
	"os"
	"strings"

	"mod-loader/core/resource"

	"github.com/spf13/cobra"
)

// resourcesCmd represents the resources command
var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Inspect the resource namespace",
	Long:  `Runs a load cycle and inspects the resulting resource store.`,
}

var resourcesListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List resource keys",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoadedStore(cmd, func(store *resource.Store) error {
			prefix := ""
			if len(args) == 1 {
				prefix = resource.Canonical(args[0]).String()
			}
			for _, key := range store.Keys() {
				if strings.HasPrefix(key.String(), prefix) {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
			}
			return nil
		})
	},
}

var resourcesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoadedStore(cmd, func(store *resource.Store) error {
			return writeJSON(cmd.OutOrStdout(), store.Stats())
		})
	},
}

var resourcesInfoCmd = &cobra.Command{
	Use:   "info <key>",
	Short: "Describe a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoadedStore(cmd, func(store *resource.Store) error {
			info, ok := store.Describe(resource.Canonical(args[0]))
			if !ok {
				return fmt.Errorf("resource %s not found", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), info)
		})
	},
}

var resourcesGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Write the contents of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return withLoadedStore(cmd, func(store *resource.Store) error {
			res, ok := store.Fetch(resource.Canonical(args[0]))
			if !ok {
				return fmt.Errorf("resource %s not found", args[0])
			}
			if out != "" {
				return os.WriteFile(out, res.Data, 0o644)
			}
			_, err := cmd.OutOrStdout().Write(res.Data)
			return err
		})
	},
}

func withLoadedStore(cmd *cobra.Command, fn func(*resource.Store) error) error {
	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	if _, err := rt.pipeline.RunLoadCycle(cmd.Context(), rt.sources...); err != nil {
		return err
	}
	return fn(rt.store)
}

func init() {
	resourcesGetCmd.Flags().StringP("out", "o", "", "write to a file instead of stdout")
	resourcesCmd.AddCommand(resourcesListCmd, resourcesStatsCmd, resourcesInfoCmd, resourcesGetCmd)
	RootCmd.AddCommand(resourcesCmd)
}
