package cmd

import (
	"fmt"
	"os"

	"mod-loader/core/config"
	"mod-loader/core/storage"
	"mod-loader/feature/mods"

	"github.com/spf13/cobra"
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish <archive>...",
	Short: "Upload archives to the remote bucket",
	Long:  `Validates each archive and uploads it under the configured remote prefix, where every loader with remote loading enabled picks it up.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := bucketSource()
		if err != nil {
			return err
		}
		for _, file := range args {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			key, err := src.Publish(cmd.Context(), file, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", key)
		}
		return nil
	},
}

// unpublishCmd represents the unpublish command
var unpublishCmd = &cobra.Command{
	Use:   "unpublish <archive>...",
	Short: "Remove archives from the remote bucket",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := bucketSource()
		if err != nil {
			return err
		}
		for _, name := range args {
			if err := src.Unpublish(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
		}
		return nil
	},
}

func bucketSource() (*mods.BucketSource, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, err
	}
	return mods.NewBucketSource(client, cfg.Storage.Bucket, cfg.Loading.RemotePrefix), nil
}

func init() {
	RootCmd.AddCommand(publishCmd, unpublishCmd)
}
