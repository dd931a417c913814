package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show where taskpad keeps its configuration, state and logs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := current.cfg
		pm := cfg.Paths()
		if err := pm.ValidatePaths(); err != nil {
			return fmt.Errorf("data directory is not usable: %w", err)
		}

		storePath, err := cfg.StorePath()
		if err != nil {
			return err
		}
		if storePath == "" {
			storePath = "(in memory)"
		}
		logsDir, err := pm.GetLogsDir()
		if err != nil {
			return err
		}
		configFile := cfg.ConfigFile
		if configFile == "" {
			configFile = "(none, using defaults)"
		}
		platform := pm.GetPlatformInfo()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config:   %s\n", configFile)
		fmt.Fprintf(out, "data:     %s\n", platform["data_dir"])
		fmt.Fprintf(out, "store:    %s %s\n", cfg.Store.Backend, storePath)
		fmt.Fprintf(out, "logs:     %s\n", logsDir)
		fmt.Fprintf(out, "platform: %s/%s\n", platform["os"], platform["arch"])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
