package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kilianp07/porttwin/app/plugins"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the scenario file without simulating it",
	Args:  cobra.NoArgs,
	RunE:  validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	known := plugins.Sinks()
	for _, s := range cfg.Metrics.Sinks {
		if !slices.Contains(known, s.Type) {
			return fmt.Errorf("unknown metrics sink %s (available: %v)", s.Type, known)
		}
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "config OK: port %s, %d boats, %d trips, %d sinks\n",
		cfg.Port.Name, len(cfg.Boats), len(cfg.Trips), len(cfg.Metrics.Sinks)); err != nil {
		return err
	}
	if len(cfg.Boats) > cfg.Port.Capacity {
		_, err = fmt.Fprintf(out, "warning: %d boats configured, port holds %d\n", len(cfg.Boats), cfg.Port.Capacity)
	}
	return err
}
