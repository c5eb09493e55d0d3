package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	estimateBoat     string
	estimateDistance float64
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print the energy a boat needs for a distance",
	Args:  cobra.NoArgs,
	RunE:  estimateTrip,
}

func init() {
	estimateCmd.Flags().StringVar(&estimateBoat, "boat", "", "boat name from the scenario")
	estimateCmd.Flags().Float64Var(&estimateDistance, "distance", 0, "distance in meters")
	_ = estimateCmd.MarkFlagRequired("boat")
	rootCmd.AddCommand(estimateCmd)
}

func estimateTrip(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	bc, ok := cfg.Boat(estimateBoat)
	if !ok {
		return fmt.Errorf("unknown boat %s", estimateBoat)
	}
	b := bc.Build()
	need := b.EstimateTripEnergyWh(estimateDistance)
	avail := b.AvailableEnergyWh()
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %.0f m needs %.0f Wh, %.0f Wh available (%.1f%% SoC)\n",
		b.Name, estimateDistance, need, avail, b.SoC())
	return err
}
