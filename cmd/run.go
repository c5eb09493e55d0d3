package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/porttwin/api/boats"
	"github.com/kilianp07/porttwin/app"
	"github.com/kilianp07/porttwin/core/boatstatus"
	"github.com/kilianp07/porttwin/core/factory"
	"github.com/kilianp07/porttwin/core/report"
	"github.com/kilianp07/porttwin/infra/logger"
	"github.com/kilianp07/porttwin/infra/metrics"
	"github.com/kilianp07/porttwin/pkg/export"
)

var (
	chargeDuration time.Duration
	outputFormat   string
	metricsAddr    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the scenario and print the fleet report",
	Args:  cobra.NoArgs,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().DurationVar(&chargeDuration, "charge-duration", 0, "override simulation.charge_duration")
	runCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "report format: table, json or csv")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /api/boats/status on this address after the run until interrupted")
	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	write, err := reportWriter(outputFormat)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if chargeDuration < 0 {
		return fmt.Errorf("charge-duration must be >= 0, got %v", chargeDuration)
	}
	if chargeDuration > 0 {
		cfg.Simulation.ChargeDuration = chargeDuration
	}
	addr := metricsAddr
	if addr == "" {
		addr = cfg.Metrics.PrometheusAddr
	}
	if addr != "" && !hasSink(cfg.Metrics.Sinks, "prometheus") {
		cfg.Metrics.Sinks = append(cfg.Metrics.Sinks, factory.ModuleConfig{Type: "prometheus"})
	}

	log := logger.New("main")
	store := boatstatus.NewMemoryStore()
	sim, err := app.New(cfg, store)
	if err != nil {
		return err
	}
	defer func() {
		if err := sim.Close(); err != nil {
			log.Errorf("simulator close: %v", err)
		}
	}()

	sum, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	if err := write(cmd.OutOrStdout(), sum); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if addr == "" {
		return nil
	}
	log.Infof("serving metrics on %s until interrupted", addr)
	return metrics.StartPromServer(ctx, addr, map[string]http.Handler{
		"/api/boats/status": boats.NewStatusHandler(store),
	})
}

func reportWriter(format string) (func(io.Writer, report.Summary) error, error) {
	switch format {
	case "table", "":
		return report.Write, nil
	case "json":
		return export.WriteJSON, nil
	case "csv":
		return export.WriteCSV, nil
	default:
		return nil, fmt.Errorf("unknown output format %s", format)
	}
}

func hasSink(sinks []factory.ModuleConfig, typ string) bool {
	for _, s := range sinks {
		if s.Type == typ {
			return true
		}
	}
	return false
}
