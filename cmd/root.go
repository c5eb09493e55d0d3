package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	_ "github.com/kilianp07/porttwin/app/plugins"
	"github.com/kilianp07/porttwin/config"
	"github.com/kilianp07/porttwin/infra/logger"
)

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "porttwin",
	Short:        "Electric boat marina energy simulator",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "scenario file (yaml or json); the built-in sample when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the scenario and configures logging on the command's
// error stream so reports on stdout stay clean.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgPath == "" {
		cfg = config.Sample()
	} else if cfg, err = config.Load(cfgPath); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger.SetOutput(cmd.ErrOrStderr())
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}
