package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ensemble/logging"
)

type app struct {
	envFile string
	cfg     Config
	logger  logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "ensemble",
		Short:         "Multi-participant product description pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
			}
			a.cfg = cfg
			a.logger = logging.NewLogger(&logging.LoggerConfig{
				Level:  logging.ParseLevel(cfg.LogLevel),
				Format: cfg.LogFormat,
				Output: os.Stderr,
			}).WithComponent("cli")
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Path to a .env file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(a), newHistoryCmd(a))
	return root
}
