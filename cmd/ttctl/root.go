package main

import (
	"github.com/samber/do"
	"github.com/spf13/cobra"

	"time-tracker/internal/bootstrap"
	"time-tracker/internal/config"
	"time-tracker/internal/logger"
)

const defaultLogFile = "ttctl.log"

var (
	configFile string
	userID     string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ttctl",
	Short: "Time tracker administration and terminal calendar",
	Long: `ttctl works directly against the configured time tracker database.
It reads the same config file and environment as the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load(configFile)
		if err := cfg.Validate(); err != nil {
			return err
		}
		// keep stdout for command output
		cfg.Log.Console = false
		if cfg.Log.File == "" {
			cfg.Log.File = defaultLogFile
		}
		logger.Init(cfg.Log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (e.g. etc/config-dev.yaml)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(tuiCmd)
}

// container builds the application graph for one command run.
func container() *do.Injector {
	return bootstrap.BuildContainer(cfg)
}
