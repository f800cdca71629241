package main

import (
	"fmt"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"time-tracker/internal/service"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show this month's assistant calls against the quota",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inj := container()
		defer inj.Shutdown()

		ai, err := do.Invoke[*service.AIService](inj)
		if err != nil {
			return err
		}
		info := ai.GetUsageInfo(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d assistant calls used this month\n", info.CallsThisMonth, info.MaxCallsPerMonth)
		return nil
	},
}
