package main

import (
	"github.com/samber/do"
	"github.com/spf13/cobra"

	"time-tracker/internal/apperr"
	"time-tracker/internal/model"
	"time-tracker/internal/service"
	"time-tracker/internal/tui"
)

var tuiUser string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the calendar in the terminal",
	Long:  "Without --user the calendar shows demo data and is read only.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inj := container()
		defer inj.Shutdown()

		svc, err := do.Invoke[*service.TimeTrackingService](inj)
		if err != nil {
			return err
		}
		notifier := do.MustInvoke[*apperr.Notifier](inj)
		return tui.Run(cmd.Context(), svc, notifier, model.UserFromID(tuiUser))
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiUser, "user", "", "user id; empty opens the demo calendar")
}
