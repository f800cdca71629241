package main

import (
	"fmt"
	"io"
	"time"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"time-tracker/internal/model"
	"time-tracker/internal/service"
	"time-tracker/internal/timecalc"
)

var (
	reportUser    string
	reportDays    int
	reportSummary bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print logged time per day for the last days",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportUser, "user", "", "user id; empty reports the demo data")
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "number of days to look back")
	reportCmd.Flags().BoolVar(&reportSummary, "summary", false, "also ask the assistant for a summary")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	inj := container()
	defer inj.Shutdown()

	tracking, err := do.Invoke[*service.TimeTrackingService](inj)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	user := model.UserFromID(reportUser)
	days := tracking.GetWorkDaysForLastNDays(ctx, user, reportDays)
	writeReport(cmd.OutOrStdout(), days, func(d time.Time) float64 {
		return tracking.GetRoundedDailyTotal(ctx, user, d)
	})

	if !reportSummary {
		return nil
	}
	res := do.MustInvoke[*service.SummaryService](inj).Generate(ctx, user)
	if !res.OK() {
		return fmt.Errorf("summary %s: %s", res.Status, res.Text)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", res.Text)
	return nil
}

// writeReport prints days oldest first with a per-project breakdown and the
// rounded total for each day.
func writeReport(w io.Writer, days []model.WorkDay, rounded func(time.Time) float64) {
	if len(days) == 0 {
		fmt.Fprintln(w, "No time logged.")
		return
	}
	var grand float64
	for i := len(days) - 1; i >= 0; i-- {
		wd := days[i]
		total := rounded(wd.Date)
		grand += total
		fmt.Fprintf(w, "%s %s  %5.2fh\n", wd.Date.Format("2006-01-02"), wd.Date.Weekday().String()[:3], total)

		hours := map[string]float64{}
		var order []string
		for _, e := range wd.TimeEntries {
			name := e.ProjectName()
			if _, seen := hours[name]; !seen {
				order = append(order, name)
			}
			hours[name] += e.HoursWorked
		}
		for _, name := range order {
			fmt.Fprintf(w, "  %-30s %5.2fh\n", name, hours[name])
		}
		if timecalc.IsWeekend(wd.Date) {
			fmt.Fprintln(w, "  (weekend)")
		}
	}
	fmt.Fprintf(w, "\nTotal: %.2fh\n", grand)
}
