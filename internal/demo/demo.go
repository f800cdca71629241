// Package demo builds the fixed dataset shown to anonymous sessions. Nothing
// here is persisted; dates are relative to the day passed in.
package demo

import (
	"time"

	"time-tracker/internal/model"
	"time-tracker/internal/timecalc"
)

var (
	migration = model.Project{ID: 1, Name: "Azure App Service Migration"}
	upgrade   = model.Project{ID: 2, Name: ".NET 8 Upgrade"}
)

type seed struct {
	project *model.Project
	hours   float64
	comment string
}

// days[i] is logged i+1 days before today.
var days = [][]seed{
	{{&migration, 3, "Set up deployment slots"}, {&upgrade, 2.5, "Migrated startup to minimal hosting"}, {&migration, 2.5, "Configured app settings and secrets"}},
	{{&upgrade, 4, "Fixed breaking changes in EF Core"}, {&migration, 2, "Load tested staging slot"}},
	{{&migration, 5, "Moved background jobs to WebJobs"}, {&upgrade, 2, "Updated NuGet packages"}},
	{{&upgrade, 3.5, "Replaced obsolete APIs"}, {&migration, 1, "Team sync on cutover plan"}},
	{{&migration, 4, "Networking and private endpoints"}, {&upgrade, 3, "Ran test suite on net8.0"}, {&migration, 1, "Wrote runbook"}},
	{{&upgrade, 4, "Performance profiling"}, {&migration, 5, "Production cutover rehearsal"}},
	{{&migration, 4.5, "Custom domains and certificates"}, {&upgrade, 3.5, "Code review and cleanup"}},
}

func Projects() []model.Project {
	return []model.Project{upgrade, migration}
}

// WorkDays returns the week before today, newest first, weekends skipped.
func WorkDays(today time.Time) []model.WorkDay {
	today = timecalc.DateOf(today)
	var out []model.WorkDay
	entryID := 1
	for i, seeds := range days {
		date := today.AddDate(0, 0, -(i + 1))
		if timecalc.IsWeekend(date) {
			continue
		}
		wd := model.WorkDay{ID: i + 1, Date: date}
		for _, s := range seeds {
			p := *s.project
			wd.TimeEntries = append(wd.TimeEntries, model.TimeEntry{
				ID:          entryID,
				WorkDayID:   wd.ID,
				ProjectID:   p.ID,
				Project:     &p,
				HoursWorked: s.hours,
				WorkDate:    date,
				Comment:     s.comment,
				LoggedAt:    date.Add(17 * time.Hour),
			})
			entryID++
		}
		out = append(out, wd)
	}
	return out
}
