package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"time-tracker/internal/apperr"
	"time-tracker/internal/demo"
	"time-tracker/internal/logger"
	"time-tracker/internal/model"
	"time-tracker/internal/repo"
	"time-tracker/internal/safeexec"
	"time-tracker/internal/timecalc"
)

// LookbackDays caps the unrestricted work day listing.
const LookbackDays = 90

var errAnonymousWrite = apperr.Validation("Sign in to change your time entries.")

// SummaryInvalidator drops a user's cached AI summary.
type SummaryInvalidator interface {
	InvalidateSummary(ctx context.Context, userID string) error
}

type TimeTrackingService struct {
	projects  repo.ProjectRepo
	days      repo.WorkDayRepo
	exec      *safeexec.Executor
	summaries SummaryInvalidator
	now       func() time.Time
}

func NewTimeTrackingService(projects repo.ProjectRepo, days repo.WorkDayRepo, exec *safeexec.Executor, summaries SummaryInvalidator) *TimeTrackingService {
	return &TimeTrackingService{projects: projects, days: days, exec: exec, summaries: summaries, now: time.Now}
}

func (s *TimeTrackingService) today() time.Time { return timecalc.DateOf(s.now()) }

// AddTimeEntry stores entry for user under its WorkDay, creating the day if
// needed. It reports whether the entry was saved.
func (s *TimeTrackingService) AddTimeEntry(ctx context.Context, user model.UserContext, entry model.TimeEntry) bool {
	userID, ok := model.UserID(user)
	saved := s.exec.Run(ctx, "AddTimeEntry", func(ctx context.Context) error {
		if !ok {
			return errAnonymousWrite
		}
		entry.ID = 0
		entry.UserID = userID
		entry.WorkDate = timecalc.DateOf(entry.WorkDate)
		entry.LoggedAt = s.now().UTC()
		entry.Project = nil
		if err := entry.Validate(); err != nil {
			return err
		}
		if err := s.days.AddEntry(ctx, &entry); err != nil {
			return fmt.Errorf("add time entry: %w", err)
		}
		return nil
	})
	if saved {
		s.invalidate(ctx, userID)
	}
	return saved
}

func (s *TimeTrackingService) GetWorkDays(ctx context.Context, user model.UserContext) []model.WorkDay {
	return s.listDays(ctx, "GetWorkDays", user, repo.DayRange{From: s.today().AddDate(0, 0, -LookbackDays)})
}

func (s *TimeTrackingService) GetWorkDaysForMonth(ctx context.Context, user model.UserContext, year int, month time.Month) []model.WorkDay {
	first, last := timecalc.MonthRange(year, month)
	return s.listDays(ctx, "GetWorkDaysForMonth", user, repo.DayRange{From: first, To: last})
}

func (s *TimeTrackingService) GetWorkDaysForLastNDays(ctx context.Context, user model.UserContext, days int) []model.WorkDay {
	return s.listDays(ctx, "GetWorkDaysForLastNDays", user, repo.DayRange{From: s.today().AddDate(0, 0, -days)})
}

func (s *TimeTrackingService) listDays(ctx context.Context, op string, user model.UserContext, rng repo.DayRange) []model.WorkDay {
	userID, ok := model.UserID(user)
	if !ok {
		return demo.WorkDays(s.today())
	}
	return safeexec.List(ctx, s.exec, op, func(ctx context.Context) ([]model.WorkDay, error) {
		return s.days.List(ctx, userID, rng)
	})
}

// GetRoundedDailyTotal returns the user's hours on date rounded up to the
// next half hour.
func (s *TimeTrackingService) GetRoundedDailyTotal(ctx context.Context, user model.UserContext, date time.Time) float64 {
	date = timecalc.DateOf(date)
	userID, ok := model.UserID(user)
	if !ok {
		var minutes float64
		for _, wd := range demo.WorkDays(s.today()) {
			if wd.Date.Equal(date) {
				for _, e := range wd.TimeEntries {
					minutes += e.DurationMinutes()
				}
			}
		}
		return timecalc.RoundUpHalfHour(minutes)
	}
	return safeexec.Value(ctx, s.exec, "GetRoundedDailyTotal", 0, func(ctx context.Context) (float64, error) {
		minutes, err := s.days.SumMinutes(ctx, userID, date)
		if err != nil {
			return 0, err
		}
		return timecalc.RoundUpHalfHour(minutes), nil
	})
}

func (s *TimeTrackingService) GetProjects(ctx context.Context, user model.UserContext) []model.Project {
	if _, ok := model.UserID(user); !ok {
		return demo.Projects()
	}
	return safeexec.List(ctx, s.exec, "GetProjects", s.projects.ListActive)
}

// CreateProject returns nil when the project could not be created.
func (s *TimeTrackingService) CreateProject(ctx context.Context, user model.UserContext, name string) *model.Project {
	return safeexec.Value(ctx, s.exec, "CreateProject", (*model.Project)(nil), func(ctx context.Context) (*model.Project, error) {
		userID, ok := model.UserID(user)
		if !ok {
			return nil, errAnonymousWrite
		}
		p := &model.Project{Name: strings.TrimSpace(name), UserID: userID}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if err := s.projects.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create project: %w", err)
		}
		return p, nil
	})
}

// ArchiveProject hides the project from active listings. Archiving a missing
// or already archived project does nothing.
func (s *TimeTrackingService) ArchiveProject(ctx context.Context, id int) {
	s.setArchived(ctx, "ArchiveProject", id, true)
}

func (s *TimeTrackingService) UnarchiveProject(ctx context.Context, id int) {
	s.setArchived(ctx, "UnarchiveProject", id, false)
}

// DeleteProject archives; projects are never hard deleted so their entries
// stay reportable.
func (s *TimeTrackingService) DeleteProject(ctx context.Context, id int) {
	s.setArchived(ctx, "DeleteProject", id, true)
}

func (s *TimeTrackingService) setArchived(ctx context.Context, op string, id int, archived bool) {
	s.exec.Run(ctx, op, func(ctx context.Context) error {
		n, err := s.projects.SetArchived(ctx, id, archived)
		if err != nil {
			return fmt.Errorf("set archived: %w", err)
		}
		if n == 0 {
			logger.FromContext(ctx).Debug("project archive state unchanged", "op", op, "project_id", id)
		}
		return nil
	})
}

// DeleteTimeEntry removes one of user's entries, and its WorkDay once empty.
// Deleting an unknown id is a no-op.
func (s *TimeTrackingService) DeleteTimeEntry(ctx context.Context, user model.UserContext, id int) bool {
	var deleted *model.TimeEntry
	ok := s.exec.Run(ctx, "DeleteTimeEntry", func(ctx context.Context) error {
		userID, ok := model.UserID(user)
		if !ok {
			return errAnonymousWrite
		}
		e, err := s.days.DeleteEntry(ctx, userID, id)
		if err != nil {
			return fmt.Errorf("delete time entry: %w", err)
		}
		deleted = e
		return nil
	})
	if ok && deleted != nil && deleted.UserID != "" {
		s.invalidate(ctx, deleted.UserID)
	}
	return ok
}

// invalidate is best-effort and never reported to the user.
func (s *TimeTrackingService) invalidate(ctx context.Context, userID string) {
	if s.summaries == nil || userID == "" {
		return
	}
	if err := s.summaries.InvalidateSummary(ctx, userID); err != nil {
		logger.FromContext(ctx).Warn("invalidate summary failed", "user_id", userID, "err", err)
	}
}
