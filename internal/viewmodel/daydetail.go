package viewmodel

import (
	"context"
	"strings"
	"sync"
	"time"

	"time-tracker/internal/logger"
	"time-tracker/internal/model"
	"time-tracker/internal/timecalc"
)

const confirmDeleteEntry = "Delete this time entry?"

// EntryForm is the add-entry form as typed by the user.
type EntryForm struct {
	ProjectID   int
	HoursWorked float64
	Comment     string
	TicketKey   string
	TicketURL   string
}

// DayDetail is the entry form and entry list for one day.
type DayDetail struct {
	svc     TimeTracker
	confirm Confirmer
	user    model.UserContext

	mu       sync.RWMutex
	day      time.Time
	items    []model.TimeEntry
	projects []model.Project
	form     EntryForm

	StateChanged       Signal
	TimeEntryChanged   Event[EntryForm]
	TimeEntriesChanged Event[[]model.TimeEntry]
	RefreshRequested   Signal
}

func NewDayDetail(svc TimeTracker, confirm Confirmer, user model.UserContext) *DayDetail {
	return &DayDetail{svc: svc, confirm: confirm, user: user}
}

func (d *DayDetail) Day() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.day
}

func (d *DayDetail) Items() []model.TimeEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.items
}

func (d *DayDetail) Projects() []model.Project {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.projects
}

func (d *DayDetail) Form() EntryForm {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.form
}

// SetDay points the form at day and shows its entries.
func (d *DayDetail) SetDay(ctx context.Context, day time.Time, items []model.TimeEntry) {
	d.mu.Lock()
	d.day = timecalc.DateOf(day)
	d.items = items
	d.mu.Unlock()
	d.TimeEntriesChanged.Emit(ctx, items)
	notify(ctx, &d.StateChanged)
}

func (d *DayDetail) SetForm(ctx context.Context, f EntryForm) {
	d.mu.Lock()
	d.form = f
	d.mu.Unlock()
	d.TimeEntryChanged.Emit(ctx, f)
	notify(ctx, &d.StateChanged)
}

// LoadProjects refreshes the selectable projects.
func (d *DayDetail) LoadProjects(ctx context.Context) {
	projects := d.svc.GetProjects(ctx, d.user)
	d.mu.Lock()
	d.projects = projects
	d.mu.Unlock()
	notify(ctx, &d.StateChanged)
}

// Submit saves the form as a new entry on the selected day. Without a
// project it does nothing. An unusable ticket URL is dropped rather than
// failing the entry. Ticket fields survive the reset.
func (d *DayDetail) Submit(ctx context.Context) bool {
	d.mu.RLock()
	f, day := d.form, d.day
	d.mu.RUnlock()
	if f.ProjectID == 0 {
		return false
	}

	entry := model.TimeEntry{
		ProjectID:   f.ProjectID,
		WorkDate:    day,
		HoursWorked: f.HoursWorked,
		Comment:     strings.TrimSpace(f.Comment),
		TicketURL:   model.NormalizeTicketURL(f.TicketURL),
	}
	if key := strings.TrimSpace(f.TicketKey); key != "" {
		entry.TicketKey = &key
	}
	if !d.svc.AddTimeEntry(ctx, d.user, entry) {
		return false
	}
	notify(ctx, &d.RefreshRequested)

	d.mu.Lock()
	d.form.ProjectID = 0
	d.form.HoursWorked = 0
	d.form.Comment = ""
	f = d.form
	d.mu.Unlock()
	d.TimeEntryChanged.Emit(ctx, f)
	notify(ctx, &d.StateChanged)
	return true
}

// Delete removes entry id once the user confirms. Declining is silent.
func (d *DayDetail) Delete(ctx context.Context, id int) bool {
	ok, err := d.confirm.Confirm(ctx, confirmDeleteEntry)
	if err != nil {
		logger.FromContext(ctx).Warn("confirmation failed", "entry_id", id, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if !d.svc.DeleteTimeEntry(ctx, d.user, id) {
		return false
	}
	notify(ctx, &d.RefreshRequested)
	return true
}
