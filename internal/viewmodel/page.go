package viewmodel

import (
	"context"
	"sync"
	"time"

	"time-tracker/internal/model"
	"time-tracker/internal/timecalc"
)

// TimeEntryPage ties the calendar, navigation, day detail and project
// selector together and keeps the selected day's entries.
type TimeEntryPage struct {
	svc  TimeTracker
	user model.UserContext
	now  func() time.Time

	Calendar   *CalendarGrid
	Navigation *MonthNavigation
	Detail     *DayDetail
	Projects   *ProjectSelector

	mu         sync.RWMutex
	year       int
	month      time.Month
	monthDays  []model.WorkDay
	selected   time.Time
	dayEntries []model.TimeEntry

	StateChanged Signal

	unbind []func()
}

func NewTimeEntryPage(svc TimeTracker, confirm Confirmer, user model.UserContext) *TimeEntryPage {
	now := time.Now
	today := timecalc.DateOf(now())
	p := &TimeEntryPage{
		svc:        svc,
		user:       user,
		now:        now,
		Calendar:   NewCalendarGrid(svc, user),
		Navigation: NewMonthNavigation(today.Year(), today.Month()),
		Detail:     NewDayDetail(svc, confirm, user),
		Projects:   NewProjectSelector(svc, confirm, user),
	}
	p.bind()
	return p
}

func (p *TimeEntryPage) bind() {
	p.unbind = []func(){
		p.Calendar.MonthDataLoaded.Subscribe(p.HandleMonthDataLoaded),
		p.Calendar.MonthChanged.Subscribe(p.HandleMonthChanged),
		p.Calendar.DaySelected.Subscribe(p.HandleDaySelected),
		p.Navigation.NavigationRequested.Subscribe(p.Calendar.NavigateMonth),
		p.Detail.TimeEntriesChanged.Subscribe(p.HandleTimeEntriesChanged),
		p.Detail.RefreshRequested.Subscribe(func(ctx context.Context, _ struct{}) {
			p.Calendar.Refresh(ctx)
		}),
		p.Projects.SelectedProjectIDChanged.Subscribe(func(ctx context.Context, id int) {
			f := p.Detail.Form()
			f.ProjectID = id
			p.Detail.SetForm(ctx, f)
		}),
		p.Detail.TimeEntryChanged.Subscribe(func(ctx context.Context, f EntryForm) {
			p.Projects.SetSelectedProjectID(ctx, f.ProjectID)
		}),
		p.Projects.ProjectChanged.Subscribe(func(ctx context.Context, _ struct{}) {
			p.Detail.LoadProjects(ctx)
		}),
	}
}

// Close detaches the page from its children's events.
func (p *TimeEntryPage) Close() {
	for _, fn := range p.unbind {
		fn()
	}
	p.unbind = nil
}

// Initialize selects today, loads projects and the current month.
func (p *TimeEntryPage) Initialize(ctx context.Context) {
	p.Calendar.now = p.now
	today := timecalc.DateOf(p.now())
	p.mu.Lock()
	p.year, p.month = today.Year(), today.Month()
	p.selected = today
	p.mu.Unlock()

	p.Projects.Initialize(ctx)
	p.Detail.LoadProjects(ctx)
	p.Calendar.Initialize(ctx)
	p.Navigation.SetMonth(ctx, today.Year(), today.Month())
}

func (p *TimeEntryPage) CurrentMonth() YearMonth {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return YearMonth{Year: p.year, Month: p.month}
}

// SelectedDay is zero when no day is selected.
func (p *TimeEntryPage) SelectedDay() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

func (p *TimeEntryPage) DayEntries() []model.TimeEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dayEntries
}

// DailyTotal is the selected day's total rounded up to the half hour.
func (p *TimeEntryPage) DailyTotal(ctx context.Context) float64 {
	day := p.SelectedDay()
	if day.IsZero() {
		return 0
	}
	return p.svc.GetRoundedDailyTotal(ctx, p.user, day)
}

func (p *TimeEntryPage) HandleMonthDataLoaded(ctx context.Context, days []model.WorkDay) {
	p.mu.Lock()
	p.monthDays = days
	sel := p.selected
	if !sel.IsZero() {
		p.dayEntries = entriesOn(days, sel)
	}
	entries := p.dayEntries
	p.mu.Unlock()
	if !sel.IsZero() {
		p.Detail.SetDay(ctx, sel, entries)
	}
}

// HandleMonthChanged clears the selection; the new month has no focused day.
func (p *TimeEntryPage) HandleMonthChanged(ctx context.Context, ym YearMonth) {
	p.mu.Lock()
	p.year, p.month = ym.Year, ym.Month
	p.selected = time.Time{}
	p.dayEntries = nil
	p.mu.Unlock()
	p.Navigation.SetMonth(ctx, ym.Year, ym.Month)
	notify(ctx, &p.StateChanged)
}

func (p *TimeEntryPage) HandleDaySelected(ctx context.Context, day time.Time) {
	p.mu.Lock()
	p.selected = day
	p.dayEntries = entriesOn(p.monthDays, day)
	entries := p.dayEntries
	p.mu.Unlock()
	p.Detail.SetDay(ctx, day, entries)
	notify(ctx, &p.StateChanged)
}

func (p *TimeEntryPage) HandleTimeEntriesChanged(ctx context.Context, items []model.TimeEntry) {
	p.mu.Lock()
	p.dayEntries = items
	p.mu.Unlock()
	notify(ctx, &p.StateChanged)
}
