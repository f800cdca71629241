package viewmodel

import (
	"context"
	"sync"
	"time"

	"time-tracker/internal/model"
	"time-tracker/internal/timecalc"
)

// CalendarGrid lays out one month as Monday-first weeks and aggregates the
// hours logged on each day.
type CalendarGrid struct {
	svc  TimeTracker
	user model.UserContext
	now  func() time.Time

	mu       sync.RWMutex
	year     int
	month    time.Month
	loading  bool
	selected time.Time
	days     []model.WorkDay

	StateChanged    Signal
	MonthDataLoaded Event[[]model.WorkDay]
	MonthChanged    Event[YearMonth]
	DaySelected     Event[time.Time]
}

func NewCalendarGrid(svc TimeTracker, user model.UserContext) *CalendarGrid {
	return &CalendarGrid{svc: svc, user: user, now: time.Now}
}

// Initialize shows the current month and loads it.
func (g *CalendarGrid) Initialize(ctx context.Context) {
	today := timecalc.DateOf(g.now())
	g.mu.Lock()
	g.year, g.month = today.Year(), today.Month()
	g.selected = today
	g.mu.Unlock()
	g.Refresh(ctx)
}

func (g *CalendarGrid) Year() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.year
}

func (g *CalendarGrid) Month() time.Month {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.month
}

func (g *CalendarGrid) Loading() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loading
}

func (g *CalendarGrid) SelectedDay() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.selected
}

func (g *CalendarGrid) MonthWorkDays() []model.WorkDay {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.days
}

func (g *CalendarGrid) GridStart() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return timecalc.GridStart(g.year, g.month)
}

func (g *CalendarGrid) TotalRows() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return timecalc.GridRows(g.year, g.month)
}

func (g *CalendarGrid) WeekdayHeaders() []string {
	return append([]string(nil), timecalc.WeekdayHeaders...)
}

// Cells returns every date shown in the grid, TotalRows*7 of them.
func (g *CalendarGrid) Cells() []time.Time {
	start, rows := g.GridStart(), g.TotalRows()
	cells := make([]time.Time, rows*7)
	for i := range cells {
		cells[i] = start.AddDate(0, 0, i)
	}
	return cells
}

// InMonth reports whether day belongs to the displayed month.
func (g *CalendarGrid) InMonth(day time.Time) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return day.Year() == g.year && day.Month() == g.month
}

// NavigateMonth shows ym and announces the change.
func (g *CalendarGrid) NavigateMonth(ctx context.Context, ym YearMonth) {
	g.SetMonth(ctx, ym.Year, ym.Month)
	g.MonthChanged.Emit(ctx, YearMonth{Year: g.Year(), Month: g.Month()})
}

func (g *CalendarGrid) NextMonth(ctx context.Context) {
	y, m := timecalc.NextMonth(g.Year(), g.Month())
	g.NavigateMonth(ctx, YearMonth{Year: y, Month: m})
}

func (g *CalendarGrid) PrevMonth(ctx context.Context) {
	y, m := timecalc.PrevMonth(g.Year(), g.Month())
	g.NavigateMonth(ctx, YearMonth{Year: y, Month: m})
}

// SetMonth switches to year/month and reloads. Setting the displayed month
// again does nothing.
func (g *CalendarGrid) SetMonth(ctx context.Context, year int, month time.Month) {
	g.mu.Lock()
	if g.year == year && g.month == month {
		g.mu.Unlock()
		return
	}
	g.year, g.month = year, month
	g.mu.Unlock()
	g.Refresh(ctx)
}

// Refresh reloads the displayed month. The loading flag is raised for the
// duration of the load and each transition emits StateChanged.
func (g *CalendarGrid) Refresh(ctx context.Context) {
	g.mu.Lock()
	g.loading = true
	year, month := g.year, g.month
	g.mu.Unlock()
	notify(ctx, &g.StateChanged)

	days := g.svc.GetWorkDaysForMonth(ctx, g.user, year, month)
	if days == nil {
		days = []model.WorkDay{}
	}
	g.mu.Lock()
	g.days = days
	g.mu.Unlock()
	g.MonthDataLoaded.Emit(ctx, days)

	g.mu.Lock()
	g.loading = false
	g.mu.Unlock()
	notify(ctx, &g.StateChanged)
}

// SelectDay moves the UI focus; no data changes.
func (g *CalendarGrid) SelectDay(ctx context.Context, day time.Time) {
	day = timecalc.DateOf(day)
	g.mu.Lock()
	g.selected = day
	g.mu.Unlock()
	g.DaySelected.Emit(ctx, day)
	notify(ctx, &g.StateChanged)
}

// MoveSelection shifts the selected day by n days.
func (g *CalendarGrid) MoveSelection(ctx context.Context, n int) {
	g.SelectDay(ctx, g.SelectedDay().AddDate(0, 0, n))
}

func (g *CalendarGrid) CalculateTotalHours(day time.Time) float64 {
	var total float64
	for _, e := range entriesOn(g.MonthWorkDays(), day) {
		total += e.HoursWorked
	}
	return total
}

// CalculateProjectSummary sums the day's hours per project name, in the order
// projects first appear.
func (g *CalendarGrid) CalculateProjectSummary(day time.Time) []model.ProjectHours {
	entries := entriesOn(g.MonthWorkDays(), day)
	if len(entries) == 0 {
		return nil
	}
	idx := make(map[string]int)
	var out []model.ProjectHours
	for _, e := range entries {
		name := e.ProjectName()
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, model.ProjectHours{ProjectName: name})
		}
		out[i].Hours += e.HoursWorked
	}
	return out
}
