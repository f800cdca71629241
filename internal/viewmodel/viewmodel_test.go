package viewmodel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"time-tracker/internal/model"
)

type fakeTracker struct {
	days       []model.WorkDay
	projects   []model.Project
	monthCalls []YearMonth
	added      []model.TimeEntry
	deleted    []int
	archived   []int
	removed    []int
	created    []string
	addOK      bool
	total      float64
}

func newFakeTracker() *fakeTracker { return &fakeTracker{addOK: true} }

func (f *fakeTracker) GetWorkDaysForMonth(_ context.Context, _ model.UserContext, year int, month time.Month) []model.WorkDay {
	f.monthCalls = append(f.monthCalls, YearMonth{Year: year, Month: month})
	return f.days
}

func (f *fakeTracker) GetProjects(context.Context, model.UserContext) []model.Project { return f.projects }

func (f *fakeTracker) GetRoundedDailyTotal(context.Context, model.UserContext, time.Time) float64 {
	return f.total
}

func (f *fakeTracker) AddTimeEntry(_ context.Context, _ model.UserContext, e model.TimeEntry) bool {
	f.added = append(f.added, e)
	return f.addOK
}

func (f *fakeTracker) DeleteTimeEntry(_ context.Context, _ model.UserContext, id int) bool {
	f.deleted = append(f.deleted, id)
	return true
}

func (f *fakeTracker) CreateProject(_ context.Context, _ model.UserContext, name string) *model.Project {
	f.created = append(f.created, name)
	p := model.Project{ID: len(f.projects) + 1, Name: name}
	f.projects = append(f.projects, p)
	return &p
}

func (f *fakeTracker) ArchiveProject(_ context.Context, id int) { f.archived = append(f.archived, id) }
func (f *fakeTracker) DeleteProject(_ context.Context, id int)  { f.removed = append(f.removed, id) }

func answer(ok bool, err error) (Confirmer, *int) {
	asked := 0
	return ConfirmFunc(func(context.Context, string) (bool, error) {
		asked++
		return ok, err
	}), &asked
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func sampleDays() []model.WorkDay {
	p1 := &model.Project{ID: 1, Name: "P1"}
	p2 := &model.Project{ID: 2, Name: "P2"}
	return []model.WorkDay{
		{Date: date(2025, 3, 10), TimeEntries: []model.TimeEntry{
			{ID: 1, Project: p1, HoursWorked: 3.5},
			{ID: 2, Project: p2, HoursWorked: 4.5},
			{ID: 3, Project: p1, HoursWorked: 2.5},
		}},
		{Date: date(2025, 3, 11), TimeEntries: []model.TimeEntry{
			{ID: 4, HoursWorked: 1},
		}},
	}
}

func TestEvent_SubscribeEmitUnsubscribe(t *testing.T) {
	var e Event[int]
	var got []string
	off := e.Subscribe(func(_ context.Context, v int) { got = append(got, "a") })
	e.Subscribe(func(_ context.Context, v int) { got = append(got, "b") })

	e.Emit(context.Background(), 1)
	off()
	off()
	e.Emit(context.Background(), 2)
	assert.Equal(t, []string{"a", "b", "b"}, got)
}

func TestCalendarGrid_Layout(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		start time.Time
		rows  int
	}{
		{2025, time.March, date(2025, 2, 24), 6}, // starts on a Saturday
		{2021, time.February, date(2021, 2, 1), 4},
		{2025, time.June, date(2025, 5, 26), 6}, // starts on a Sunday
		{2025, time.September, date(2025, 9, 1), 5},
	}
	for _, tt := range tests {
		g := NewCalendarGrid(newFakeTracker(), model.Anonymous{})
		g.SetMonth(context.Background(), tt.year, tt.month)
		assert.True(t, g.GridStart().Equal(tt.start), "%d-%02d start %s", tt.year, tt.month, g.GridStart())
		assert.Equal(t, time.Monday, g.GridStart().Weekday())
		assert.Equal(t, tt.rows, g.TotalRows(), "%d-%02d", tt.year, tt.month)
		assert.Len(t, g.Cells(), tt.rows*7)
	}
}

func TestCalendarGrid_Aggregates(t *testing.T) {
	svc := newFakeTracker()
	svc.days = sampleDays()
	g := NewCalendarGrid(svc, model.Authenticated{ID: "u1"})
	g.SetMonth(context.Background(), 2025, time.March)

	assert.Equal(t, 10.5, g.CalculateTotalHours(date(2025, 3, 10)))
	assert.Zero(t, g.CalculateTotalHours(date(2025, 3, 12)))

	assert.Equal(t, []model.ProjectHours{
		{ProjectName: "P1", Hours: 6},
		{ProjectName: "P2", Hours: 4.5},
	}, g.CalculateProjectSummary(date(2025, 3, 10)))
	assert.Equal(t, []model.ProjectHours{{ProjectName: model.UnknownProject, Hours: 1}},
		g.CalculateProjectSummary(date(2025, 3, 11)))
	assert.Empty(t, g.CalculateProjectSummary(date(2025, 3, 12)))
}

func TestCalendarGrid_RefreshLoadingTransitions(t *testing.T) {
	svc := newFakeTracker()
	g := NewCalendarGrid(svc, model.Anonymous{})
	g.now = func() time.Time { return date(2025, 5, 14) }
	ctx := context.Background()

	var states []bool
	g.StateChanged.Subscribe(func(context.Context, struct{}) { states = append(states, g.Loading()) })
	var loaded int
	g.MonthDataLoaded.Subscribe(func(_ context.Context, days []model.WorkDay) {
		assert.True(t, g.Loading())
		assert.NotNil(t, days)
		loaded++
	})

	g.Initialize(ctx)
	assert.Equal(t, []bool{true, false}, states)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, []YearMonth{{2025, time.May}}, svc.monthCalls)
	assert.True(t, g.SelectedDay().Equal(date(2025, 5, 14)))

	g.SetMonth(ctx, 2025, time.May)
	assert.Len(t, svc.monthCalls, 1, "same month does not reload")
}

func TestCalendarGrid_NavigationWraps(t *testing.T) {
	svc := newFakeTracker()
	g := NewCalendarGrid(svc, model.Anonymous{})
	ctx := context.Background()
	var changes []YearMonth
	g.MonthChanged.Subscribe(func(_ context.Context, ym YearMonth) { changes = append(changes, ym) })

	g.SetMonth(ctx, 2025, time.January)
	g.PrevMonth(ctx)
	assert.Equal(t, 2024, g.Year())
	assert.Equal(t, time.December, g.Month())

	g.NextMonth(ctx)
	g.SetMonth(ctx, 2025, time.December)
	g.NextMonth(ctx)
	assert.Equal(t, 2026, g.Year())
	assert.Equal(t, time.January, g.Month())

	assert.Equal(t, []YearMonth{{2024, time.December}, {2025, time.January}, {2026, time.January}}, changes)
	assert.Equal(t, YearMonth{2026, time.January}, svc.monthCalls[len(svc.monthCalls)-1])
}

func TestCalendarGrid_SelectDay(t *testing.T) {
	g := NewCalendarGrid(newFakeTracker(), model.Anonymous{})
	ctx := context.Background()
	var selected []time.Time
	g.DaySelected.Subscribe(func(_ context.Context, d time.Time) { selected = append(selected, d) })

	g.SelectDay(ctx, time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC))
	g.MoveSelection(ctx, 7)
	require.Len(t, selected, 2)
	assert.True(t, selected[0].Equal(date(2025, 3, 4)))
	assert.True(t, selected[1].Equal(date(2025, 3, 11)))
}

func TestMonthNavigation(t *testing.T) {
	n := NewMonthNavigation(2025, time.January)
	ctx := context.Background()
	var asked []YearMonth
	n.NavigationRequested.Subscribe(func(_ context.Context, ym YearMonth) { asked = append(asked, ym) })
	var states int
	n.StateChanged.Subscribe(func(context.Context, struct{}) { states++ })

	n.Prev(ctx)
	n.SetMonth(ctx, 2025, time.December)
	n.Next(ctx)
	n.SetMonth(ctx, 2025, time.December)

	assert.Equal(t, []YearMonth{{2024, time.December}, {2026, time.January}}, asked)
	assert.Equal(t, 1, states)
	assert.Equal(t, "December 2025", n.MonthName())
}

func TestDayDetail_SubmitUsesSelectedDay(t *testing.T) {
	svc := newFakeTracker()
	yes, _ := answer(true, nil)
	d := NewDayDetail(svc, yes, model.Authenticated{ID: "u1"})
	ctx := context.Background()
	var refreshes int
	d.RefreshRequested.Subscribe(func(context.Context, struct{}) { refreshes++ })

	d.SetDay(ctx, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), nil)
	d.SetForm(ctx, EntryForm{ProjectID: 2, HoursWorked: 1.5, Comment: " review ", TicketKey: "T-1", TicketURL: "example.com/T-1"})
	require.True(t, d.Submit(ctx))

	require.Len(t, svc.added, 1)
	e := svc.added[0]
	assert.Equal(t, 2, e.ProjectID)
	assert.True(t, e.WorkDate.Equal(date(2025, 3, 10)))
	assert.Equal(t, "review", e.Comment)
	require.NotNil(t, e.TicketURL)
	assert.Equal(t, "https://example.com/T-1", *e.TicketURL)
	require.NotNil(t, e.TicketKey)
	assert.Equal(t, "T-1", *e.TicketKey)
	assert.Equal(t, 1, refreshes)

	assert.Equal(t, EntryForm{TicketKey: "T-1", TicketURL: "example.com/T-1"}, d.Form(), "ticket fields are left for the caller")
}

func TestDayDetail_SubmitEdgeCases(t *testing.T) {
	svc := newFakeTracker()
	yes, _ := answer(true, nil)
	d := NewDayDetail(svc, yes, model.Authenticated{ID: "u1"})
	ctx := context.Background()
	d.SetDay(ctx, date(2025, 3, 10), nil)

	d.SetForm(ctx, EntryForm{HoursWorked: 2})
	assert.False(t, d.Submit(ctx), "no project selected")
	assert.Empty(t, svc.added)

	d.SetForm(ctx, EntryForm{ProjectID: 1, HoursWorked: 2, TicketKey: "T-2", TicketURL: "not a url"})
	assert.True(t, d.Submit(ctx))
	require.Len(t, svc.added, 1)
	assert.Nil(t, svc.added[0].TicketURL)

	svc.addOK = false
	d.SetForm(ctx, EntryForm{ProjectID: 1, HoursWorked: 30, Comment: "keep"})
	assert.False(t, d.Submit(ctx))
	assert.Equal(t, "keep", d.Form().Comment, "form kept on failure")
}

func TestDayDetail_DeleteNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name    string
		ok      bool
		err     error
		deleted []int
	}{
		{"confirmed", true, nil, []int{7}},
		{"declined", false, nil, nil},
		{"confirm failed", true, errors.New("no ui"), nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc := newFakeTracker()
			c, asked := answer(tc.ok, tc.err)
			d := NewDayDetail(svc, c, model.Authenticated{ID: "u1"})
			var refreshes int
			d.RefreshRequested.Subscribe(func(context.Context, struct{}) { refreshes++ })

			d.Delete(ctx, 7)
			assert.Equal(t, 1, *asked)
			assert.Equal(t, tc.deleted, svc.deleted)
			assert.Equal(t, len(tc.deleted), refreshes)
		})
	}
}

func TestProjectSelector_CreateAndArchive(t *testing.T) {
	svc := newFakeTracker()
	yes, asked := answer(true, nil)
	p := NewProjectSelector(svc, yes, model.Authenticated{ID: "u1"})
	ctx := context.Background()
	p.Initialize(ctx)

	var changed int
	p.ProjectChanged.Subscribe(func(context.Context, struct{}) { changed++ })
	var selections []int
	p.SelectedProjectIDChanged.Subscribe(func(_ context.Context, id int) { selections = append(selections, id) })

	p.OpenModal(ctx)
	p.SetNewProjectName(ctx, "   ")
	assert.False(t, p.CreateProject(ctx))
	assert.True(t, p.ShowModal())

	p.SetNewProjectName(ctx, " Migration ")
	require.True(t, p.CreateProject(ctx))
	assert.Equal(t, []string{"Migration"}, svc.created)
	assert.False(t, p.ShowModal())
	assert.Empty(t, p.NewProjectName())
	assert.Len(t, p.Projects(), 1)

	assert.False(t, p.ArchiveProjectWithConfirmation(ctx), "nothing selected")
	assert.Zero(t, *asked)

	p.SetSelectedProjectID(ctx, 1)
	p.SetSelectedProjectID(ctx, 1)
	require.True(t, p.ArchiveProjectWithConfirmation(ctx))
	assert.Equal(t, []int{1}, svc.archived)
	assert.Equal(t, []int{1, 0}, selections)
	assert.Equal(t, 2, changed)
	assert.Zero(t, p.SelectedProjectID())
}

func TestProjectSelector_DeclinedDelete(t *testing.T) {
	svc := newFakeTracker()
	no, asked := answer(false, nil)
	p := NewProjectSelector(svc, no, model.Authenticated{ID: "u1"})
	ctx := context.Background()

	p.SetSelectedProjectID(ctx, 3)
	assert.False(t, p.DeleteProjectWithConfirmation(ctx))
	assert.Equal(t, 1, *asked)
	assert.Empty(t, svc.removed)
	assert.Equal(t, 3, p.SelectedProjectID())
}

func TestTimeEntryPage_Coordination(t *testing.T) {
	svc := newFakeTracker()
	svc.days = sampleDays()
	svc.projects = []model.Project{{ID: 1, Name: "P1"}}
	svc.total = 10.5
	yes, _ := answer(true, nil)
	page := NewTimeEntryPage(svc, yes, model.Authenticated{ID: "u1"})
	defer page.Close()
	page.now = func() time.Time { return date(2025, 3, 10) }
	ctx := context.Background()

	page.Initialize(ctx)
	assert.Equal(t, YearMonth{2025, time.March}, page.CurrentMonth())
	assert.Len(t, page.DayEntries(), 3)
	assert.True(t, page.Detail.Day().Equal(date(2025, 3, 10)))
	assert.Len(t, page.Detail.Projects(), 1)
	assert.Equal(t, 10.5, page.DailyTotal(ctx))

	page.Calendar.SelectDay(ctx, date(2025, 3, 11))
	assert.Len(t, page.DayEntries(), 1)
	assert.True(t, page.Detail.Day().Equal(date(2025, 3, 11)))

	page.Projects.SetSelectedProjectID(ctx, 1)
	assert.Equal(t, 1, page.Detail.Form().ProjectID)

	calls := len(svc.monthCalls)
	page.Detail.SetForm(ctx, EntryForm{ProjectID: 1, HoursWorked: 1})
	require.True(t, page.Detail.Submit(ctx))
	assert.Len(t, svc.monthCalls, calls+1, "submit refreshes the calendar")
	assert.Zero(t, page.Projects.SelectedProjectID(), "form reset clears the selector")

	page.Projects.SetSelectedProjectID(ctx, 1)
	assert.Equal(t, 1, page.Detail.Form().ProjectID, "same project can be picked again after a submit")

	page.Navigation.Next(ctx)
	assert.Equal(t, YearMonth{2025, time.April}, page.CurrentMonth())
	assert.Equal(t, YearMonth{2025, time.April}, page.Navigation.Current())
	assert.True(t, page.SelectedDay().IsZero(), "changing month clears the selection")
	assert.Empty(t, page.DayEntries())
	assert.Zero(t, page.DailyTotal(ctx))
}
