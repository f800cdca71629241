// Package tui renders the time entry page in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"time-tracker/internal/model"
	"time-tracker/internal/timecalc"
	"time-tracker/internal/viewmodel"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Align(lipgloss.Center)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(cellWidth).Align(lipgloss.Center)
	cellStyle     = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
	selectedStyle = cellStyle.Background(lipgloss.Color("57")).Foreground(lipgloss.Color("230")).Bold(true)
	outsideStyle  = cellStyle.Foreground(lipgloss.Color("238"))
	weekendStyle  = cellStyle.Foreground(lipgloss.Color("244"))
	loggedStyle   = cellStyle.Foreground(lipgloss.Color("42"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	boxStyle      = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

const cellWidth = 7

type refreshedMsg struct{ dayTotal float64 }

type confirmMsg struct {
	question string
	reply    chan bool
}

type Model struct {
	ctx  context.Context
	page *viewmodel.TimeEntryPage

	dayTotal float64
	pending  *confirmMsg
	status   string
	width    int
}

func newModel(ctx context.Context, page *viewmodel.TimeEntryPage) Model {
	return Model{ctx: ctx, page: page}
}

func (m Model) Init() tea.Cmd {
	return m.do(m.page.Initialize)
}

// do runs fn off the UI loop and reports back with a fresh daily total.
func (m Model) do(fn func(context.Context)) tea.Cmd {
	ctx, page := m.ctx, m.page
	return func() tea.Msg {
		fn(ctx)
		return refreshedMsg{dayTotal: page.DailyTotal(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case refreshedMsg:
		m.dayTotal = msg.dayTotal
		return m, nil

	case confirmMsg:
		m.pending = &msg
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		if m.pending != nil {
			return m.answer(msg.String())
		}
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m Model) answer(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.pending.reply <- true
	case "n", "N", "esc":
		m.pending.reply <- false
	default:
		return m, nil
	}
	m.pending = nil
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	cal := m.page.Calendar
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "h", "H", "pgup":
		return m, m.do(m.page.Navigation.Prev)
	case "l", "L", "pgdown":
		return m, m.do(m.page.Navigation.Next)
	case "left":
		return m, m.moveBy(-1)
	case "right":
		return m, m.moveBy(1)
	case "up":
		return m, m.moveBy(-7)
	case "down":
		return m, m.moveBy(7)
	case "t":
		return m, m.selectDay(timecalc.DateOf(time.Now()))
	case "r":
		return m, m.do(cal.Refresh)
	case "x":
		entries := m.page.DayEntries()
		if len(entries) == 0 {
			return m, nil
		}
		id := entries[len(entries)-1].ID
		return m, m.do(func(ctx context.Context) { m.page.Detail.Delete(ctx, id) })
	}
	return m, nil
}

func (m Model) moveBy(days int) tea.Cmd {
	from := m.page.SelectedDay()
	if from.IsZero() {
		from = timecalc.MonthStart(m.page.Calendar.Year(), m.page.Calendar.Month())
		days = 0
	}
	return m.selectDay(from.AddDate(0, 0, days))
}

// selectDay follows the day into its month when it leaves the grid's month.
func (m Model) selectDay(day time.Time) tea.Cmd {
	cal := m.page.Calendar
	return m.do(func(ctx context.Context) {
		if !cal.InMonth(day) {
			cal.NavigateMonth(ctx, viewmodel.YearMonth{Year: day.Year(), Month: day.Month()})
		}
		cal.SelectDay(ctx, day)
	})
}

func (m Model) View() string {
	cal := m.renderCalendar()
	detail := m.renderDay()
	body := lipgloss.JoinHorizontal(lipgloss.Top, cal, " ", detail)

	footer := subtleStyle.Render("←↑→↓ day • h/l month • t today • x delete last entry • r reload • q quit")
	if m.pending != nil {
		footer = warnStyle.Render(m.pending.question + " (y/n)")
	} else if m.status != "" {
		footer = warnStyle.Render(m.status) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

func (m Model) renderCalendar() string {
	cal := m.page.Calendar
	title := m.page.Navigation.MonthName()
	if cal.Loading() {
		title += " …"
	}

	var lines []string
	lines = append(lines, headerStyle.Width(cellWidth*7).Render(title))

	var labels []string
	for _, h := range cal.WeekdayHeaders() {
		labels = append(labels, labelStyle.Render(h))
	}
	lines = append(lines, strings.Join(labels, ""))

	selected := m.page.SelectedDay()
	cells := cal.Cells()
	for row := 0; row < len(cells)/7; row++ {
		var week []string
		for _, day := range cells[row*7 : row*7+7] {
			week = append(week, m.renderCell(day, selected))
		}
		lines = append(lines, strings.Join(week, ""))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderCell(day, selected time.Time) string {
	cal := m.page.Calendar
	hours := cal.CalculateTotalHours(day)
	text := fmt.Sprintf("%2d", day.Day())
	if hours > 0 {
		text += fmt.Sprintf(" %gh", hours)
	}

	switch {
	case !selected.IsZero() && day.Equal(selected):
		return selectedStyle.Render(text)
	case !cal.InMonth(day):
		return outsideStyle.Render(text)
	case hours > 0:
		return loggedStyle.Render(text)
	case timecalc.IsWeekend(day):
		return weekendStyle.Render(text)
	}
	return cellStyle.Render(text)
}

func (m Model) renderDay() string {
	day := m.page.SelectedDay()
	if day.IsZero() {
		return boxStyle.Render(subtleStyle.Render("Select a day"))
	}

	lines := []string{headerStyle.Render(day.Format("Monday, January 2"))}
	summary := m.page.Calendar.CalculateProjectSummary(day)
	if len(summary) == 0 {
		lines = append(lines, subtleStyle.Italic(true).Render("No time logged"))
	}
	for _, ph := range summary {
		lines = append(lines, fmt.Sprintf("%-28s %5.2fh", truncate(ph.ProjectName, 28), ph.Hours))
	}

	if entries := m.page.DayEntries(); len(entries) > 0 {
		lines = append(lines, "")
		for _, e := range entries {
			lines = append(lines, subtleStyle.Render(entryLine(e)))
		}
	}
	lines = append(lines, "", fmt.Sprintf("Rounded total: %gh", m.dayTotal))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func entryLine(e model.TimeEntry) string {
	s := fmt.Sprintf("#%d %s %gh", e.ID, e.ProjectName(), e.HoursWorked)
	if e.TicketKey != nil {
		s += " [" + *e.TicketKey + "]"
	}
	if e.Comment != "" {
		s += " " + truncate(e.Comment, 40)
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
