package viewmodel

import (
	"context"
	"sync"
	"time"

	"time-tracker/internal/timecalc"
)

// MonthNavigation is the prev/next month control. It only asks for a new
// month; whoever handles NavigationRequested does the switch and calls
// SetMonth back.
type MonthNavigation struct {
	mu    sync.RWMutex
	year  int
	month time.Month

	StateChanged        Signal
	NavigationRequested Event[YearMonth]
}

func NewMonthNavigation(year int, month time.Month) *MonthNavigation {
	return &MonthNavigation{year: year, month: month}
}

func (n *MonthNavigation) Current() YearMonth {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return YearMonth{Year: n.year, Month: n.month}
}

// MonthName is the English name of the month, e.g. "March 2025".
func (n *MonthNavigation) MonthName() string {
	ym := n.Current()
	return timecalc.MonthStart(ym.Year, ym.Month).Format("January 2006")
}

func (n *MonthNavigation) SetMonth(ctx context.Context, year int, month time.Month) {
	n.mu.Lock()
	changed := n.year != year || n.month != month
	n.year, n.month = year, month
	n.mu.Unlock()
	if changed {
		notify(ctx, &n.StateChanged)
	}
}

func (n *MonthNavigation) Prev(ctx context.Context) {
	ym := n.Current()
	y, m := timecalc.PrevMonth(ym.Year, ym.Month)
	n.NavigationRequested.Emit(ctx, YearMonth{Year: y, Month: m})
}

func (n *MonthNavigation) Next(ctx context.Context) {
	ym := n.Current()
	y, m := timecalc.NextMonth(ym.Year, ym.Month)
	n.NavigationRequested.Emit(ctx, YearMonth{Year: y, Month: m})
}
