// Package viewmodel holds UI-independent screen state for the time entry page
// and the notifications a renderer subscribes to.
package viewmodel

import (
	"context"
	"sync"
	"time"

	"time-tracker/internal/model"
)

// Event is a callback registry. Handlers run synchronously in subscription
// order on the emitting goroutine.
type Event[T any] struct {
	mu       sync.Mutex
	next     int
	handlers []handler[T]
}

type handler[T any] struct {
	id int
	fn func(context.Context, T)
}

// Subscribe registers fn and returns a func that removes it.
func (e *Event[T]) Subscribe(fn func(context.Context, T)) func() {
	e.mu.Lock()
	id := e.next
	e.next++
	e.handlers = append(e.handlers, handler[T]{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, h := range e.handlers {
			if h.id == id {
				e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
				return
			}
		}
	}
}

func (e *Event[T]) Emit(ctx context.Context, v T) {
	e.mu.Lock()
	hs := make([]handler[T], len(e.handlers))
	copy(hs, e.handlers)
	e.mu.Unlock()

	for _, h := range hs {
		h.fn(ctx, v)
	}
}

// Signal is an event without payload.
type Signal = Event[struct{}]

func notify(ctx context.Context, s *Signal) { s.Emit(ctx, struct{}{}) }

type YearMonth struct {
	Year  int
	Month time.Month
}

// TimeTracker is the part of the time tracking service the view-models use.
type TimeTracker interface {
	GetWorkDaysForMonth(ctx context.Context, user model.UserContext, year int, month time.Month) []model.WorkDay
	GetProjects(ctx context.Context, user model.UserContext) []model.Project
	GetRoundedDailyTotal(ctx context.Context, user model.UserContext, date time.Time) float64
	AddTimeEntry(ctx context.Context, user model.UserContext, entry model.TimeEntry) bool
	DeleteTimeEntry(ctx context.Context, user model.UserContext, id int) bool
	CreateProject(ctx context.Context, user model.UserContext, name string) *model.Project
	ArchiveProject(ctx context.Context, id int)
	DeleteProject(ctx context.Context, id int)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) { return f(ctx, message) }

// entriesOn returns the entries of the WorkDay matching day, or nil.
func entriesOn(days []model.WorkDay, day time.Time) []model.TimeEntry {
	y, m, d := day.Date()
	for _, wd := range days {
		wy, wm, wdd := wd.Date.Date()
		if wy == y && wm == m && wdd == d {
			return wd.TimeEntries
		}
	}
	return nil
}
