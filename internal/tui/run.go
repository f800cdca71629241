package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"time-tracker/internal/apperr"
	"time-tracker/internal/model"
	"time-tracker/internal/viewmodel"
)

type statusMsg string

// promptConfirmer asks through the running program and waits for y/n.
type promptConfirmer struct {
	send func(tea.Msg)
}

func (c *promptConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	reply := make(chan bool, 1)
	c.send(confirmMsg{question: question, reply: reply})
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Run shows the calendar for user until the user quits. Notifications
// published on notifier appear in the status line.
func Run(ctx context.Context, svc viewmodel.TimeTracker, notifier *apperr.Notifier, user model.UserContext) error {
	confirm := &promptConfirmer{}
	page := viewmodel.NewTimeEntryPage(svc, confirm, user)
	defer page.Close()

	p := tea.NewProgram(newModel(ctx, page), tea.WithAltScreen(), tea.WithContext(ctx))
	confirm.send = p.Send
	if notifier != nil {
		unsubscribe := notifier.Subscribe(func(n apperr.Notification) {
			p.Send(statusMsg(n.Message))
		})
		defer unsubscribe()
	}

	_, err := p.Run()
	return err
}
