package apperr

import (
	"context"
	"net/http"
	"sync"
	"time"

	"time-tracker/internal/logger"
	"time-tracker/internal/model"
)

type Severity int

const (
	Information Severity = iota
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Information:
		return "information"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "error"
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Notification is what the user gets to see about a failure.
type Notification struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Source   string    `json:"source"`
	UserID   string    `json:"user_id,omitempty"`
	At       time.Time `json:"at"`
}

const (
	MsgDatabase     = "A database error occurred. Please try again later."
	MsgUnauthorized = "You are not authorized. Please sign in again."
	MsgNotFound     = "The requested resource could not be found."
	MsgBadRequest   = "Invalid request. Please check your input."
	MsgAPIDefault   = "An error occurred while communicating with the server."
	MsgUnexpected   = "An unexpected error occurred. Please try again later."
)

// Reporter receives classified failures. Every method logs with the
// operation name as source.
type Reporter interface {
	HandleDatabaseError(ctx context.Context, err error, source string)
	HandleAPIError(ctx context.Context, err *APIError, source string)
	HandleValidationError(ctx context.Context, err *ValidationError, source string)
	HandleException(ctx context.Context, err error, source string)
}

// Notifier is a subscription registry for user-visible notifications.
type Notifier struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Notification)
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(Notification))}
}

// Subscribe registers fn and returns a func that removes it.
func (n *Notifier) Subscribe(fn func(Notification)) func() {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *Notifier) Publish(note Notification) {
	n.mu.RLock()
	fns := make([]func(Notification), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()
	for _, fn := range fns {
		fn(note)
	}
}

type Handler struct {
	notifier *Notifier
	now      func() time.Time
}

func NewHandler(notifier *Notifier) *Handler {
	return &Handler{notifier: notifier, now: time.Now}
}

func (h *Handler) HandleDatabaseError(ctx context.Context, err error, source string) {
	if IsWakeUp(err) {
		logger.FromContext(ctx).Info("database waking up", "source", source, "err", err)
		return
	}
	logger.FromContext(ctx).Error("database error", "source", source, "err", err)
	h.notify(ctx, MsgDatabase, Error, source)
}

func (h *Handler) HandleAPIError(ctx context.Context, err *APIError, source string) {
	logger.FromContext(ctx).Error("api error", "source", source, "status", err.StatusCode, "body", err.Body, "err", err.Err)
	h.notify(ctx, apiMessage(err.StatusCode), Error, source)
}

func (h *Handler) HandleValidationError(ctx context.Context, err *ValidationError, source string) {
	logger.FromContext(ctx).Warn("validation error", "source", source, "message", err.Message, "fields", err.Fields)
	h.notify(ctx, err.Message, Warning, source)
}

func (h *Handler) HandleException(ctx context.Context, err error, source string) {
	logger.FromContext(ctx).Error("unexpected error", "source", source, "err", err)
	h.notify(ctx, MsgUnexpected, Error, source)
}

func (h *Handler) notify(ctx context.Context, msg string, sev Severity, source string) {
	if h.notifier == nil {
		return
	}
	userID, _ := model.UserID(model.UserFrom(ctx))
	h.notifier.Publish(Notification{Message: msg, Severity: sev, Source: source, UserID: userID, At: h.now()})
}

func apiMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return MsgUnauthorized
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusBadRequest:
		return MsgBadRequest
	default:
		return MsgAPIDefault
	}
}
