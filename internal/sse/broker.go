// Package sse streams user notifications and data-change events to browsers
// over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"time-tracker/internal/apperr"
	"time-tracker/internal/logger"
	"time-tracker/internal/model"
)

const (
	TypeNotification   = "notification"
	TypeEntriesChanged = "entries.changed"
	TypeProjectChanged = "projects.changed"
	TypeSummaryChanged = "summary.changed"

	keepAlive = 30 * time.Second
)

// Event is delivered to the clients of UserID, or to everyone when All is set.
type Event struct {
	Type   string
	Data   any
	UserID string
	All    bool
}

type client struct {
	ch     chan []byte
	userID string
}

// Broker fans events out to connected clients. A single goroutine owns the
// client set; public methods talk to it over channels.
type Broker struct {
	subscribeCh   chan client
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan client),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]string)

	deliver := func(ev Event) {
		// anonymous callers share userID "", so their events have no audience
		if !ev.All && ev.UserID == "" {
			return
		}
		payload, err := json.Marshal(ev.Data)
		if err != nil {
			logger.Warn("sse marshal failed", "type", ev.Type, "err", err)
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, payload))
		for ch, userID := range clients {
			if !ev.All && userID != ev.UserID {
				continue
			}
			select {
			case ch <- raw:
			default:
				// slow client, drop rather than block the loop
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case c := <-b.subscribeCh:
			clients[c.ch] = c.userID

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case ev := <-b.publishCh:
			deliver(ev)

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Shutdown lets a DI container stop the broker.
func (b *Broker) Shutdown() error {
	b.Close()
	return nil
}

// Subscribe registers a client for userID ("" for anonymous sessions).
func (b *Broker) Subscribe(userID string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- client{ch: ch, userID: userID}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

func (b *Broker) Publish(ev Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- ev:
	case <-b.stopped:
	}
}

// PublishNotification forwards a user-facing error notification to the user
// it belongs to.
func (b *Broker) PublishNotification(n apperr.Notification) {
	b.Publish(Event{Type: TypeNotification, Data: n, UserID: n.UserID})
}

// PublishSummary announces a new or cleared summary for userID.
func (b *Broker) PublishSummary(userID, text string) {
	b.Publish(Event{Type: TypeSummaryChanged, Data: map[string]string{"summary": text}, UserID: userID})
}

// ServeHTTP streams events for the caller resolved on the request context.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	userID, _ := model.UserID(model.UserFrom(r.Context()))
	ch := b.Subscribe(userID)
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
