package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"time-tracker/internal/apperr"
	"time-tracker/internal/model"
)

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func assertSilent(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("alice")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublish_RoutesByUser(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	alice := b.Subscribe("alice")
	bob := b.Subscribe("bob")

	b.PublishNotification(apperr.Notification{Message: "boom", Severity: apperr.Error, UserID: "alice"})
	msg := receive(t, alice)
	if !strings.Contains(msg, "event: notification") || !strings.Contains(msg, `"boom"`) {
		t.Errorf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, `"severity":"error"`) {
		t.Errorf("severity not rendered as text in %q", msg)
	}
	assertSilent(t, bob)

	b.Publish(Event{Type: TypeProjectChanged, Data: map[string]int{"id": 1}, All: true})
	if !strings.Contains(receive(t, alice), TypeProjectChanged) {
		t.Error("alice missed broadcast")
	}
	if !strings.Contains(receive(t, bob), TypeProjectChanged) {
		t.Error("bob missed broadcast")
	}
}

func TestPublish_AnonymousNotificationsStayPrivate(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	first := b.Subscribe("")
	second := b.Subscribe("")

	b.PublishNotification(apperr.Notification{Message: "boom", Severity: apperr.Error})
	assertSilent(t, first)
	assertSilent(t, second)

	b.Publish(Event{Type: TypeProjectChanged, Data: map[string]int{"id": 1}, All: true})
	if !strings.Contains(receive(t, first), TypeProjectChanged) {
		t.Error("anonymous client missed broadcast")
	}
	if !strings.Contains(receive(t, second), TypeProjectChanged) {
		t.Error("anonymous client missed broadcast")
	}
}

func TestCloseClosesClients(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("")
	b.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	b.Publish(Event{Type: "x", All: true})
	if b.ClientCount() != 0 {
		t.Fatal("closed broker reports clients")
	}
}

func TestServeHTTP_StreamsForUser(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(model.WithUser(ctx, model.Authenticated{ID: "alice"}))
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	b.PublishSummary("alice", "fresh")
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "event: "+TypeSummaryChanged) {
		t.Errorf("summary event missing from %q", w.Body.String())
	}
}
