package sse

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishNoteEventDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishNoteEvent("registered", "2020-01-01_00-00-01.txt")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.registered") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"2020-01-01_00-00-01.txt"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishNoteEvent_GraphThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger graph.updated; the second, inside the
	// throttle window, should not.
	b.PublishNoteEvent("registered", "2020-01-01_00-00-01.txt")
	b.PublishNoteEvent("deregistered", "2020-01-01_00-00-01.txt")

	time.Sleep(50 * time.Millisecond)
	graphCount := 0
	noteCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "graph.updated") {
				graphCount++
			} else {
				noteCount++
			}
		default:
			break loop
		}
	}

	if noteCount != 2 {
		t.Errorf("note events = %d, want 2", noteCount)
	}
	if graphCount != 1 {
		t.Errorf("graph events = %d, want 1 (throttled)", graphCount)
	}
}

func TestSSEHandlerStreams(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(rec, req)
		close(done)
	}()

	// Wait for the subscription, publish, then disconnect the client.
	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	b.PublishNoteEvent("registered", "2020-01-01_00-00-01.txt")
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "note.registered") {
		t.Errorf("stream missing event: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
}
