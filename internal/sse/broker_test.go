package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"

	"github.com/starford/jotter/internal/account"
	"github.com/starford/jotter/internal/models"
)

// drain collects whatever is buffered on ch right now.
func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("u1")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublish_ScopedToOwner(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ada := b.Subscribe("ada")
	defer b.Unsubscribe(ada)
	bob := b.Subscribe("bob")
	defer b.Unsubscribe(bob)

	b.Publish(Event{Type: "idea.created", Owner: "ada", Data: map[string]string{"id": "i1"}})

	select {
	case msg := <-ada:
		s := string(msg)
		if !strings.Contains(s, "event: idea.created") || !strings.Contains(s, `"id":"i1"`) {
			t.Errorf("unexpected message %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	// Delivery to all clients happens in one loop step, so bob's buffer is final.
	if got := drain(bob); len(got) != 0 {
		t.Errorf("bob received ada's event: %v", got)
	}
}

func TestPublish_BroadcastWithoutOwner(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ada := b.Subscribe("ada")
	bob := b.Subscribe("bob")

	b.Publish(Event{Type: "server.notice", Data: map[string]string{}})

	for name, ch := range map[string]chan []byte{"ada": ada, "bob": bob} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Errorf("%s did not receive the ownerless event", name)
		}
	}
}

func TestPublishIdeaEvent_BoardThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("ada")
	defer b.Unsubscribe(ch)

	b.PublishIdeaEvent("ada", "idea.created", "a")
	b.PublishIdeaEvent("ada", "idea.updated", "b")

	time.Sleep(50 * time.Millisecond)
	boardCount, ideaCount := 0, 0
	for _, s := range drain(ch) {
		if strings.Contains(s, BoardUpdated) {
			boardCount++
		} else {
			ideaCount++
		}
	}
	if ideaCount != 2 {
		t.Errorf("idea events = %d, want 2", ideaCount)
	}
	if boardCount != 1 {
		t.Errorf("board events = %d, want 1 (throttled)", boardCount)
	}
}

func TestPublishIdeaEvent_ThrottleIsPerOwner(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ada := b.Subscribe("ada")
	bob := b.Subscribe("bob")

	b.PublishIdeaEvent("ada", "idea.created", "a")
	b.PublishIdeaEvent("bob", "idea.created", "b")
	time.Sleep(50 * time.Millisecond)

	for name, ch := range map[string]chan []byte{"ada": ada, "bob": bob} {
		board := 0
		for _, s := range drain(ch) {
			if strings.Contains(s, BoardUpdated) {
				board++
			}
		}
		if board != 1 {
			t.Errorf("%s board events = %d, want 1", name, board)
		}
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = account.WithUser(ctx, &models.User{ID: "ada"})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishIdeaEvent("ada", "idea.updated", "x")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: idea.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestSSEHandler_RequiresUser(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("ada")
	defer b.Unsubscribe(ch)

	// Capacity is 64; overflowing must not block the loop.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Owner: "ada", Data: map[string]string{"i": "x"}})
	}
	if b.ClientCount() != 1 {
		t.Error("broker loop stalled")
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	defer leaktest.Check(t)()

	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe("ada")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: "idea.updated", Owner: "ada", Data: map[string]string{"id": "x"}})
	b.PublishIdeaEvent("ada", "idea.updated", "x")
}
