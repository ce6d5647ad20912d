package core

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/roomchat/internal/session"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return nil
		}
	}
}

func mustError(t *testing.T, ch <-chan *Event, code string) {
	t.Helper()

	ev := mustEvent(t, ch, EventError)
	if ev.Error == nil || ev.Error.Code != code {
		t.Fatalf("expected %s error, got %+v", code, ev.Error)
	}
}

// noEvent fails if an event of kind arrives within wait.
func noEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.After(wait)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected %v event: %+v", kind, ev)
			}
		case <-deadline:
			return
		}
	}
}

func startHub(t *testing.T, rooms Memberships) (*Hub, *session.Registry) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	registry := session.NewRegistry()
	hub := NewHub(registry, rooms, nil)
	go hub.Run(ctx)

	return hub, registry
}

func connect(t *testing.T, hub *Hub) *Client {
	t.Helper()

	c := NewClient("", 0)
	if !hub.RegisterClient(c) {
		t.Fatal("hub is not running")
	}
	t.Cleanup(func() { hub.UnregisterClient(c) })
	return c
}

func hello(t *testing.T, c *Client, identity string) {
	t.Helper()

	c.Commands <- &Command{Kind: CommandHello, Identity: identity}
	ev := mustEvent(t, c.Events, EventIdentityBound)
	if ev.User != identity {
		t.Fatalf("bound identity = %q, want %q", ev.User, identity)
	}
}

func join(t *testing.T, c *Client, room int64) {
	t.Helper()

	c.Commands <- &Command{Kind: CommandJoinRoom, Room: room}
	ev := mustEvent(t, c.Events, EventRoomJoined)
	if ev.Room != room {
		t.Fatalf("joined room = %d, want %d", ev.Room, room)
	}
}
