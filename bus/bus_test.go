package bus

import (
	"testing"

	"github.com/namansharma28/CollabBoard-sub000/domain"
)

func mustEvent(t *testing.T, name, room string) domain.Event {
	t.Helper()
	ev, err := domain.NewEvent(name, room, "", map[string]string{"v": name})
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	return ev
}

func drain(sub *Subscriber) []domain.Event {
	out := []domain.Event{}
	for {
		select {
		case ev := <-sub.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestPublishFansOutToRoomOnly(t *testing.T) {
	b := NewBroker()
	board := NewSubscriber(4)
	team := NewSubscriber(4)
	b.Subscribe(board, "board-1")
	b.Subscribe(team, "team-1")

	b.Publish("board-1", mustEvent(t, "task-created", "board-1"))

	if got := drain(board); len(got) != 1 || got[0].Name != "task-created" {
		t.Fatalf("board subscriber got %+v", got)
	}
	if got := drain(team); len(got) != 0 {
		t.Fatalf("team subscriber must see nothing, got %+v", got)
	}
}

func TestPublishPreservesOrderPerSubscriber(t *testing.T) {
	b := NewBroker()
	sub := NewSubscriber(8)
	b.Subscribe(sub, "board-1")

	names := []string{"task-created", "board-updated", "task-updated"}
	for _, n := range names {
		b.Publish("board-1", mustEvent(t, n, "board-1"))
	}
	got := drain(sub)
	if len(got) != len(names) {
		t.Fatalf("expected %d events, got %d", len(names), len(got))
	}
	for i, n := range names {
		if got[i].Name != n {
			t.Fatalf("event %d: got %q, want %q", i, got[i].Name, n)
		}
	}
}

func TestSubscribeIdempotent(t *testing.T) {
	b := NewBroker()
	sub := NewSubscriber(4)
	b.Subscribe(sub, "board-1")
	b.Subscribe(sub, "board-1")
	if n := b.RoomSize("board-1"); n != 1 {
		t.Fatalf("expected one subscription, got %d", n)
	}
	b.Publish("board-1", mustEvent(t, "task-created", "board-1"))
	if got := drain(sub); len(got) != 1 {
		t.Fatalf("double subscription must not double deliver, got %d events", len(got))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker()
	sub := NewSubscriber(4)
	b.Subscribe(sub, "board-1")
	b.Unsubscribe(sub, "board-1")
	b.Unsubscribe(sub, "board-1") // idempotent

	b.Publish("board-1", mustEvent(t, "task-created", "board-1"))
	if got := drain(sub); len(got) != 0 {
		t.Fatalf("unsubscribed connection must receive nothing, got %+v", got)
	}
	if n := b.RoomSize("board-1"); n != 0 {
		t.Fatalf("expected empty room, got %d", n)
	}
}

func TestUnsubscribeAll(t *testing.T) {
	b := NewBroker()
	sub := NewSubscriber(4)
	other := NewSubscriber(4)
	b.Subscribe(sub, "board-1")
	b.Subscribe(sub, "team-1")
	b.Subscribe(other, "board-1")

	b.UnsubscribeAll(sub)
	if b.RoomSize("board-1") != 1 || b.RoomSize("team-1") != 0 {
		t.Fatalf("unexpected room sizes: board-1=%d team-1=%d", b.RoomSize("board-1"), b.RoomSize("team-1"))
	}

	b.Publish("board-1", mustEvent(t, "task-created", "board-1"))
	if got := drain(other); len(got) != 1 {
		t.Fatalf("remaining subscriber must still receive, got %d", len(got))
	}
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroker()
	sub := NewSubscriber(1)
	b.Subscribe(sub, "board-1")

	b.Publish("board-1", mustEvent(t, "first", "board-1"))
	b.Publish("board-1", mustEvent(t, "second", "board-1"))

	got := drain(sub)
	if len(got) != 1 || got[0].Name != "first" {
		t.Fatalf("expected only the first event to land, got %+v", got)
	}
}

func TestPublishToEmptyRoom(t *testing.T) {
	b := NewBroker()
	// Must not panic or retain anything.
	b.Publish("board-ghost", mustEvent(t, "task-created", "board-ghost"))
	if n := b.RoomSize("board-ghost"); n != 0 {
		t.Fatalf("expected empty room, got %d", n)
	}
}
