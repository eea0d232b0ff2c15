package broadcast

import (
	"testing"
)

func collect[T any](c <-chan T, n int) []T {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, <-c)
	}
	return out
}

func TestBroadcaster_FanOutInOrder(t *testing.T) {
	b := New[int](5, nil)
	defer b.Close()

	s1 := b.Subscribe()
	s2 := b.Subscribe()

	for i := 1; i <= 3; i++ {
		b.Publish(i)
	}

	for _, s := range []*Subscription[int]{s1, s2} {
		got := collect(s.C(), 3)
		for i, v := range got {
			if v != i+1 {
				t.Errorf("got %v, want [1 2 3]", got)
				break
			}
		}
	}
}

func TestBroadcaster_ReplayToLateSubscriber(t *testing.T) {
	b := New[int](3, nil)
	defer b.Close()

	for i := 1; i <= 5; i++ {
		b.Publish(i)
	}

	// Late subscriber gets only the most recent 3, oldest first
	s := b.Subscribe()
	got := collect(s.C(), 3)
	want := []int{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("replay = %v, want %v", got, want)
		}
	}

	// Live delivery continues after replay
	b.Publish(6)
	if v := <-s.C(); v != 6 {
		t.Errorf("live value = %d, want 6", v)
	}
}

func TestBroadcaster_CancelDetaches(t *testing.T) {
	b := New[int](5, nil)
	defer b.Close()

	s := b.Subscribe()
	if n := b.SubscriberCount(); n != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", n)
	}

	s.Cancel()
	s.Cancel() // idempotent

	if n := b.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}

	// Channel is closed after cancel
	if _, ok := <-s.C(); ok {
		t.Error("channel should be closed after Cancel")
	}

	// Publishing after cancel must not panic
	b.Publish(1)
}

func TestBroadcaster_SlowSubscriberDrops(t *testing.T) {
	b := New[int](1, nil)
	defer b.Close()

	s := b.Subscribe()

	// Overfill well past the channel buffer; Publish must never block
	for i := 0; i < 100; i++ {
		b.Publish(i)
	}

	_, dropped := b.Stats()
	if dropped == 0 {
		t.Error("expected drops for a slow subscriber")
	}

	// Subscriber still receives the earliest buffered values
	if v := <-s.C(); v != 0 {
		t.Errorf("first value = %d, want 0", v)
	}
}

func TestBroadcaster_Close(t *testing.T) {
	b := New[int](5, nil)
	s := b.Subscribe()

	b.Close()
	b.Close() // idempotent

	if _, ok := <-s.C(); ok {
		t.Error("channel should be closed after broadcaster Close")
	}

	// Subscribing after close yields a closed subscription
	late := b.Subscribe()
	if _, ok := <-late.C(); ok {
		t.Error("late subscription should be closed")
	}

	b.Publish(1) // no-op, must not panic
}

func TestRing(t *testing.T) {
	r := newRing[string](2)

	if got := r.values(); len(got) != 0 {
		t.Errorf("empty ring values = %v", got)
	}

	r.push("a")
	r.push("b")
	r.push("c") // evicts "a"

	got := r.values()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("values = %v, want [b c]", got)
	}
	if r.len() != 2 {
		t.Errorf("len = %d, want 2", r.len())
	}
}
