package mqtt

import (
	"fmt"
	"testing"
)

func msg(i int) queuedMsg {
	return queuedMsg{topic: Topic, payload: []byte(fmt.Sprintf("m%d", i))}
}

func TestReplayQueueEmpty(t *testing.T) {
	q := newReplayQueue(10)
	if q.size() != 0 {
		t.Errorf("size = %d, want 0", q.size())
	}
	if got := q.drain(); got != nil {
		t.Errorf("drain of empty queue = %v, want nil", got)
	}
}

func TestReplayQueueOrder(t *testing.T) {
	q := newReplayQueue(10)
	for i := 0; i < 5; i++ {
		q.add(msg(i))
	}
	if q.size() != 5 {
		t.Fatalf("size = %d, want 5", q.size())
	}

	out := q.drain()
	if len(out) != 5 {
		t.Fatalf("drained %d, want 5", len(out))
	}
	for i, m := range out {
		if string(m.payload) != fmt.Sprintf("m%d", i) {
			t.Errorf("position %d: got %s", i, m.payload)
		}
	}
	if q.size() != 0 {
		t.Errorf("size after drain = %d, want 0", q.size())
	}
}

func TestReplayQueueDropsOldestWhenFull(t *testing.T) {
	q := newReplayQueue(3)
	for i := 0; i < 5; i++ {
		q.add(msg(i))
	}

	if q.size() != 3 {
		t.Fatalf("size = %d, want 3", q.size())
	}
	if q.dropped != 2 {
		t.Errorf("dropped = %d, want 2", q.dropped)
	}

	out := q.drain()
	want := []string{"m2", "m3", "m4"}
	for i, m := range out {
		if string(m.payload) != want[i] {
			t.Errorf("position %d: got %s, want %s", i, m.payload, want[i])
		}
	}
}

func TestReplayQueueDrainResetsDropped(t *testing.T) {
	q := newReplayQueue(1)
	q.add(msg(0))
	q.add(msg(1))
	if q.dropped != 1 {
		t.Fatalf("dropped = %d, want 1", q.dropped)
	}

	q.drain()
	if q.dropped != 0 {
		t.Errorf("dropped after drain = %d, want 0", q.dropped)
	}

	// Reusable after drain.
	q.add(msg(2))
	out := q.drain()
	if len(out) != 1 || string(out[0].payload) != "m2" {
		t.Errorf("unexpected contents after reuse: %v", out)
	}
}
