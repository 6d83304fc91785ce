package gateway

import (
	"testing"
	"time"
)

func TestFanoutDeliversToEveryClient(t *testing.T) {
	f := NewFanout(2, 16)

	a := NewClient("c1", "alice", nil)
	b := NewClient("c2", "bob", nil)

	f.Broadcast([]*Client{a, b}, []byte("hello"))

	for _, c := range []*Client{a, b} {
		select {
		case got := <-c.Send:
			if string(got) != "hello" {
				t.Fatalf("payload = %q", got)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %s never received the payload", c.ConnID)
		}
	}
}

func TestFanoutSkipsSlowClient(t *testing.T) {
	f := NewFanout(1, 16)

	slow := NewClient("c1", "alice", nil)
	for i := 0; i < sendQueueSize; i++ {
		slow.Send <- []byte("backlog")
	}
	healthy := NewClient("c2", "bob", nil)

	f.Broadcast([]*Client{slow, healthy}, []byte("ping"))

	select {
	case got := <-healthy.Send:
		if string(got) != "ping" {
			t.Fatalf("payload = %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("healthy client starved by a slow sibling")
	}
}

func TestFanoutSurvivesDisconnectedClient(t *testing.T) {
	f := NewFanout(1, 16)

	gone := NewClient("c1", "alice", nil)
	gone.teardown()
	healthy := NewClient("c2", "bob", nil)

	// The single worker must outlive the torn-down client; if it dies the
	// pool is empty and nobody on this node gets anything.
	f.Broadcast([]*Client{gone, healthy}, []byte("first"))
	f.Broadcast([]*Client{healthy}, []byte("second"))

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-healthy.Send:
			if string(got) != want {
				t.Fatalf("payload = %q, want %q", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("worker never delivered %q after a disconnected sibling", want)
		}
	}
}

func TestFanoutIgnoresEmptyWork(t *testing.T) {
	f := NewFanout(1, 1)
	f.Broadcast(nil, []byte("x"))
	f.Broadcast([]*Client{NewClient("c1", "alice", nil)}, nil)
}
