package fifo

import (
	"context"
	"errors"
	"testing"
	"time"

	"ripfeed/internal/es"
)

func TestFifoFullness(t *testing.T) {
	q := New("video", 2)
	if q.IsFull() {
		t.Fatal("new queue must not be full")
	}
	q.Push(&es.Packet{Sequence: 0})
	q.Push(&es.Packet{Sequence: 1})
	if !q.IsFull() {
		t.Fatal("expected queue to be full at capacity")
	}
	if q.Len() != 2 || q.Cap() != 2 {
		t.Fatalf("len=%d cap=%d, want 2/2", q.Len(), q.Cap())
	}

	pkt, ok := q.Pop(context.Background())
	if !ok || pkt.Sequence != 0 {
		t.Fatalf("Pop = %+v, %v; want sequence 0", pkt, ok)
	}
	if q.IsFull() {
		t.Fatal("queue should have room after pop")
	}
}

func TestFifoMinimumCapacity(t *testing.T) {
	if got := New("x", 0).Cap(); got != 1 {
		t.Fatalf("Cap() = %d, want 1", got)
	}
}

func TestPushContextCancelled(t *testing.T) {
	q := New("audio", 1)
	q.Push(&es.Packet{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.PushContext(ctx, &es.Packet{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("PushContext error = %v, want deadline exceeded", err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, dropped packet must not be queued", q.Len())
	}
}

func TestPushContextWaitsForConsumer(t *testing.T) {
	q := New("sub", 1)
	q.Push(&es.Packet{Sequence: 1})

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Pop(context.Background())
	}()

	if err := q.PushContext(context.Background(), &es.Packet{Sequence: 2}); err != nil {
		t.Fatalf("PushContext: %v", err)
	}
	pkt, ok := q.Pop(context.Background())
	if !ok || pkt.Sequence != 2 {
		t.Fatalf("Pop = %+v, %v; want sequence 2", pkt, ok)
	}
}

func TestCloseDrains(t *testing.T) {
	q := New("video", 4)
	q.Push(&es.Packet{Sequence: 7})
	q.Close()
	q.Close()

	if pkt, ok := q.Pop(context.Background()); !ok || pkt.Sequence != 7 {
		t.Fatalf("Pop after close = %+v, %v; want queued packet", pkt, ok)
	}
	if _, ok := q.Pop(context.Background()); ok {
		t.Fatal("expected closed queue to report end of stream")
	}
}
