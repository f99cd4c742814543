package fifo

import (
	"context"
	"sync"

	"ripfeed/internal/es"
)

// Fifo is a bounded, single-writer packet queue.
type Fifo struct {
	name      string
	ch        chan *es.Packet
	closeOnce sync.Once
}

// New creates a queue holding at most capacity packets. Capacities below one
// are raised to one.
func New(name string, capacity int) *Fifo {
	if capacity < 1 {
		capacity = 1
	}
	return &Fifo{name: name, ch: make(chan *es.Packet, capacity)}
}

// Name returns the label the queue was created with.
func (f *Fifo) Name() string {
	return f.name
}

// IsFull reports whether a Push would have to wait.
func (f *Fifo) IsFull() bool {
	return len(f.ch) >= cap(f.ch)
}

// Len returns the number of queued packets.
func (f *Fifo) Len() int {
	return len(f.ch)
}

// Cap returns the queue capacity.
func (f *Fifo) Cap() int {
	return cap(f.ch)
}

// Push appends pkt. Callers must have observed IsFull() == false; with a
// single writer the send then never blocks.
func (f *Fifo) Push(pkt *es.Packet) {
	f.ch <- pkt
}

// PushContext appends pkt, waiting for free capacity until ctx ends.
func (f *Fifo) PushContext(ctx context.Context, pkt *es.Packet) error {
	select {
	case f.ch <- pkt:
		return nil
	default:
	}
	select {
	case f.ch <- pkt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop removes the oldest packet, waiting until one is available. It returns
// false once the queue is closed and empty, or when ctx ends.
func (f *Fifo) Pop(ctx context.Context) (*es.Packet, bool) {
	select {
	case pkt, ok := <-f.ch:
		return pkt, ok
	case <-ctx.Done():
		return nil, false
	}
}

// Close marks the end of the stream. Only the writer side may call it, after
// its last push.
func (f *Fifo) Close() {
	f.closeOnce.Do(func() { close(f.ch) })
}
