package reader

import (
	"context"
	"time"

	"ripfeed/internal/es"
	"ripfeed/internal/title"
)

// contextPusher is a queue that can block until it has room.
type contextPusher interface {
	PushContext(ctx context.Context, pkt *es.Packet) error
}

// push delivers pkt to q, waiting while q is full. It returns false, and
// pkt is dropped, when ctx ends before the queue has room. The sequence
// number is consumed only by a delivered packet.
func (r *Reader) push(ctx context.Context, q title.Queue, pkt *es.Packet) bool {
	pkt.Sequence = r.sequence
	if cp, ok := q.(contextPusher); ok {
		if err := cp.PushContext(ctx, pkt); err != nil {
			return false
		}
		r.sequence++
		return true
	}

	if q.IsFull() {
		if !r.waitForRoom(ctx, q) {
			return false
		}
	}
	q.Push(pkt)
	r.sequence++
	return true
}

// waitForRoom polls q every poll interval until it has room or ctx ends.
func (r *Reader) waitForRoom(ctx context.Context, q title.Queue) bool {
	timer := time.NewTimer(r.pollInterval)
	defer timer.Stop()
	for q.IsFull() {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			timer.Reset(r.pollInterval)
		}
	}
	return true
}
