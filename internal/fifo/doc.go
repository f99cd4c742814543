// Package fifo provides the bounded packet queues that connect the reader to
// its downstream consumers.
//
// A Fifo has a fixed capacity chosen by the owning pipeline. Producers may
// either check IsFull and Push, or call PushContext which blocks until
// capacity frees up or the context ends. The reader is the only writer of
// every queue; consumers Pop until the queue is closed and drained.
package fifo
