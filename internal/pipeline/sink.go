package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ripfeed/internal/es"
	"ripfeed/internal/fifo"
)

// Output summarizes what one consumer received.
type Output struct {
	Queue   string
	Path    string
	Packets int64
	Bytes   int64
	// LastSequence is the highest sequence number seen, -1 when none.
	LastSequence int64
}

// Sink consumes one queue until it is closed and drained or ctx ends.
type Sink interface {
	Consume(ctx context.Context, q *fifo.Fifo) (Output, error)
}

// DiscardSink drains a queue, counting what it drops.
type DiscardSink struct{}

// Consume implements Sink.
func (DiscardSink) Consume(ctx context.Context, q *fifo.Fifo) (Output, error) {
	out := Output{Queue: q.Name(), LastSequence: -1}
	for {
		pkt, ok := q.Pop(ctx)
		if !ok {
			return out, nil
		}
		out.record(pkt)
	}
}

// FileSink appends every payload of a queue to one file per stream.
type FileSink struct {
	Dir string
}

// Consume implements Sink. The file is created on the first packet so empty
// streams leave nothing behind.
func (s FileSink) Consume(ctx context.Context, q *fifo.Fifo) (Output, error) {
	out := Output{Queue: q.Name(), LastSequence: -1}
	var (
		file *os.File
		w    *bufio.Writer
	)
	closeFile := func() error {
		if file == nil {
			return nil
		}
		if err := w.Flush(); err != nil {
			_ = file.Close()
			return fmt.Errorf("flush %s: %w", out.Path, err)
		}
		return file.Close()
	}

	for {
		pkt, ok := q.Pop(ctx)
		if !ok {
			return out, closeFile()
		}
		if file == nil {
			if err := os.MkdirAll(s.Dir, 0o755); err != nil {
				return out, fmt.Errorf("create output dir: %w", err)
			}
			out.Path = filepath.Join(s.Dir, StreamFileName(q.Name()))
			f, err := os.Create(out.Path)
			if err != nil {
				return out, fmt.Errorf("create stream file: %w", err)
			}
			file, w = f, bufio.NewWriterSize(f, 256*1024)
		}
		if _, err := w.Write(pkt.Data); err != nil {
			_ = closeFile()
			return out, fmt.Errorf("write %s: %w", out.Path, err)
		}
		out.record(pkt)
	}
}

func (o *Output) record(pkt *es.Packet) {
	o.Packets++
	o.Bytes += int64(len(pkt.Data))
	if int64(pkt.Sequence) > o.LastSequence {
		o.LastSequence = int64(pkt.Sequence)
	}
}

// QueueName labels the queue of a stream as <kind>-<id>.
func QueueName(kind es.Kind, id es.ID) string {
	return fmt.Sprintf("%s-%s", kind, strings.ToLower(strings.TrimPrefix(id.String(), "0x")))
}

// StreamFileName is the output file name for a queue.
func StreamFileName(queue string) string {
	return queue + ".es"
}
