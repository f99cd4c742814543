package reader

import (
	"context"
	"errors"
	"sync"

	"ripfeed/internal/es"
	"ripfeed/internal/job"
	"ripfeed/internal/source"
)

// fakeMedia serves numbered units; unit i is reported in chapters[i].
type fakeMedia struct {
	chapters []int
	next     int
	closes   int
}

func (m *fakeMedia) CurrentChapter() int {
	if m.next >= len(m.chapters) {
		return -1
	}
	return m.chapters[m.next]
}

func (m *fakeMedia) ReadUnit(u *source.Unit) bool {
	if m.next >= len(m.chapters) {
		return false
	}
	u.Data = append(u.Data[:0], byte(m.next))
	m.next++
	return true
}

func (m *fakeMedia) Close() error {
	m.closes++
	return nil
}

type fakeDisc struct {
	fakeMedia
	startOK  bool
	starts   [][2]int
	stops    int
	stopSeen bool // Stop happened before Close
}

func (d *fakeDisc) Kind() source.Kind { return source.KindDisc }

func (d *fakeDisc) Start(titleIndex, chapter int) bool {
	d.starts = append(d.starts, [2]int{titleIndex, chapter})
	if !d.startOK {
		return false
	}
	// Skip units before the requested chapter.
	for d.next < len(d.chapters) && d.chapters[d.next] < chapter {
		d.next++
	}
	return true
}

func (d *fakeDisc) Stop() {
	d.stops++
	d.stopSeen = d.closes == 0
}

type fakeStream struct {
	fakeMedia
	selected []es.ID
}

func (s *fakeStream) Kind() source.Kind { return source.KindStream }

func (s *fakeStream) CurrentChapter() int { return 1 }

func (s *fakeStream) SelectAudio(id es.ID) {
	s.selected = append(s.selected, id)
}

type fakeOpener struct {
	disc       *fakeDisc
	stream     *fakeStream
	discOpens  int
	streamOpen int
}

func (o *fakeOpener) OpenDisc(string) (source.Disc, error) {
	o.discOpens++
	if o.disc == nil {
		return nil, source.ErrNotDisc
	}
	return o.disc, nil
}

func (o *fakeOpener) OpenStream(string) (source.Stream, error) {
	o.streamOpen++
	if o.stream == nil {
		return nil, source.ErrNotStream
	}
	return o.stream, nil
}

// fakeDemuxer returns copies of units[unit.Data[0]].
type fakeDemuxer struct {
	units [][]es.ID
}

func (d *fakeDemuxer) Demux(unit []byte) ([]*es.Packet, error) {
	if len(unit) != 1 || int(unit[0]) >= len(d.units) {
		return nil, errors.New("unknown unit")
	}
	ids := d.units[unit[0]]
	out := make([]*es.Packet, len(ids))
	for i, id := range ids {
		out[i] = &es.Packet{ID: id, PTS: es.NoPTS, Data: []byte{unit[0], byte(i)}}
	}
	return out, nil
}

// pollQueue only offers IsFull and Push, forcing the polling discipline.
type pollQueue struct {
	mu       sync.Mutex
	capacity int
	full     bool
	packets  []*es.Packet
	overrun  bool
}

func (q *pollQueue) IsFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.full || (q.capacity > 0 && len(q.packets) >= q.capacity)
}

func (q *pollQueue) Push(p *es.Packet) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full || (q.capacity > 0 && len(q.packets) >= q.capacity) {
		q.overrun = true
	}
	q.packets = append(q.packets, p)
}

func (q *pollQueue) Packets() []*es.Packet {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*es.Packet(nil), q.packets...)
}

func (q *pollQueue) setFull(full bool) {
	q.mu.Lock()
	q.full = full
	q.mu.Unlock()
}

// rejectQueue ends the job on its first push and refuses the packet.
type rejectQueue struct {
	pollQueue
	job *job.Job
}

func (q *rejectQueue) PushContext(context.Context, *es.Packet) error {
	q.job.MarkDone()
	return errors.New("rejected")
}
