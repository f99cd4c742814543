package mpegts

import (
	"errors"
	"io"
	"maps"
	"slices"
)

// accumulator buffers payloads for one PID until the next unit start.
type accumulator struct {
	lastCC  uint8
	started bool
	buf     []byte
}

func (a *accumulator) add(p *Packet) (flushed []byte) {
	if p.TransportError {
		a.reset()
		return nil
	}
	if !p.HasPayload {
		return nil
	}
	if a.started && !p.Discontinuity {
		expected := (a.lastCC + 1) & 0x0F
		if p.ContinuityCounter != expected {
			if p.ContinuityCounter == a.lastCC {
				return nil // duplicate
			}
			a.reset()
		}
	}
	a.lastCC = p.ContinuityCounter
	if p.PayloadUnitStart {
		if a.started && len(a.buf) > 0 {
			flushed = a.buf
		}
		a.buf = append([]byte(nil), p.Payload...)
		a.started = true
		return flushed
	}
	if !a.started {
		return nil // joined mid-unit
	}
	a.buf = append(a.buf, p.Payload...)
	return nil
}

func (a *accumulator) reset() {
	a.buf = nil
	a.started = false
}

func (a *accumulator) flush() []byte {
	out := a.buf
	a.reset()
	return out
}

// Demuxer reads transport packets and yields PAT entries, programs and
// reassembled PES packets in arrival order.
type Demuxer struct {
	r       io.Reader
	readBuf []byte
	accs    map[uint16]*accumulator
	pmtPIDs map[uint16]bool
	pending []*Unit
	eof     bool
}

// NewDemuxer returns a demuxer reading 188-byte packets from r.
func NewDemuxer(r io.Reader) *Demuxer {
	return &Demuxer{
		r:       r,
		readBuf: make([]byte, PacketSize),
		accs:    make(map[uint16]*accumulator),
		pmtPIDs: make(map[uint16]bool),
	}
}

// Next returns the next parsed unit, io.EOF once the input and every
// buffered PES have been consumed.
func (d *Demuxer) Next() (*Unit, error) {
	for {
		if len(d.pending) > 0 {
			u := d.pending[0]
			d.pending = d.pending[1:]
			return u, nil
		}
		if d.eof {
			return nil, io.EOF
		}

		if _, err := io.ReadFull(d.r, d.readBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				d.eof = true
				d.drain()
				continue
			}
			return nil, err
		}
		pkt, err := ParsePacket(d.readBuf)
		if err != nil || pkt.PID == pidNull {
			continue // skip corrupt and null packets
		}
		d.handle(pkt)
	}
}

func (d *Demuxer) handle(pkt *Packet) {
	acc, ok := d.accs[pkt.PID]
	if !ok {
		acc = &accumulator{}
		d.accs[pkt.PID] = acc
	}
	if flushed := acc.add(pkt); flushed != nil {
		d.process(pkt.PID, flushed)
	}
	// PSI sections are complete as soon as their announced length arrives.
	if d.isPSI(pkt.PID) && acc.started && sectionComplete(acc.buf) {
		d.process(pkt.PID, acc.flush())
	}
}

func (d *Demuxer) isPSI(pid uint16) bool {
	return pid == pidPAT || d.pmtPIDs[pid]
}

func (d *Demuxer) drain() {
	// PID order keeps the tail deterministic.
	for _, pid := range slices.Sorted(maps.Keys(d.accs)) {
		if buf := d.accs[pid].flush(); len(buf) > 0 && !d.isPSI(pid) {
			d.process(pid, buf)
		}
	}
}

func (d *Demuxer) process(pid uint16, payload []byte) {
	if d.isPSI(pid) {
		sections, _ := parseSections(payload)
		for _, s := range sections {
			switch s[0] {
			case tableIDPAT:
				entries, err := parsePAT(s)
				if err != nil {
					continue
				}
				for _, e := range entries {
					d.pmtPIDs[e.PMTPID] = true
				}
				d.pending = append(d.pending, &Unit{PAT: entries})
			case tableIDPMT:
				prog, err := parsePMT(s)
				if err != nil {
					continue
				}
				d.pending = append(d.pending, &Unit{Program: prog})
			}
		}
		return
	}
	if !isPESPayload(payload) {
		return
	}
	pes, err := parsePES(pid, payload)
	if err != nil {
		return
	}
	d.pending = append(d.pending, &Unit{PES: pes})
}
