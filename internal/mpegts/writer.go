package mpegts

import (
	"fmt"
	"io"
)

const pidPMT = 0x1000

// Writer produces a single-program transport stream. The PAT and PMT are
// emitted before the first PES.
type Writer struct {
	w       io.Writer
	streams []Stream
	cc      map[uint16]uint8
	wrote   bool
}

// NewWriter returns a writer for a program carrying streams.
func NewWriter(w io.Writer, streams []Stream) *Writer {
	return &Writer{w: w, streams: streams, cc: make(map[uint16]uint8)}
}

// WritePES writes one PES packet for pid, splitting it over as many
// transport packets as needed.
func (w *Writer) WritePES(pid uint16, streamID byte, pts int64, data []byte) error {
	if !w.wrote {
		if err := w.writeTables(); err != nil {
			return err
		}
		w.wrote = true
	}
	return w.writePayload(pid, buildPES(streamID, pts, data))
}

func (w *Writer) writeTables() error {
	if err := w.writePayload(pidPAT, withPointer(buildPAT())); err != nil {
		return fmt.Errorf("write PAT: %w", err)
	}
	if err := w.writePayload(pidPMT, withPointer(buildPMT(w.streams))); err != nil {
		return fmt.Errorf("write PMT: %w", err)
	}
	return nil
}

func (w *Writer) writePayload(pid uint16, payload []byte) error {
	start := true
	for len(payload) > 0 || start {
		pkt := make([]byte, PacketSize)
		pkt[0] = syncByte
		pkt[1] = byte(pid>>8) & 0x1F
		if start {
			pkt[1] |= 0x40
		}
		pkt[2] = byte(pid)
		cc := w.cc[pid]
		w.cc[pid] = (cc + 1) & 0x0F

		room := PacketSize - 4
		n := min(len(payload), room)
		if n < room {
			// Pad short payloads with an adaptation field of stuffing.
			pkt[3] = 0x30 | cc
			afLen := room - n - 1
			pkt[4] = byte(afLen)
			if afLen > 0 {
				pkt[5] = 0x00
				for i := 6; i < 5+afLen; i++ {
					pkt[i] = 0xFF
				}
			}
			copy(pkt[5+afLen:], payload[:n])
		} else {
			pkt[3] = 0x10 | cc
			copy(pkt[4:], payload[:n])
		}
		if _, err := w.w.Write(pkt); err != nil {
			return err
		}
		payload = payload[n:]
		start = false
	}
	return nil
}

func withPointer(section []byte) []byte {
	return append([]byte{0x00}, section...)
}

func finishSection(section []byte) []byte {
	length := len(section) - 3 + 4
	section[1] = 0xB0 | byte(length>>8)&0x0F
	section[2] = byte(length)
	crc := CRC32(section)
	return append(section, byte(crc>>24), byte(crc>>16), byte(crc>>8), byte(crc))
}

func buildPAT() []byte {
	section := []byte{
		tableIDPAT, 0, 0,
		0x00, 0x01, // transport_stream_id
		0xC1, 0x00, 0x00,
		0x00, 0x01, // program 1
		0xE0 | byte(pidPMT>>8), byte(pidPMT & 0xFF),
	}
	return finishSection(section)
}

func buildPMT(streams []Stream) []byte {
	pcr := uint16(pidNull)
	for _, s := range streams {
		if IsVideo(s.Type) {
			pcr = s.PID
			break
		}
	}
	section := []byte{
		tableIDPMT, 0, 0,
		0x00, 0x01, // program_number
		0xC1, 0x00, 0x00,
		0xE0 | byte(pcr>>8), byte(pcr),
		0xF0, 0x00, // no program descriptors
	}
	for _, s := range streams {
		var desc []byte
		if len(s.Language) == 3 {
			desc = append([]byte{descriptorLanguage, 4}, s.Language...)
			desc = append(desc, 0x00)
		}
		section = append(section, s.Type, 0xE0|byte(s.PID>>8), byte(s.PID),
			0xF0|byte(len(desc)>>8), byte(len(desc)))
		section = append(section, desc...)
	}
	return finishSection(section)
}

func buildPES(streamID byte, pts int64, data []byte) []byte {
	header := []byte{0x81, 0x00, 0x00}
	if pts >= 0 {
		header = []byte{0x81, 0x80, 0x05,
			0x21 | byte(pts>>29)&0x0E,
			byte(pts >> 22),
			byte(pts>>14)&0xFE | 0x01,
			byte(pts >> 7),
			byte(pts<<1) | 0x01,
		}
	}
	length := len(header) + len(data)
	if length > 0xFFFF {
		length = 0 // unbounded, allowed for video
	}
	out := []byte{0x00, 0x00, 0x01, streamID, byte(length >> 8), byte(length)}
	out = append(out, header...)
	return append(out, data...)
}
