package demux

import (
	"errors"
	"fmt"

	"ripfeed/internal/es"
)

const (
	startCodePack      = 0xBA
	startCodeSystem    = 0xBB
	startCodeStreamMap = 0xBC
	startCodeEnd       = 0xB9
)

// ErrTruncated reports a unit that ended inside a header.
var ErrTruncated = errors.New("demux: truncated program stream")

// PS demultiplexes program-stream units. It keeps no state between units,
// so one value may be shared by sequential reads.
type PS struct{}

// NewPS returns a program-stream demuxer.
func NewPS() *PS {
	return &PS{}
}

// Demux walks every start code in unit and returns the elementary packets
// found, in container order. Packets parsed before a malformed header are
// returned together with the error.
func (d *PS) Demux(unit []byte) ([]*es.Packet, error) {
	var out []*es.Packet
	pos := 0
	for {
		next := findStartCode(unit, pos)
		if next < 0 {
			return out, nil
		}
		pos = next
		code := unit[pos+3]

		switch {
		case code == startCodeEnd:
			pos += 4
		case code == startCodePack:
			n, err := packHeaderLength(unit[pos:])
			if err != nil {
				return out, err
			}
			pos += n
		case code < startCodeEnd:
			// Elementary-level start codes inside a payload we skipped.
			pos += 4
		default:
			if len(unit)-pos < 6 {
				return out, ErrTruncated
			}
			length := int(unit[pos+4])<<8 | int(unit[pos+5])
			end := pos + 6 + length
			if length == 0 || end > len(unit) {
				end = len(unit)
			}
			if carriesPayload(code) {
				pkt, err := parsePES(unit[pos:end])
				if err != nil {
					return out, fmt.Errorf("stream 0x%02X at offset %d: %w", code, pos, err)
				}
				if pkt != nil {
					out = append(out, pkt)
				}
			}
			pos = end
		}
	}
}

func findStartCode(buf []byte, from int) int {
	for i := from; i+3 < len(buf); i++ {
		if buf[i] == 0x00 && buf[i+1] == 0x00 && buf[i+2] == 0x01 {
			return i
		}
	}
	return -1
}

func packHeaderLength(buf []byte) (int, error) {
	if len(buf) < 5 {
		return 0, ErrTruncated
	}
	if buf[4]&0xC0 == 0x40 {
		if len(buf) < 14 {
			return 0, ErrTruncated
		}
		return 14 + int(buf[13]&0x07), nil
	}
	// MPEG-1 pack header.
	return 12, nil
}

// carriesPayload reports whether a PES with this stream id holds routable
// elementary data. System headers, maps, padding and navigation packets do not.
func carriesPayload(streamID byte) bool {
	switch streamID {
	case startCodeSystem, startCodeStreamMap, es.PaddingStream, es.PrivateStream2,
		0xF0, 0xF1, 0xF2, 0xF8, 0xFF:
		return false
	}
	return true
}

func parsePES(buf []byte) (*es.Packet, error) {
	streamID := buf[3]
	var (
		dataStart int
		pts       = es.NoPTS
	)

	if len(buf) > 6 && buf[6]&0xC0 == 0x80 {
		// MPEG-2 optional header.
		if len(buf) < 9 {
			return nil, ErrTruncated
		}
		headerLen := int(buf[8])
		dataStart = 9 + headerLen
		if dataStart > len(buf) {
			return nil, ErrTruncated
		}
		if buf[7]&0x80 != 0 && headerLen >= 5 {
			pts = decodeTimestamp(buf[9:14])
		}
	} else {
		var err error
		dataStart, pts, err = mpeg1Header(buf)
		if err != nil {
			return nil, err
		}
	}

	data := buf[dataStart:]
	id := es.ID(streamID)
	if streamID == es.PrivateStream1 {
		if len(data) == 0 {
			return nil, nil
		}
		sub := data[0]
		skip := substreamHeaderLength(sub)
		if skip > len(data) {
			return nil, ErrTruncated
		}
		id = es.Substream(sub)
		data = data[skip:]
	}

	payload := make([]byte, len(data))
	copy(payload, data)
	return &es.Packet{ID: id, Data: payload, PTS: pts}, nil
}

func mpeg1Header(buf []byte) (int, int64, error) {
	pos := 6
	for pos < len(buf) && buf[pos] == 0xFF {
		pos++
	}
	if pos < len(buf) && buf[pos]&0xC0 == 0x40 {
		pos += 2
	}
	if pos >= len(buf) {
		return len(buf), es.NoPTS, nil
	}
	switch buf[pos] >> 4 {
	case 0x2:
		if pos+5 > len(buf) {
			return 0, es.NoPTS, ErrTruncated
		}
		return pos + 5, decodeTimestamp(buf[pos : pos+5]), nil
	case 0x3:
		if pos+10 > len(buf) {
			return 0, es.NoPTS, ErrTruncated
		}
		return pos + 10, decodeTimestamp(buf[pos : pos+5]), nil
	}
	if buf[pos] == 0x0F {
		pos++
	}
	return pos, es.NoPTS, nil
}

// substreamHeaderLength is the number of bytes preceding the elementary data
// in a private stream 1 payload, substream byte included.
func substreamHeaderLength(sub byte) int {
	switch {
	case sub >= 0x80 && sub <= 0x8F:
		return 4
	case sub >= 0xA0 && sub <= 0xAF:
		return 7
	default:
		return 1
	}
}

func decodeTimestamp(bs []byte) int64 {
	return int64(bs[0]>>1&0x07)<<30 |
		int64(bs[1])<<22 |
		int64(bs[2]>>1&0x7F)<<15 |
		int64(bs[3])<<7 |
		int64(bs[4]>>1&0x7F)
}
