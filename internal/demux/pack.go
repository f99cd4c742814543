package demux

import "ripfeed/internal/es"

const maxPESLength = 0xFFFF

var packHeader = []byte{
	0x00, 0x00, 0x01, startCodePack,
	0x44, 0x00, 0x04, 0x00, 0x04, 0x01, // SCR 0 with marker bits
	0x01, 0x89, 0xC3, // program mux rate
	0xF8, // no stuffing
}

// Pack wraps data for stream id into one program-stream pack. Payloads larger
// than a single PES are split; only the first PES carries the timestamp.
func Pack(id es.ID, pts int64, data []byte) []byte {
	out := make([]byte, 0, len(packHeader)+len(data)+32)
	out = append(out, packHeader...)

	var private []byte
	if id.IsSubstream() {
		private = make([]byte, substreamHeaderLength(id.SubstreamID()))
		private[0] = id.SubstreamID()
	}

	first := true
	for first || len(data) > 0 {
		var optional []byte
		if first && pts != es.NoPTS {
			optional = append([]byte{0x81, 0x80, 0x05}, encodeTimestamp(0x2, pts)...)
		} else {
			optional = []byte{0x81, 0x00, 0x00}
		}
		room := maxPESLength - len(optional) - len(private)
		chunk := data
		if len(chunk) > room {
			chunk = chunk[:room]
		}
		length := len(optional) + len(private) + len(chunk)

		out = append(out, 0x00, 0x00, 0x01, id.StreamID(), byte(length>>8), byte(length))
		out = append(out, optional...)
		out = append(out, private...)
		out = append(out, chunk...)

		data = data[len(chunk):]
		first = false
	}
	return out
}

func encodeTimestamp(prefix byte, ts int64) []byte {
	return []byte{
		prefix<<4 | byte(ts>>29)&0x0E | 0x01,
		byte(ts >> 22),
		byte(ts>>14)&0xFE | 0x01,
		byte(ts >> 7),
		byte(ts<<1)&0xFE | 0x01,
	}
}
