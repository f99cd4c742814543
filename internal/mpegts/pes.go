package mpegts

import "fmt"

func isPESPayload(data []byte) bool {
	return len(data) >= 3 && data[0] == 0x00 && data[1] == 0x00 && data[2] == 0x01
}

// Stream ids without the optional PES header.
func hasOptionalHeader(streamID byte) bool {
	switch streamID {
	case 0xBC, 0xBE, 0xBF, 0xF0, 0xF1, 0xF2, 0xF8, 0xFF:
		return false
	}
	return true
}

func parsePES(pid uint16, payload []byte) (*PES, error) {
	if len(payload) < 6 {
		return nil, fmt.Errorf("mpegts: PES packet too short (%d bytes)", len(payload))
	}
	if !isPESPayload(payload) {
		return nil, fmt.Errorf("mpegts: invalid PES start code")
	}

	pes := &PES{PID: pid, StreamID: payload[3], PTS: -1}
	length := int(payload[4])<<8 | int(payload[5])
	end := len(payload)
	if length > 0 && 6+length < end {
		end = 6 + length
	}

	if !hasOptionalHeader(pes.StreamID) {
		pes.Data = payload[6:end]
		return pes, nil
	}
	if len(payload) < 9 {
		return nil, fmt.Errorf("mpegts: PES optional header too short")
	}

	flags := payload[7] >> 6
	dataStart := min(9+int(payload[8]), end)
	if flags&0x2 != 0 && len(payload) >= 14 {
		pes.PTS = parseTimestamp(payload[9:14])
	}
	pes.Data = payload[dataStart:end]
	return pes, nil
}

// parseTimestamp extracts a 33-bit timestamp from 5 PES header bytes.
func parseTimestamp(bs []byte) int64 {
	return int64(bs[0]>>1&0x07)<<30 |
		int64(bs[1])<<22 |
		int64(bs[2]>>1&0x7F)<<15 |
		int64(bs[3])<<7 |
		int64(bs[4]>>1&0x7F)
}
