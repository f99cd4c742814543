package mpegts

import "fmt"

const (
	// PacketSize is the length of one transport packet.
	PacketSize = 188
	syncByte   = 0x47
	pidPAT     = 0x0000
	pidNull    = 0x1FFF
)

// ParsePacket decodes one transport packet. The payload aliases buf.
func ParsePacket(buf []byte) (*Packet, error) {
	if len(buf) != PacketSize {
		return nil, fmt.Errorf("mpegts: packet size %d, expected %d", len(buf), PacketSize)
	}
	if buf[0] != syncByte {
		return nil, fmt.Errorf("mpegts: invalid sync byte 0x%02X", buf[0])
	}

	p := &Packet{
		TransportError:     buf[1]&0x80 != 0,
		PayloadUnitStart:   buf[1]&0x40 != 0,
		PID:                uint16(buf[1]&0x1F)<<8 | uint16(buf[2]),
		HasAdaptationField: buf[3]&0x20 != 0,
		HasPayload:         buf[3]&0x10 != 0,
		ContinuityCounter:  buf[3] & 0x0F,
	}

	offset := 4
	if p.HasAdaptationField {
		afLen := int(buf[offset])
		if afLen > 0 {
			p.Discontinuity = buf[offset+1]&0x80 != 0
		}
		offset += 1 + afLen
		if offset > PacketSize {
			offset = PacketSize
		}
	}
	if p.HasPayload && offset < PacketSize {
		p.Payload = buf[offset:]
	}
	return p, nil
}
