package mpegts

// Packet is a parsed 188-byte transport packet.
type Packet struct {
	PID                uint16
	ContinuityCounter  uint8
	PayloadUnitStart   bool
	TransportError     bool
	Discontinuity      bool
	HasPayload         bool
	HasAdaptationField bool
	Payload            []byte
}

// Program lists the elementary streams of one PMT.
type Program struct {
	Number  uint16
	PCRPID  uint16
	Streams []Stream
}

// Stream is a single PMT elementary stream entry.
type Stream struct {
	PID  uint16
	Type uint8
	// Language is the ISO 639 code from the stream's language descriptor.
	Language string
}

// PES is one reassembled PES packet.
type PES struct {
	PID      uint16
	StreamID uint8
	// PTS is in 90kHz ticks, -1 when the header carries none.
	PTS  int64
	Data []byte
}

// Unit is the result of one Demuxer step. Exactly one field is non-nil.
type Unit struct {
	PAT     []PATEntry
	Program *Program
	PES     *PES
}

// PATEntry maps a program number to its PMT PID.
type PATEntry struct {
	Number uint16
	PMTPID uint16
}

// Stream types that the stream source understands.
const (
	StreamTypeMPEG1Video = 0x01
	StreamTypeMPEG2Video = 0x02
	StreamTypeMPEG1Audio = 0x03
	StreamTypeMPEG2Audio = 0x04
	StreamTypeAAC        = 0x0F
	StreamTypeMPEG4Video = 0x10
	StreamTypeLATM       = 0x11
	StreamTypeH264       = 0x1B
	StreamTypeHEVC       = 0x24
	StreamTypeAC3        = 0x81
)

// IsVideo reports whether t is a video stream type.
func IsVideo(t uint8) bool {
	switch t {
	case StreamTypeMPEG1Video, StreamTypeMPEG2Video, StreamTypeMPEG4Video, StreamTypeH264, StreamTypeHEVC:
		return true
	}
	return false
}

// IsAudio reports whether t is an audio stream type.
func IsAudio(t uint8) bool {
	switch t {
	case StreamTypeMPEG1Audio, StreamTypeMPEG2Audio, StreamTypeAAC, StreamTypeLATM, StreamTypeAC3:
		return true
	}
	return false
}
