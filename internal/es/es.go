package es

import "fmt"

// ID identifies one elementary stream inside a container.
type ID uint32

const (
	// PrivateStream1 is the PES stream id that carries DVD substreams.
	PrivateStream1 = 0xBD
	// PrivateStream2 carries DVD navigation packets and is never routed.
	PrivateStream2 = 0xBF
	// PaddingStream is the PES padding stream id.
	PaddingStream = 0xBE

	// VideoMPEG is the first MPEG video stream id; titles record their
	// primary video id explicitly and usually use this value.
	VideoMPEG ID = 0xE0
	// AudioMPEG is the first MPEG audio stream id.
	AudioMPEG ID = 0xC0
)

// Substream builds the identifier of a private stream 1 substream.
func Substream(sub byte) ID {
	return ID(sub)<<8 | PrivateStream1
}

// IsSubstream reports whether id refers to a private stream 1 substream.
func (id ID) IsSubstream() bool {
	return id&0xFF == PrivateStream1 && id>>8 != 0
}

// StreamID returns the PES stream id byte carrying this stream.
func (id ID) StreamID() byte {
	return byte(id & 0xFF)
}

// SubstreamID returns the substream byte for private stream 1 ids, 0 otherwise.
func (id ID) SubstreamID() byte {
	if !id.IsSubstream() {
		return 0
	}
	return byte(id >> 8)
}

// Kind classifies the identifier by its numbering range.
func (id ID) Kind() Kind {
	if id.IsSubstream() {
		switch sub := id.SubstreamID(); {
		case sub >= 0x20 && sub <= 0x3F:
			return KindSubtitle
		case sub >= 0x80 && sub <= 0xAF:
			return KindAudio
		}
		return KindUnknown
	}
	switch b := id.StreamID(); {
	case b >= 0xE0 && b <= 0xEF:
		return KindVideo
	case b >= 0xC0 && b <= 0xDF:
		return KindAudio
	}
	return KindUnknown
}

func (id ID) String() string {
	return fmt.Sprintf("0x%X", uint32(id))
}

// Kind is the general classification of an elementary stream.
type Kind string

const (
	KindUnknown  Kind = "unknown"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindSubtitle Kind = "subtitle"
)

// Packet is one elementary-stream unit produced by the demuxer.
type Packet struct {
	ID   ID
	Data []byte
	// PTS is the presentation timestamp in 90kHz ticks, -1 when absent.
	PTS int64
	// Sequence is assigned by the reader when the packet is queued.
	Sequence uint64
}

// NoPTS marks a packet without a presentation timestamp.
const NoPTS int64 = -1
