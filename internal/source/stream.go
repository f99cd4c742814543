package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ripfeed/internal/demux"
	"ripfeed/internal/es"
	"ripfeed/internal/logging"
	"ripfeed/internal/mpegts"
)

// Track is an elementary stream discovered in a transport stream program.
type Track struct {
	ID       es.ID
	PID      uint16
	Type     uint8
	Language string
}

// TSStream reads an MPEG transport stream file. Completed PES packets of the
// video stream and the selected audio stream are returned as program-stream
// packs.
type TSStream struct {
	file   *os.File
	demux  *mpegts.Demuxer
	logger *slog.Logger

	tracks    []Track
	videoPID  int
	audioPID  int
	audioID   es.ID
	selected  es.ID
	hasSelect bool
	closed    bool
}

func openTSStream(path string, logger *slog.Logger) (*TSStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotStream, err)
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotStream, path)
	}
	head := make([]byte, mpegts.PacketSize)
	if _, err := io.ReadFull(f, head); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrNotStream, path, err)
	}
	if _, err := mpegts.ParsePacket(head); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrNotStream, path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrNotStream, err)
	}
	return &TSStream{
		file:     f,
		demux:    mpegts.NewDemuxer(bufio.NewReaderSize(f, 64*mpegts.PacketSize)),
		logger:   logger,
		videoPID: -1,
		audioPID: -1,
	}, nil
}

// Kind reports KindStream.
func (s *TSStream) Kind() Kind { return KindStream }

// SelectAudio restricts output to the audio stream with id. It takes effect
// when the program map is read, so it must be called before the first
// ReadUnit.
func (s *TSStream) SelectAudio(id es.ID) {
	s.selected = id
	s.hasSelect = true
	if s.tracks != nil {
		s.resolvePIDs()
	}
}

// Tracks returns the streams found in the program map, empty until the first
// ReadUnit has seen it.
func (s *TSStream) Tracks() []Track {
	return s.tracks
}

// CurrentChapter is always 1; streams have no chapters.
func (s *TSStream) CurrentChapter() int { return 1 }

// ReadUnit fills u with the next routed PES as a program-stream pack.
func (s *TSStream) ReadUnit(u *Unit) bool {
	if s.closed {
		return false
	}
	for {
		unit, err := s.demux.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logging.WarnWithContext(s.logger, "stream read failed", "stream_read_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the stream file for truncation"),
					logging.String(logging.FieldImpact, "reading stops here"),
				)
			}
			u.Reset()
			return false
		}
		switch {
		case unit.Program != nil && s.tracks == nil:
			s.tracks = TracksFromProgram(unit.Program)
			s.resolvePIDs()
		case unit.PES != nil:
			var id es.ID
			switch int(unit.PES.PID) {
			case s.videoPID:
				id = es.VideoMPEG
			case s.audioPID:
				id = s.audioID
			default:
				continue
			}
			u.Data = append(u.Data[:0], demux.Pack(id, unit.PES.PTS, unit.PES.Data)...)
			return true
		}
	}
}

func (s *TSStream) resolvePIDs() {
	s.videoPID, s.audioPID = -1, -1
	for _, t := range s.tracks {
		switch t.ID.Kind() {
		case es.KindVideo:
			if s.videoPID < 0 {
				s.videoPID = int(t.PID)
			}
		case es.KindAudio:
			if s.audioPID >= 0 {
				continue
			}
			if !s.hasSelect || t.ID == s.selected {
				s.audioPID = int(t.PID)
				s.audioID = t.ID
			}
		}
	}
	if s.hasSelect && s.audioPID < 0 {
		logging.WarnWithContext(s.logger, "selected audio stream not in program", "stream_audio_missing",
			logging.String("audio_id", s.selected.String()),
			logging.String(logging.FieldErrorHint, "run 'ripfeed tracks' against the stream to list audio ids"),
			logging.String(logging.FieldImpact, "no audio packets will be produced"),
		)
	}
}

// Close releases the file. Calling it again is a no-op.
func (s *TSStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

// TracksFromProgram assigns elementary stream ids to a program's streams.
// Video streams take VideoMPEG upward, MPEG and AAC audio take AudioMPEG
// upward, and AC-3 audio takes private stream 1 substreams from 0x80, each in
// program map order. Other stream types are ignored.
func TracksFromProgram(prog *mpegts.Program) []Track {
	tracks := make([]Track, 0, len(prog.Streams))
	var videoN, mpegN, ac3N int
	for _, st := range prog.Streams {
		var id es.ID
		switch {
		case mpegts.IsVideo(st.Type):
			id = es.VideoMPEG + es.ID(videoN)
			videoN++
		case st.Type == mpegts.StreamTypeAC3:
			id = es.Substream(byte(0x80 + ac3N))
			ac3N++
		case mpegts.IsAudio(st.Type):
			id = es.AudioMPEG + es.ID(mpegN)
			mpegN++
		default:
			continue
		}
		tracks = append(tracks, Track{ID: id, PID: st.PID, Type: st.Type, Language: st.Language})
	}
	return tracks
}

// StreamTracks reads path until its first program map and returns the tracks.
func StreamTracks(path string) ([]Track, error) {
	s, err := openTSStream(path, logging.NewNop())
	if err != nil {
		return nil, err
	}
	defer s.Close()
	for {
		unit, err := s.demux.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%s: no program map found", path)
			}
			return nil, err
		}
		if unit.Program != nil {
			return TracksFromProgram(unit.Program), nil
		}
	}
}
