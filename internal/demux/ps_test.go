package demux

import (
	"bytes"
	"errors"
	"testing"

	"ripfeed/internal/es"
)

func TestDemuxRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		id   es.ID
		pts  int64
		data []byte
	}{
		{"video with pts", es.VideoMPEG, 90000, []byte{0x00, 0x00, 0x01, 0xB3, 1, 2, 3}},
		{"mpeg audio without pts", es.AudioMPEG, es.NoPTS, []byte("frame")},
		{"ac3 substream", es.Substream(0x80), 3003, []byte("ac3-frame")},
		{"subpicture substream", es.Substream(0x21), 1234567, []byte{9, 8, 7}},
		{"lpcm substream", es.Substream(0xA0), 42, []byte{1, 2, 3, 4}},
		{"max timestamp", es.VideoMPEG, 1<<33 - 1, []byte{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkts, err := NewPS().Demux(Pack(tt.id, tt.pts, tt.data))
			if err != nil {
				t.Fatalf("Demux: %v", err)
			}
			if len(pkts) != 1 {
				t.Fatalf("got %d packets, want 1", len(pkts))
			}
			got := pkts[0]
			if got.ID != tt.id {
				t.Errorf("id = %s, want %s", got.ID, tt.id)
			}
			if got.PTS != tt.pts {
				t.Errorf("pts = %d, want %d", got.PTS, tt.pts)
			}
			if !bytes.Equal(got.Data, tt.data) {
				t.Errorf("data = %x, want %x", got.Data, tt.data)
			}
		})
	}
}

func TestDemuxMultiplePacketsInOrder(t *testing.T) {
	var unit []byte
	unit = append(unit, Pack(es.VideoMPEG, 0, []byte("v1"))...)
	unit = append(unit, Pack(es.Substream(0x20), es.NoPTS, []byte("s1"))...)
	unit = append(unit, Pack(es.Substream(0x80), es.NoPTS, []byte("a1"))...)
	unit = append(unit, 0x00, 0x00, 0x01, startCodeEnd)

	pkts, err := NewPS().Demux(unit)
	if err != nil {
		t.Fatalf("Demux: %v", err)
	}
	want := []es.ID{es.VideoMPEG, es.Substream(0x20), es.Substream(0x80)}
	if len(pkts) != len(want) {
		t.Fatalf("got %d packets, want %d", len(pkts), len(want))
	}
	for i, id := range want {
		if pkts[i].ID != id {
			t.Errorf("packet %d id = %s, want %s", i, pkts[i].ID, id)
		}
	}
}

func TestDemuxSkipsPaddingAndNavigation(t *testing.T) {
	unit := Pack(es.VideoMPEG, es.NoPTS, []byte("v"))
	unit = append(unit, 0x00, 0x00, 0x01, es.PrivateStream2, 0x00, 0x02, 0xAA, 0xBB)
	unit = append(unit, 0x00, 0x00, 0x01, es.PaddingStream, 0x00, 0x03, 0xFF, 0xFF, 0xFF)

	pkts, err := NewPS().Demux(unit)
	if err != nil {
		t.Fatalf("Demux: %v", err)
	}
	if len(pkts) != 1 || pkts[0].ID != es.VideoMPEG {
		t.Fatalf("expected only the video packet, got %d packets", len(pkts))
	}
}

func TestDemuxSplitsLargePayload(t *testing.T) {
	data := bytes.Repeat([]byte{0x5A}, maxPESLength+100)
	pkts, err := NewPS().Demux(Pack(es.VideoMPEG, 10, data))
	if err != nil {
		t.Fatalf("Demux: %v", err)
	}
	if len(pkts) != 2 {
		t.Fatalf("got %d packets, want 2", len(pkts))
	}
	if pkts[0].PTS != 10 || pkts[1].PTS != es.NoPTS {
		t.Fatalf("unexpected timestamps %d/%d", pkts[0].PTS, pkts[1].PTS)
	}
	if total := len(pkts[0].Data) + len(pkts[1].Data); total != len(data) {
		t.Fatalf("payload bytes = %d, want %d", total, len(data))
	}
}

func TestDemuxMPEG1PES(t *testing.T) {
	unit := []byte{
		0x00, 0x00, 0x01, startCodePack, 0x21, 0x00, 0x01, 0x00, 0x01, 0x80, 0x00, 0x01,
		0x00, 0x00, 0x01, 0xC0, 0x00, 0x09,
		0xFF,
	}
	unit = append(unit, encodeTimestamp(0x2, 900)...)
	unit = append(unit, 'a', 'b', 'c')

	pkts, err := NewPS().Demux(unit)
	if err != nil {
		t.Fatalf("Demux: %v", err)
	}
	if len(pkts) != 1 {
		t.Fatalf("got %d packets, want 1", len(pkts))
	}
	if pkts[0].PTS != 900 || string(pkts[0].Data) != "abc" {
		t.Fatalf("packet = pts %d data %q", pkts[0].PTS, pkts[0].Data)
	}
}

func TestDemuxTruncatedHeader(t *testing.T) {
	unit := Pack(es.VideoMPEG, es.NoPTS, []byte("ok"))
	unit = append(unit, 0x00, 0x00, 0x01, startCodePack, 0x44)

	pkts, err := NewPS().Demux(unit)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Demux error = %v, want ErrTruncated", err)
	}
	if len(pkts) != 1 {
		t.Fatalf("packets before the truncation must be kept, got %d", len(pkts))
	}
}

func TestDemuxNoStartCode(t *testing.T) {
	pkts, err := NewPS().Demux([]byte{1, 2, 3, 4, 5})
	if err != nil || len(pkts) != 0 {
		t.Fatalf("Demux = %d packets, %v; want none", len(pkts), err)
	}
}
