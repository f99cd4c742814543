package es

import "testing"

func TestIDKind(t *testing.T) {
	tests := []struct {
		id   ID
		want Kind
	}{
		{VideoMPEG, KindVideo},
		{0xE1, KindVideo},
		{AudioMPEG, KindAudio},
		{Substream(0x80), KindAudio},
		{Substream(0xA0), KindAudio},
		{Substream(0x20), KindSubtitle},
		{Substream(0x3F), KindSubtitle},
		{PrivateStream1, KindUnknown},
		{0xBE, KindUnknown},
	}
	for _, tt := range tests {
		if got := tt.id.Kind(); got != tt.want {
			t.Errorf("%s.Kind() = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestSubstreamRoundTrip(t *testing.T) {
	id := Substream(0x81)
	if id != 0x81BD {
		t.Fatalf("Substream(0x81) = %s, want 0x81BD", id)
	}
	if !id.IsSubstream() {
		t.Fatal("expected substream id")
	}
	if id.StreamID() != PrivateStream1 || id.SubstreamID() != 0x81 {
		t.Fatalf("unexpected split: stream=0x%X sub=0x%X", id.StreamID(), id.SubstreamID())
	}
	if VideoMPEG.SubstreamID() != 0 {
		t.Fatal("plain stream id must not report a substream")
	}
}
