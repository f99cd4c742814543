package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"ripfeed/internal/demux"
	"ripfeed/internal/es"
	"ripfeed/internal/mpegts"
	"ripfeed/internal/source"
)

// DiscTitle describes a title written by WriteDiscImage. Each chapter is a
// list of packets; every packet occupies one sector.
type DiscTitle struct {
	Index    int
	Chapters [][]es.Packet
}

// WriteDiscImage creates a disc image directory holding titles and returns
// its path.
func WriteDiscImage(t testing.TB, dir string, titles ...DiscTitle) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	manifest := &source.Manifest{Label: filepath.Base(dir)}
	for _, title := range titles {
		name := fmt.Sprintf("title%02d.vob", title.Index)
		var (
			data   []byte
			starts []int64
			sector int64
		)
		for _, chapter := range title.Chapters {
			starts = append(starts, sector)
			for _, pkt := range chapter {
				data = append(data, Sector(t, pkt)...)
				sector++
			}
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		manifest.Titles = append(manifest.Titles, source.ManifestTitle{
			Index:    title.Index,
			File:     name,
			Chapters: starts,
		})
	}
	if err := source.WriteManifest(filepath.Join(dir, source.DefaultManifestName), manifest); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	return dir
}

// Sector packs pkt into exactly one disc sector, padding the remainder.
func Sector(t testing.TB, pkt es.Packet) []byte {
	t.Helper()

	buf := demux.Pack(pkt.ID, pkt.PTS, pkt.Data)
	gap := source.SectorSize - len(buf)
	switch {
	case gap < 0:
		t.Fatalf("packet of %d bytes does not fit one sector", len(pkt.Data))
	case gap >= 6:
		pad := make([]byte, gap)
		pad[2], pad[3] = 0x01, es.PaddingStream
		pad[4], pad[5] = byte((gap-6)>>8), byte(gap-6)
		for i := 6; i < gap; i++ {
			pad[i] = 0xFF
		}
		buf = append(buf, pad...)
	case gap > 0:
		// Too small for a padding packet; use pack header stuffing.
		stuffed := make([]byte, 0, source.SectorSize)
		stuffed = append(stuffed, buf[:14]...)
		stuffed[13] |= byte(gap)
		for range gap {
			stuffed = append(stuffed, 0xFF)
		}
		buf = append(stuffed, buf[14:]...)
	}
	return buf
}

// TSWrite is one PES written by WriteTransportStream.
type TSWrite struct {
	PID      uint16
	StreamID byte
	PTS      int64
	Data     []byte
}

// WriteTransportStream writes a single-program transport stream to path.
func WriteTransportStream(t testing.TB, path string, streams []mpegts.Stream, writes ...TSWrite) string {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := mpegts.NewWriter(f, streams)
	for _, wr := range writes {
		if err := w.WritePES(wr.PID, wr.StreamID, wr.PTS, wr.Data); err != nil {
			t.Fatalf("WritePES: %v", err)
		}
	}
	return path
}
