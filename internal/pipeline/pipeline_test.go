package pipeline_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"ripfeed/internal/es"
	"ripfeed/internal/job"
	"ripfeed/internal/jobstate"
	"ripfeed/internal/mpegts"
	"ripfeed/internal/pipeline"
	"ripfeed/internal/reader"
	"ripfeed/internal/testsupport"
	"ripfeed/internal/title"
)

var (
	ac3  = es.Substream(0x80)
	sub0 = es.Substream(0x20)
	sub1 = es.Substream(0x21)
)

func discTitle(t *testing.T) *title.Title {
	t.Helper()
	dir := testsupport.WriteDiscImage(t, filepath.Join(t.TempDir(), "disc"), testsupport.DiscTitle{
		Index: 2,
		Chapters: [][]es.Packet{
			{
				{ID: es.VideoMPEG, PTS: 0, Data: []byte("VV")},
				{ID: ac3, PTS: 0, Data: []byte("AA")},
				{ID: sub0, PTS: es.NoPTS, Data: []byte("S0")},
			},
			{
				{ID: sub1, PTS: es.NoPTS, Data: []byte("S1")},
				{ID: es.VideoMPEG, PTS: 3003, Data: []byte("vv")},
				{ID: sub0, PTS: es.NoPTS, Data: []byte("s0")},
			},
		},
	})
	return &title.Title{
		Index:   2,
		Locator: dir,
		VideoID: es.VideoMPEG,
		Chapters: []title.Chapter{
			{Ordinal: 1, Index: 1},
			{Ordinal: 2, Index: 2},
		},
		Audios: []*title.AudioTrack{{ID: ac3, Language: "eng"}},
		Subtitles: []*title.SubtitleTrack{
			{ID: sub0, Language: "eng"},
			{ID: sub1, Language: "fra"},
		},
	}
}

func TestRunWritesStreamFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithQueueCapacity(1))
	j := job.New(discTitle(t))
	rec := &jobstate.Recorder{}

	res, err := pipeline.Run(context.Background(), j, pipeline.Options{Config: cfg, State: rec})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed() || res.Stats.Exit != reader.ExitEndOfTitle {
		t.Fatalf("exit = %s", res.Stats.Exit)
	}
	if !j.IsDone() {
		t.Fatal("job not marked done")
	}
	if last, ok := rec.Last(); !ok || last.Kind != jobstate.KindDone {
		t.Fatalf("last state = %+v", last)
	}

	outDir := filepath.Join(cfg.Paths.OutputDir, j.ID)
	want := map[string][]byte{
		"video-e0.es":      []byte("VVvv"),
		"audio-80bd.es":    []byte("AA"),
		"subtitle-20bd.es": []byte("S0s0"),
	}
	for name, data := range want {
		got, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("ReadFile %s: %v", name, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("%s = %q, want %q", name, got, data)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "subtitle-21bd.es")); !os.IsNotExist(err) {
		t.Fatalf("second subtitle stream written: %v", err)
	}
	if _, err := os.Stat(cfg.JobLogPath(j.ID)); err != nil {
		t.Fatalf("job log missing: %v", err)
	}
}

func TestRunSkipsUnselectedAudio(t *testing.T) {
	dts := es.Substream(0x81)
	dir := testsupport.WriteDiscImage(t, filepath.Join(t.TempDir(), "disc"), testsupport.DiscTitle{
		Index: 1,
		Chapters: [][]es.Packet{
			{
				{ID: es.VideoMPEG, PTS: 0, Data: []byte("VV")},
				{ID: ac3, PTS: 0, Data: []byte("AA")},
				{ID: dts, PTS: 0, Data: []byte("DD")},
			},
		},
	})
	tt := &title.Title{
		Index:    1,
		Locator:  dir,
		VideoID:  es.VideoMPEG,
		Chapters: []title.Chapter{{Ordinal: 1, Index: 1}},
		Audios:   []*title.AudioTrack{{ID: ac3, Language: "eng"}, {ID: dts, Language: "deu"}},
	}

	tests := []struct {
		name     string
		audios   []es.ID
		selected string
		skipped  string
		data     []byte
	}{
		{"first selected", []es.ID{ac3}, "audio-80bd", "audio-81bd", []byte("AA")},
		{"second selected", []es.ID{dts}, "audio-81bd", "audio-80bd", []byte("DD")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithoutJobLogs())
			j := job.New(tt)
			j.Audios = tc.audios

			res, err := pipeline.Run(context.Background(), j, pipeline.Options{Config: cfg})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.Failed() {
				t.Fatalf("exit = %s", res.Stats.Exit)
			}
			outDir := filepath.Join(cfg.Paths.OutputDir, j.ID)
			got, err := os.ReadFile(filepath.Join(outDir, tc.selected+".es"))
			if err != nil {
				t.Fatalf("ReadFile %s: %v", tc.selected, err)
			}
			if !bytes.Equal(got, tc.data) {
				t.Fatalf("%s = %q, want %q", tc.selected, got, tc.data)
			}
			if _, err := os.Stat(filepath.Join(outDir, tc.skipped+".es")); !os.IsNotExist(err) {
				t.Fatalf("unselected audio %s written: %v", tc.skipped, err)
			}
			for _, out := range res.Outputs {
				if out.Queue == tc.skipped {
					t.Fatalf("output reported for unselected audio %s", out.Queue)
				}
			}
		})
	}
}

func TestRunScanCountsSubtitleHits(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutJobLogs())
	j := job.New(discTitle(t))
	j.IndepthScan = true
	rec := &jobstate.Recorder{}

	res, err := pipeline.Run(context.Background(), j, pipeline.Options{Config: cfg, Discard: true, State: rec})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.SubtitleHits) != 2 || res.SubtitleHits[0].Hits != 2 || res.SubtitleHits[1].Hits != 1 {
		t.Fatalf("hits = %+v", res.SubtitleHits)
	}
	for _, out := range res.Outputs {
		if out.Packets != 0 {
			t.Fatalf("queue %s received %d packets during scan", out.Queue, out.Packets)
		}
	}
	var working int
	for _, s := range rec.States() {
		if s.Kind == jobstate.KindWorking {
			working++
		}
	}
	if working != int(res.Stats.UnitsRead) {
		t.Fatalf("progress events = %d, units = %d", working, res.Stats.UnitsRead)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, j.ID)); !os.IsNotExist(err) {
		t.Fatalf("scan wrote output: %v", err)
	}
}

func TestRunStreamSource(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutJobLogs())
	path := testsupport.WriteTransportStream(t, filepath.Join(t.TempDir(), "in.ts"),
		[]mpegts.Stream{
			{PID: 0x100, Type: mpegts.StreamTypeH264},
			{PID: 0x101, Type: mpegts.StreamTypeAAC},
			{PID: 0x102, Type: mpegts.StreamTypeAAC},
		},
		testsupport.TSWrite{PID: 0x100, StreamID: 0xE0, PTS: 0, Data: []byte("v")},
		testsupport.TSWrite{PID: 0x101, StreamID: 0xC0, PTS: 0, Data: []byte("a")},
		testsupport.TSWrite{PID: 0x102, StreamID: 0xC1, PTS: 0, Data: []byte("b")},
	)
	tt := &title.Title{
		Index:    1,
		Locator:  path,
		VideoID:  es.VideoMPEG,
		Chapters: []title.Chapter{{Ordinal: 1, Index: 1}},
		Audios: []*title.AudioTrack{
			{ID: es.AudioMPEG},
			{ID: es.AudioMPEG + 1},
		},
	}
	j := job.New(tt)
	j.Audios = []es.ID{es.AudioMPEG + 1}

	res, err := pipeline.Run(context.Background(), j, pipeline.Options{Config: cfg})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stats.Exit != reader.ExitEndOfSource {
		t.Fatalf("exit = %s", res.Stats.Exit)
	}
	outDir := filepath.Join(cfg.Paths.OutputDir, j.ID)
	got, err := os.ReadFile(filepath.Join(outDir, "audio-c1.es"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "b" {
		t.Fatalf("selected audio = %q", got)
	}
	if _, err := os.Stat(filepath.Join(outDir, "audio-c0.es")); !os.IsNotExist(err) {
		t.Fatalf("unselected audio written: %v", err)
	}
}

func TestRunReportsOpenFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutJobLogs())
	tt := &title.Title{
		Index:    1,
		Locator:  filepath.Join(t.TempDir(), "missing"),
		VideoID:  es.VideoMPEG,
		Chapters: []title.Chapter{{Ordinal: 1, Index: 1}},
	}
	res, err := pipeline.Run(context.Background(), job.New(tt), pipeline.Options{Config: cfg})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Failed() || res.Stats.Exit != reader.ExitOpenFailed {
		t.Fatalf("exit = %s", res.Stats.Exit)
	}
}

func TestRunFailsWhenOutputUnwritable(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutJobLogs())
	blocker := filepath.Join(testsupport.BaseDir(cfg), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg.Paths.OutputDir = blocker

	res, err := pipeline.Run(context.Background(), job.New(discTitle(t)), pipeline.Options{Config: cfg})
	if err == nil {
		t.Fatal("expected consumer error")
	}
	if res == nil || res.Stats.Exit == "" {
		t.Fatalf("result missing reader stats: %+v", res)
	}
}

func TestQueueName(t *testing.T) {
	tests := []struct {
		kind es.Kind
		id   es.ID
		want string
	}{
		{es.KindVideo, es.VideoMPEG, "video-e0"},
		{es.KindAudio, es.Substream(0x80), "audio-80bd"},
		{es.KindSubtitle, es.Substream(0x20), "subtitle-20bd"},
	}
	for _, tc := range tests {
		if got := pipeline.QueueName(tc.kind, tc.id); got != tc.want {
			t.Fatalf("QueueName(%s, %s) = %q, want %q", tc.kind, tc.id, got, tc.want)
		}
	}
}
