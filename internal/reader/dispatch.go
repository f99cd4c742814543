package reader

import (
	"ripfeed/internal/es"
	"ripfeed/internal/job"
	"ripfeed/internal/title"
)

// Route is the dispatch decision for one packet. A nil Queue discards it.
type Route struct {
	Queue title.Queue
	Kind  es.Kind
}

// Dispatcher maps stream identifiers to destination queues for one run.
type Dispatcher struct {
	videoID    es.ID
	videoQueue title.Queue
	scan       bool
	force      bool
	subtitles  []*title.SubtitleTrack
	audios     []*title.AudioTrack
}

// NewDispatcher captures the job's mode flags, the title's video and
// subtitle tracks, and the audio tracks the job selected.
func NewDispatcher(j *job.Job) *Dispatcher {
	t := j.Title
	return &Dispatcher{
		videoID:    t.VideoID,
		videoQueue: t.VideoQueue,
		scan:       j.IndepthScan,
		force:      j.SubtitleForce,
		subtitles:  t.Subtitles,
		audios:     j.SelectedAudios(),
	}
}

// Route decides where a packet with id goes, in priority order: primary
// video, subtitles, audio, discard. In scan mode a matching subtitle track's
// hit counter is incremented; only forced-subtitle jobs queue those packets,
// and video and audio are never queued. Outside scan mode only the first
// subtitle track is passed through, and audio only for selected tracks.
func (d *Dispatcher) Route(id es.ID) Route {
	return d.route(id, true)
}

// Queued reports whether Route would hand a packet with id to a queue.
// Subtitle hit counters are left untouched.
func (d *Dispatcher) Queued(id es.ID) bool {
	return d.route(id, false).Queue != nil
}

func (d *Dispatcher) route(id es.ID, count bool) Route {
	if id == d.videoID {
		if d.scan {
			return Route{Kind: es.KindVideo}
		}
		return Route{Queue: d.videoQueue, Kind: es.KindVideo}
	}

	if d.scan {
		for _, sub := range d.subtitles {
			if sub.ID != id {
				continue
			}
			if count {
				sub.Hit()
			}
			if d.force {
				return Route{Queue: sub.Queue, Kind: es.KindSubtitle}
			}
			return Route{Kind: es.KindSubtitle}
		}
		return Route{Kind: es.KindUnknown}
	}

	if len(d.subtitles) > 0 && d.subtitles[0].ID == id {
		return Route{Queue: d.subtitles[0].Queue, Kind: es.KindSubtitle}
	}
	for _, a := range d.audios {
		if a.ID == id {
			return Route{Queue: a.Queue, Kind: es.KindAudio}
		}
	}
	return Route{Kind: es.KindUnknown}
}
