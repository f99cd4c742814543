package jobstate

import (
	"log/slog"
	"sync"

	"ripfeed/internal/logging"
)

// Kind discriminates state events.
type Kind string

const (
	KindIdle     Kind = "idle"
	KindScanning Kind = "scanning"
	KindWorking  Kind = "working"
	KindDone     Kind = "done"
)

// Unknown marks a time field or estimate that was not computed.
const Unknown = -1

// Working describes progress of a running pass.
type Working struct {
	// Progress is the completed fraction in [0, 1].
	Progress float64
	// RateAvg is the average throughput, or Unknown when not estimated.
	RateAvg float64
	Hours   int
	Minutes int
	Seconds int
}

// State is one event delivered to a Sink.
type State struct {
	Kind    Kind
	Working Working
}

// NewWorking builds a working event with unknown rate and time estimates.
func NewWorking(progress float64) State {
	return State{
		Kind: KindWorking,
		Working: Working{
			Progress: progress,
			RateAvg:  Unknown,
			Hours:    Unknown,
			Minutes:  Unknown,
			Seconds:  Unknown,
		},
	}
}

// Sink accepts state events without acknowledging them.
type Sink interface {
	SetState(State)
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	states []State
}

// SetState implements Sink.
func (r *Recorder) SetState(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

// States returns a copy of the recorded events.
func (r *Recorder) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.states))
	copy(out, r.states)
	return out
}

// Last returns the most recent event.
func (r *Recorder) Last() (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return State{}, false
	}
	return r.states[len(r.states)-1], true
}

// LogSink writes progress to a logger, suppressing repeats within a bucket.
type LogSink struct {
	logger  *slog.Logger
	mu      sync.Mutex
	sampler *logging.ProgressSampler
}

// NewLogSink logs working events whenever progress crosses bucketPercent.
func NewLogSink(logger *slog.Logger, bucketPercent float64) *LogSink {
	return &LogSink{
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(bucketPercent),
	}
}

// SetState implements Sink.
func (l *LogSink) SetState(s State) {
	percent := s.Working.Progress * 100
	l.mu.Lock()
	emit := l.sampler.ShouldLog(percent, string(s.Kind))
	l.mu.Unlock()
	if !emit {
		return
	}
	l.logger.Info("job progress",
		logging.String(logging.FieldEventType, "job_progress"),
		logging.String("state", string(s.Kind)),
		logging.Float64("percent", percent),
	)
}

// Multi delivers each event to every non-nil sink in order.
type Multi []Sink

// SetState implements Sink.
func (m Multi) SetState(s State) {
	for _, sink := range m {
		if sink != nil {
			sink.SetState(s)
		}
	}
}
