package logging

import "strings"

// ProgressSampler picks the progress updates worth a log line: the first
// update of each phase and the first update in each new bucket of step
// percent within a phase.
type ProgressSampler struct {
	step   float64
	phase  string
	bucket int // highest bucket logged in the current phase, -1 before any
}

// NewProgressSampler returns a sampler with buckets of bucketSize percent
// (5 when bucketSize is not positive).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{step: bucketSize, bucket: -1}
}

// ShouldLog reports whether an update at percent in phase should be logged.
// A negative percent means unknown and only a phase change is reported. A nil
// sampler logs everything.
func (s *ProgressSampler) ShouldLog(percent float64, phase string) bool {
	if s == nil {
		return true
	}
	changed := false
	if p := strings.TrimSpace(phase); p != "" && p != s.phase {
		s.phase = p
		s.bucket = -1
		changed = true
	}
	if percent < 0 {
		return changed
	}
	bucket := int(min(percent, 100) / s.step)
	if bucket <= s.bucket {
		return changed
	}
	s.bucket = bucket
	return true
}

// Reset forgets the current phase and bucket.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.phase = ""
	s.bucket = -1
}
