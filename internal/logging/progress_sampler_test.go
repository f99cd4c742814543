package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name     string
		size     float64
		wantStep float64
	}{
		{"zero uses default", 0, 5},
		{"negative uses default", -1, 5},
		{"custom", 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.size)
			if s.step != tt.wantStep {
				t.Fatalf("step = %v, want %v", s.step, tt.wantStep)
			}
			if s.bucket != -1 {
				t.Fatalf("bucket = %d, want -1", s.bucket)
			}
		})
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "working") {
		t.Fatal("nil sampler should log everything")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		percent float64
		phase   string
		want    bool
	}{
		{0, "working", true},
		{4, "working", false},
		{10, "working", true},
		{19.9, "working", false},
		{-1, "working", false},
		{20, " working ", true},
		{20, "scanning", true},
		{150, "scanning", true},
		{100, "scanning", false},
		{-1, "draining", true},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.percent, step.phase); got != step.want {
			t.Fatalf("step %d (%v%%, %q): ShouldLog = %v, want %v", i, step.percent, step.phase, got, step.want)
		}
	}

	s.Reset()
	if !s.ShouldLog(0, "working") {
		t.Fatal("expected emit after reset")
	}
}
