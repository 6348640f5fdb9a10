package logging

import "testing"

func TestNewProgressSamplerDefaultsBucket(t *testing.T) {
	for _, size := range []float64{0, -3} {
		if s := NewProgressSampler(size); s.step != 5 || s.emitted != -1 {
			t.Fatalf("NewProgressSampler(%v) = %+v", size, s)
		}
	}
	if s := NewProgressSampler(10); s.step != 10 {
		t.Fatalf("step = %v, want 10", s.step)
	}
}

func TestProgressSamplerNilAlwaysLogs(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "place", "") {
		t.Fatal("nil sampler should always log")
	}
}

func TestProgressSamplerSequence(t *testing.T) {
	type step struct {
		percent float64
		stage   string
		want    bool
	}
	steps := []step{
		{0, "decode", true},
		{3, "decode", false},
		{5, "decode", true},
		{7, "  decode ", false},
		{50, "decode", true},
		{0, "place", true},
		{10, "place", true},
		{10, "place", false},
		{-1, "place", false},
		{100, "place", true},
		{105, "place", false},
	}
	s := NewProgressSampler(5)
	for i, st := range steps {
		if got := s.ShouldLog(st.percent, st.stage, "clip"); got != st.want {
			t.Fatalf("step %d (%v%%, %q) = %v, want %v", i, st.percent, st.stage, got, st.want)
		}
	}
	if s.stage != "place" {
		t.Fatalf("stage = %q", s.stage)
	}
}

func TestProgressSamplerStageChangeRestartsBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	if !s.ShouldLog(60, "place", "a") {
		t.Fatal("first update should log")
	}
	if s.ShouldLog(74, "place", "b") {
		t.Fatal("74% shares the 50% bucket")
	}
	if !s.ShouldLog(10, "export", "") {
		t.Fatal("new stage should log")
	}
	if s.ShouldLog(20, "export", "") {
		t.Fatal("20% shares the 0% bucket")
	}
	if !s.ShouldLog(75, "export", "") {
		t.Fatal("75% starts a new bucket")
	}
}
