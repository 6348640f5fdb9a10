package audio_test

import (
	"math"
	"slices"
	"testing"

	"montage/internal/audio"
)

func TestFadeInLinear(t *testing.T) {
	buf := constant(milli, 6, 1000)
	buf.FadeIn(4, audio.CurveLinear)
	want := []int32{0, 250, 500, 750, 1000, 1000}
	if !slices.Equal(buf.Samples, want) {
		t.Fatalf("samples = %v, want %v", buf.Samples, want)
	}
}

func TestFadeOutLinear(t *testing.T) {
	buf := constant(milli, 6, 1000)
	buf.FadeOut(4, audio.CurveLinear)
	want := []int32{1000, 1000, 750, 500, 250, 0}
	if !slices.Equal(buf.Samples, want) {
		t.Fatalf("samples = %v, want %v", buf.Samples, want)
	}
}

func TestFadeLongerThanBufferCoversWholeBuffer(t *testing.T) {
	buf := constant(milli, 4, 1000)
	buf.FadeIn(100, audio.CurveLinear)
	want := []int32{0, 250, 500, 750}
	if !slices.Equal(buf.Samples, want) {
		t.Fatalf("samples = %v, want %v", buf.Samples, want)
	}

	empty := audio.NewSilent(milli, 0)
	empty.FadeIn(10, audio.CurveLinear)
	empty.FadeOut(10, audio.CurveLinear)
}

func TestFadeAppliesToEveryChannel(t *testing.T) {
	stereo := audio.Format{SampleRate: 1000, Channels: 2, BitDepth: 16}
	buf := constant(stereo, 2, 800)
	buf.FadeIn(2, audio.CurveLinear)
	want := []int32{0, 0, 400, 400}
	if !slices.Equal(buf.Samples, want) {
		t.Fatalf("samples = %v, want %v", buf.Samples, want)
	}
}

func TestCurveGain(t *testing.T) {
	for _, c := range []audio.Curve{audio.CurveLinear, audio.CurveSmoothstep, audio.CurveDecibel} {
		if c.Gain(0) != 0 || c.Gain(1) != 1 || c.Gain(-1) != 0 || c.Gain(2) != 1 {
			t.Fatalf("%s: endpoints not clamped", c)
		}
	}
	if got := audio.CurveSmoothstep.Gain(0.5); got != 0.5 {
		t.Fatalf("smoothstep(0.5) = %v", got)
	}
	if got := audio.CurveSmoothstep.Gain(0.25); math.Abs(got-0.15625) > 1e-12 {
		t.Fatalf("smoothstep(0.25) = %v", got)
	}
	if got := audio.CurveDecibel.Gain(0.5); math.Abs(got-1e-3) > 1e-12 {
		t.Fatalf("decibel(0.5) = %v", got)
	}
}

func TestParseCurve(t *testing.T) {
	cases := map[string]audio.Curve{
		"":            audio.CurveLinear,
		"Linear":      audio.CurveLinear,
		" smoothstep": audio.CurveSmoothstep,
		"db":          audio.CurveDecibel,
	}
	for in, want := range cases {
		got, err := audio.ParseCurve(in)
		if err != nil || got != want {
			t.Fatalf("ParseCurve(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := audio.ParseCurve("exponential"); err == nil {
		t.Fatal("expected error for unknown curve")
	}
}
