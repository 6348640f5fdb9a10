package audio

import (
	"fmt"
	"math"
	"strings"
)

// Curve shapes a fade's gain ramp.
type Curve string

const (
	CurveLinear     Curve = "linear"
	CurveSmoothstep Curve = "smoothstep"
	// CurveDecibel ramps linearly in decibels from -120 dB to unity.
	CurveDecibel Curve = "decibel"
)

// ParseCurve accepts a curve name, defaulting to linear when blank.
func ParseCurve(name string) (Curve, error) {
	switch Curve(strings.ToLower(strings.TrimSpace(name))) {
	case "", CurveLinear:
		return CurveLinear, nil
	case CurveSmoothstep:
		return CurveSmoothstep, nil
	case CurveDecibel, "db":
		return CurveDecibel, nil
	default:
		return "", fmt.Errorf("unknown fade curve %q", name)
	}
}

// Gain returns the multiplier for progress t in [0,1].
func (c Curve) Gain(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch c {
	case CurveSmoothstep:
		return t * t * (3 - 2*t)
	case CurveDecibel:
		return math.Pow(10, (-120*(1-t))/20)
	default:
		return t
	}
}

// FadeIn ramps the first ms milliseconds up from silence. A fade longer than
// the buffer covers the whole buffer.
func (b *Buffer) FadeIn(ms int, curve Curve) {
	n := min(b.Format.FramesForMs(ms), b.Frames())
	for i := 0; i < n; i++ {
		b.scaleFrame(i, curve.Gain(float64(i)/float64(n)))
	}
}

// FadeOut ramps the last ms milliseconds down to silence.
func (b *Buffer) FadeOut(ms int, curve Curve) {
	frames := b.Frames()
	n := min(b.Format.FramesForMs(ms), frames)
	start := frames - n
	for j := 0; j < n; j++ {
		b.scaleFrame(start+j, curve.Gain(float64(n-1-j)/float64(n)))
	}
}

func (b *Buffer) scaleFrame(frame int, gain float64) {
	if gain >= 1 {
		return
	}
	ch := b.Format.Channels
	for c := 0; c < ch; c++ {
		i := frame*ch + c
		b.Samples[i] = int32(math.Round(float64(b.Samples[i]) * gain))
	}
}
