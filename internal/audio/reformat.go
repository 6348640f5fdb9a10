package audio

import "math"

// Reformat converts buf to target by remixing channels, rescaling bit depth,
// and resampling, in that order. The input is never modified.
func Reformat(buf *Buffer, target Format) (*Buffer, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := buf.Format.Validate(); err != nil {
		return nil, err
	}
	out := remix(buf, target.Channels)
	out = rescale(out, target.BitDepth)
	out = resample(out, target.SampleRate)
	return out, nil
}

// remix duplicates mono across outputs, averages down to mono, and otherwise
// maps output channel c to input channel c modulo the input count.
func remix(buf *Buffer, channels int) *Buffer {
	src := buf.Format.Channels
	if src == channels {
		return buf.Clone()
	}
	frames := buf.Frames()
	format := buf.Format
	format.Channels = channels
	out := &Buffer{Format: format, Samples: make([]int32, frames*channels)}
	for f := 0; f < frames; f++ {
		in := buf.Samples[f*src : (f+1)*src]
		dst := out.Samples[f*channels : (f+1)*channels]
		if channels == 1 {
			var sum int64
			for _, s := range in {
				sum += int64(s)
			}
			dst[0] = int32(sum / int64(src))
			continue
		}
		for c := range dst {
			dst[c] = in[c%src]
		}
	}
	return out
}

func rescale(buf *Buffer, depth int) *Buffer {
	from := buf.Format.BitDepth
	if from == depth {
		return buf
	}
	for i, s := range buf.Samples {
		if depth > from {
			buf.Samples[i] = int32(int64(s) << (depth - from))
		} else {
			buf.Samples[i] = int32(int64(s) >> (from - depth))
		}
	}
	buf.Format.BitDepth = depth
	return buf
}

// resample uses per-channel linear interpolation.
func resample(buf *Buffer, rate int) *Buffer {
	from := buf.Format.SampleRate
	if from == rate {
		return buf
	}
	ch := buf.Format.Channels
	frames := buf.Frames()
	outFrames := int(int64(frames) * int64(rate) / int64(from))
	format := buf.Format
	format.SampleRate = rate
	out := &Buffer{Format: format, Samples: make([]int32, outFrames*ch)}
	if frames == 0 {
		return out
	}
	ratio := float64(from) / float64(rate)
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * ratio
		index := int(pos)
		frac := pos - float64(index)
		for c := 0; c < ch; c++ {
			var v float64
			switch {
			case index+1 < frames:
				a := float64(buf.Samples[index*ch+c])
				b := float64(buf.Samples[(index+1)*ch+c])
				v = a*(1-frac) + b*frac
			case index < frames:
				v = float64(buf.Samples[index*ch+c])
			default:
				v = float64(buf.Samples[(frames-1)*ch+c])
			}
			out.Samples[i*ch+c] = format.clamp(int64(math.Round(v)))
		}
	}
	return out
}

