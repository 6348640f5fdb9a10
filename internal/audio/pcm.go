package audio

import (
	"encoding/binary"
	"fmt"
)

// EncodePCM serializes buf as little-endian raw PCM. 8-bit samples are written
// unsigned, matching both WAV and ffmpeg's u8 format.
func EncodePCM(buf *Buffer) []byte {
	width := buf.Format.BytesPerSample()
	out := make([]byte, len(buf.Samples)*width)
	for i, s := range buf.Samples {
		b := out[i*width : (i+1)*width]
		switch width {
		case 1:
			b[0] = byte(s + 128)
		case 2:
			binary.LittleEndian.PutUint16(b, uint16(int16(s)))
		case 3:
			v := uint32(s)
			b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
		case 4:
			binary.LittleEndian.PutUint32(b, uint32(s))
		}
	}
	return out
}

// DecodePCM parses little-endian raw PCM. A trailing partial frame is dropped.
func DecodePCM(data []byte, format Format) (*Buffer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	width := format.BytesPerSample()
	frameBytes := width * format.Channels
	usable := len(data) - len(data)%frameBytes
	samples := make([]int32, usable/width)
	for i := range samples {
		b := data[i*width : (i+1)*width]
		switch width {
		case 1:
			samples[i] = int32(b[0]) - 128
		case 2:
			samples[i] = int32(int16(binary.LittleEndian.Uint16(b)))
		case 3:
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			samples[i] = v << 8 >> 8
		case 4:
			samples[i] = int32(binary.LittleEndian.Uint32(b))
		default:
			return nil, fmt.Errorf("%w: sample width %d", ErrFormat, width)
		}
	}
	return &Buffer{Format: format, Samples: samples}, nil
}

// rawFormat names the ffmpeg raw sample format for a bit depth.
func rawFormat(depth int) string {
	switch depth {
	case 8:
		return "u8"
	case 24:
		return "s24le"
	case 32:
		return "s32le"
	default:
		return "s16le"
	}
}
