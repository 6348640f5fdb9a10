package audio_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"montage/internal/audio"
)

func TestWAVRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		format  audio.Format
		samples []int32
	}{
		{"8-bit", audio.Format{SampleRate: 8000, Channels: 1, BitDepth: 8}, []int32{-128, -1, 0, 127, 5}},
		{"16-bit stereo", audio.CD, []int32{-32768, 32767, 0, -1}},
		{"24-bit", audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 24}, []int32{-8388608, 8388607, 12345, -12345}},
		{"32-bit", audio.Format{SampleRate: 96000, Channels: 1, BitDepth: 32}, []int32{-2147483648, 2147483647, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &audio.Buffer{Format: tc.format, Samples: tc.samples}
			var out bytes.Buffer
			if err := audio.WriteWAV(&out, src); err != nil {
				t.Fatalf("WriteWAV: %v", err)
			}
			got, err := audio.ReadWAV(&out)
			if err != nil {
				t.Fatalf("ReadWAV: %v", err)
			}
			if got.Format != tc.format {
				t.Fatalf("format = %s, want %s", got.Format, tc.format)
			}
			if !slices.Equal(got.Samples, tc.samples) {
				t.Fatalf("samples = %v, want %v", got.Samples, tc.samples)
			}
		})
	}
}

func TestWAVHeaderLayout(t *testing.T) {
	var out bytes.Buffer
	if err := audio.WriteWAV(&out, &audio.Buffer{Format: audio.CD, Samples: []int32{1, 2}}); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	data := out.Bytes()
	if len(data) != 48 {
		t.Fatalf("expected 48 bytes, got %d", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:16]) != "WAVEfmt " || string(data[36:40]) != "data" {
		t.Fatalf("unexpected header %q", data[:44])
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != 176400 {
		t.Fatalf("byte rate = %d", got)
	}
}

type chunk struct {
	id   string
	body []byte
}

func riff(chunks ...chunk) []byte {
	var body bytes.Buffer
	body.WriteString("WAVE")
	for _, c := range chunks {
		body.WriteString(c.id)
		_ = binary.Write(&body, binary.LittleEndian, uint32(len(c.body)))
		body.Write(c.body)
		if len(c.body)%2 == 1 {
			body.WriteByte(0)
		}
	}
	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func fmtChunk(tag uint16, channels uint16, rate uint32, bits uint16) chunk {
	var b bytes.Buffer
	block := channels * bits / 8
	_ = binary.Write(&b, binary.LittleEndian, tag)
	_ = binary.Write(&b, binary.LittleEndian, channels)
	_ = binary.Write(&b, binary.LittleEndian, rate)
	_ = binary.Write(&b, binary.LittleEndian, rate*uint32(block))
	_ = binary.Write(&b, binary.LittleEndian, block)
	_ = binary.Write(&b, binary.LittleEndian, bits)
	return chunk{id: "fmt ", body: b.Bytes()}
}

func TestReadWAVSkipsUnknownChunks(t *testing.T) {
	data := riff(
		chunk{id: "LIST", body: []byte("odd")},
		fmtChunk(1, 1, 16000, 16),
		chunk{id: "data", body: []byte{0x01, 0x00, 0xff, 0xff}},
	)
	buf, err := audio.ReadWAV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if buf.Format.SampleRate != 16000 || !slices.Equal(buf.Samples, []int32{1, -1}) {
		t.Fatalf("unexpected buffer %s %v", buf.Format, buf.Samples)
	}
}

func TestReadWAVTruncatedDataChunk(t *testing.T) {
	data := riff(fmtChunk(1, 1, 16000, 16), chunk{id: "data", body: []byte{0x02, 0x00, 0x03, 0x00}})
	// Claim more data than is present, as streamed writers sometimes do, and
	// cut the file mid-sample.
	binary.LittleEndian.PutUint32(data[len(data)-8:], 0xFFFFFFFF)
	buf, err := audio.ReadWAV(bytes.NewReader(data[:len(data)-1]))
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if !slices.Equal(buf.Samples, []int32{2}) {
		t.Fatalf("samples = %v", buf.Samples)
	}
}

func TestReadWAVErrors(t *testing.T) {
	if _, err := audio.ReadWAV(bytes.NewReader([]byte("ID3 not a wav file"))); !errors.Is(err, audio.ErrNotWAV) {
		t.Fatalf("expected ErrNotWAV, got %v", err)
	}
	float := riff(fmtChunk(3, 1, 16000, 32), chunk{id: "data", body: make([]byte, 8)})
	if _, err := audio.ReadWAV(bytes.NewReader(float)); !errors.Is(err, audio.ErrUnsupportedWAV) {
		t.Fatalf("expected ErrUnsupportedWAV, got %v", err)
	}
	noData := riff(fmtChunk(1, 1, 16000, 16))
	if _, err := audio.ReadWAV(bytes.NewReader(noData)); !errors.Is(err, audio.ErrNotWAV) {
		t.Fatalf("expected missing data error, got %v", err)
	}
}
