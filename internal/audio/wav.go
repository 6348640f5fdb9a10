package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrNotWAV is returned for input without a RIFF/WAVE header.
	ErrNotWAV = errors.New("not a RIFF/WAVE file")
	// ErrUnsupportedWAV is returned for WAV encodings other than integer PCM.
	ErrUnsupportedWAV = errors.New("unsupported WAV encoding")
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// ReadWAV decodes an integer PCM WAV stream.
func ReadWAV(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var (
		format   Format
		haveFmt  bool
		pcm      []byte
		haveData bool
	)
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if end > len(data) {
			end = len(data)
		}
		switch id {
		case "fmt ":
			f, err := parseFmtChunk(data[body:end])
			if err != nil {
				return nil, err
			}
			format, haveFmt = f, true
		case "data":
			pcm, haveData = data[body:end], true
		}
		if haveFmt && haveData {
			break
		}
		pos = end + (end-body)%2
	}
	if !haveFmt {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrNotWAV)
	}
	if !haveData {
		return nil, fmt.Errorf("%w: missing data chunk", ErrNotWAV)
	}
	return DecodePCM(pcm, format)
}

func parseFmtChunk(chunk []byte) (Format, error) {
	if len(chunk) < 16 {
		return Format{}, fmt.Errorf("%w: fmt chunk too short", ErrNotWAV)
	}
	audioFormat := binary.LittleEndian.Uint16(chunk[0:2])
	if audioFormat == wavFormatExtensible && len(chunk) >= 26 {
		audioFormat = binary.LittleEndian.Uint16(chunk[24:26])
	}
	if audioFormat != wavFormatPCM {
		return Format{}, fmt.Errorf("%w: format tag %#x", ErrUnsupportedWAV, audioFormat)
	}
	format := Format{
		Channels:   int(binary.LittleEndian.Uint16(chunk[2:4])),
		SampleRate: int(binary.LittleEndian.Uint32(chunk[4:8])),
		BitDepth:   int(binary.LittleEndian.Uint16(chunk[14:16])),
	}
	if err := format.Validate(); err != nil {
		return Format{}, fmt.Errorf("%w: %w", ErrUnsupportedWAV, err)
	}
	return format, nil
}

// ReadWAVFile decodes the WAV file at path.
func ReadWAVFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWAV(f)
}

type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// WriteWAV encodes buf as a canonical 44-byte-header PCM WAV stream.
func WriteWAV(w io.Writer, buf *Buffer) error {
	if err := buf.Format.Validate(); err != nil {
		return err
	}
	pcm := EncodePCM(buf)
	blockAlign := buf.Format.Channels * buf.Format.BytesPerSample()
	padded := len(pcm) + len(pcm)%2
	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + padded),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   wavFormatPCM,
		NumChannels:   uint16(buf.Format.Channels),
		SampleRate:    uint32(buf.Format.SampleRate),
		ByteRate:      uint32(buf.Format.SampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(buf.Format.BitDepth),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(len(pcm)),
	}
	var out bytes.Buffer
	out.Grow(44 + padded)
	if err := binary.Write(&out, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	out.Write(pcm)
	if padded != len(pcm) {
		out.WriteByte(0)
	}
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}
