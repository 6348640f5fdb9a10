package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"montage/internal/services"
)

// Codec resolves record keys to sample files and normalizes decoded audio to
// the canvas format.
type Codec struct {
	pattern string
	target  Format
	tool    FFmpeg
}

// NewCodec validates the path pattern, which must contain exactly one %s.
func NewCodec(pattern string, target Format, tool FFmpeg) (*Codec, error) {
	if strings.Count(pattern, "%s") != 1 {
		return nil, services.Wrap(services.ErrConfiguration, "codec", "audio pattern", fmt.Sprintf("%q must contain exactly one %%s", pattern), nil)
	}
	if err := target.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "codec", "target format", "", err)
	}
	return &Codec{pattern: pattern, target: target, tool: tool}, nil
}

// Target is the format every loaded buffer is converted to.
func (c *Codec) Target() Format {
	return c.target
}

// Path returns the sample file for key.
func (c *Codec) Path(key string) string {
	return strings.Replace(c.pattern, "%s", key, 1)
}

// Load decodes the sample for key and converts it to the target format.
func (c *Codec) Load(ctx context.Context, key string) (*Buffer, error) {
	path := c.Path(key)
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrDecode, "decode", "open sample", key, err)
	}
	buf, err := c.decode(ctx, path)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "decode", filepath.Base(path), key, err)
	}
	out, err := Reformat(buf, c.target)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "decode", "normalize", key, err)
	}
	return out, nil
}

func (c *Codec) decode(ctx context.Context, path string) (*Buffer, error) {
	if IsWAV(path) {
		buf, err := ReadWAVFile(path)
		if !errors.Is(err, ErrUnsupportedWAV) {
			return buf, err
		}
	}
	return c.tool.Decode(ctx, path)
}

// Export writes buf to path. WAV output is written directly; other extensions
// are encoded by ffmpeg.
func (c *Codec) Export(ctx context.Context, path string, buf *Buffer) error {
	if IsWAV(path) {
		f, err := os.Create(path)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "export", "create", path, err)
		}
		if err := WriteWAV(f, buf); err != nil {
			f.Close()
			return services.Wrap(services.ErrExternalTool, "export", "write wav", path, err)
		}
		if err := f.Close(); err != nil {
			return services.Wrap(services.ErrExternalTool, "export", "close", path, err)
		}
		return nil
	}
	if err := c.tool.Encode(ctx, path, buf); err != nil {
		return services.Wrap(services.ErrExternalTool, "export", "encode", path, err)
	}
	return nil
}

// IsWAV reports whether path has a .wav or .wave extension.
func IsWAV(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return true
	}
	return false
}
