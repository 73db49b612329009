// Package compress holds the compressor applied to object bytes on their way to persistent storage.
package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Compressor is a lossless transform and its inverse.
type Compressor interface {
	Compress([]byte) ([]byte, error)
	Uncompress([]byte) ([]byte, error)
}

var _ Compressor = Zlib{}

// Zlib produces the zlib stream format (RFC 1950),
// readable by any zlib implementation.
// The zero value uses the default compression level.
type Zlib struct {
	Level int
}

func (z Zlib) level() int {
	if z.Level == 0 || z.Level < zlib.HuffmanOnly || z.Level > zlib.BestCompression {
		return zlib.DefaultCompression
	}
	return z.Level
}

func (z Zlib) Compress(inp []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w, err := zlib.NewWriterLevel(buf, z.level())
	if err != nil {
		return nil, errors.Wrap(err, "creating zlib writer")
	}
	if _, err = w.Write(inp); err != nil {
		return nil, errors.Wrap(err, "compressing")
	}
	if err = w.Close(); err != nil {
		return nil, errors.Wrap(err, "flushing compressor")
	}
	return buf.Bytes(), nil
}

func (z Zlib) Uncompress(inp []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(inp))
	if err != nil {
		return nil, errors.Wrap(err, "reading zlib header")
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	return out, errors.Wrap(err, "uncompressing")
}
