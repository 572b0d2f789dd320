// Package compression unwraps compressed snapshot exports.
package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/stylegen/internal/security"
)

// Format is a compression format recognised by file suffix.
type Format string

const (
	FormatNone  Format = ""
	FormatGzip  Format = "gzip"
	FormatXz    Format = "xz"
	FormatBzip2 Format = "bzip2"
)

// Detect returns the compression format implied by name's suffix. name may be
// a path or a URL.
func Detect(name string) Format {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".gzip":
		return FormatGzip
	case ".xz":
		return FormatXz
	case ".bz2":
		return FormatBzip2
	default:
		return FormatNone
	}
}

// Decompress unwraps data according to name's suffix. Uncompressed data is
// returned unchanged. The decompressed size is capped at limit bytes.
func Decompress(name string, data []byte, limit int64) ([]byte, error) {
	format := Detect(name)
	if format == FormatNone {
		return data, nil
	}

	r, err := newReader(format, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	out, err := io.ReadAll(security.NewLimitedReader(r, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s data: %w", format, err)
	}
	return out, nil
}

func newReader(format Format, r io.Reader) (io.Reader, error) {
	switch format {
	case FormatGzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzr, nil
	case FormatXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzr, nil
	case FormatBzip2:
		return bzip2.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression format: %s", format)
	}
}
