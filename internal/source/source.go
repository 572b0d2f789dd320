package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jmylchreest/stylegen/internal/compression"
	"github.com/jmylchreest/stylegen/internal/security"
	"github.com/jmylchreest/stylegen/internal/style"
	httputil "github.com/jmylchreest/stylegen/internal/util/http"
)

// Source resolves a fresh OutputStyle on every call.
type Source interface {
	Resolve(ctx context.Context) (*style.OutputStyle, error)
	String() string
}

// MaxSnapshotSize caps a decoded snapshot.
const MaxSnapshotSize = 32 << 20

// Stdin is the path that makes a File source read standard input.
const Stdin = "-"

// Options configures how snapshots are decoded.
type Options struct {
	// Scale is the channel range of object fills. Empty means ScaleUnit.
	Scale ChannelScale

	// Timeout bounds remote fetches. Zero uses the HTTP default.
	Timeout time.Duration

	// Stdin is read for the "-" path. Defaults to os.Stdin.
	Stdin io.Reader
}

// File reads a snapshot from disk on every Resolve. Files ending in ".gz",
// ".xz" or ".bz2" are decompressed.
type File struct {
	Path string
	Opts Options
}

// NewFile creates a file source. Path "-" reads standard input.
func NewFile(path string, opts Options) *File {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	return &File{Path: path, Opts: opts}
}

// Resolve reads and parses the snapshot.
func (f *File) Resolve(ctx context.Context) (*style.OutputStyle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	if f.Path == Stdin {
		data, err = io.ReadAll(security.NewLimitedReader(f.Opts.Stdin, MaxSnapshotSize))
	} else {
		data, err = os.ReadFile(f.Path) // #nosec G304 - snapshot path is chosen by the user
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", f.Path, err)
	}

	data, err = compression.Decompress(f.Path, data, MaxSnapshotSize)
	if err != nil {
		return nil, err
	}
	return Parse(data, f.Opts.Scale)
}

// String returns the snapshot path.
func (f *File) String() string { return f.Path }

// Remote fetches a snapshot over HTTPS on every Resolve.
type Remote struct {
	URL  string
	Opts Options

	fetch func(ctx context.Context, url string, opts httputil.FetchOptions) ([]byte, error)
}

// NewRemote creates a remote source. The URL is validated up front.
func NewRemote(url string, opts Options) (*Remote, error) {
	if err := security.ValidateHTTPURL(url); err != nil {
		return nil, err
	}
	return &Remote{URL: url, Opts: opts, fetch: httputil.Fetch}, nil
}

// Resolve fetches and parses the snapshot.
func (r *Remote) Resolve(ctx context.Context) (*style.OutputStyle, error) {
	data, err := r.fetch(ctx, r.URL, httputil.FetchOptions{
		Timeout:  r.Opts.Timeout,
		MaxBytes: MaxSnapshotSize,
		Headers:  map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	data, err = compression.Decompress(r.URL, data, MaxSnapshotSize)
	if err != nil {
		return nil, err
	}
	return Parse(data, r.Opts.Scale)
}

// String returns the snapshot URL.
func (r *Remote) String() string { return r.URL }

// Static serves a fixed OutputStyle.
type Static struct {
	Style *style.OutputStyle
}

// Resolve returns the fixed style.
func (s Static) Resolve(context.Context) (*style.OutputStyle, error) {
	if s.Style == nil {
		return style.Empty(), nil
	}
	return s.Style, nil
}

// String describes the source.
func (s Static) String() string { return "static" }

// Open picks a source for location: an https URL becomes Remote, anything
// else is a File path.
func Open(location string, opts Options) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("no snapshot location given")
	}
	if strings.Contains(location, "://") {
		remote, err := NewRemote(location, opts)
		if err != nil {
			return nil, err
		}
		return remote, nil
	}
	return NewFile(location, opts), nil
}
