package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/stylegen/internal/style"
	httputil "github.com/jmylchreest/stylegen/internal/util/http"
)

const snapshot = `{
  "fills": {
    "Primary Blue": {"r": 0, "g": 0, "b": 1},
    "Overlay": {"r": 0, "g": 0, "b": 0, "opacity": 0.5},
    "Accent": "#ff8800",
    "Shadow": "rgba(0, 0, 0, 0.25)"
  },
  "textStyles": {
    "Heading 1": {"font-family": "Inter", "font-size": "32px", "font-weight": 700, "line-height": 1.25},
    "Body": {"font-size": "16px"}
  }
}`

func fillNames(s *style.OutputStyle) []string {
	var names []string
	s.EachFill(func(name string, _ style.Color) { names = append(names, name) })
	return names
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(snapshot), ScaleUnit)
	require.NoError(t, err)

	assert.Equal(t, []string{"Primary Blue", "Overlay", "Accent", "Shadow"}, fillNames(s))
	assert.Equal(t, 2, s.TextStyleCount())

	blue, ok := s.Fill("Primary Blue")
	require.True(t, ok)
	assert.Equal(t, style.NewColor(0, 0, 1, 1), blue)

	overlay, _ := s.Fill("Overlay")
	assert.InDelta(t, 0.5, overlay.A, 1e-9)

	accent, _ := s.Fill("Accent")
	assert.InDelta(t, 1.0, accent.R, 1e-9)
	assert.InDelta(t, 136.0/255, accent.G, 1e-9)
	assert.InDelta(t, 1.0, accent.A, 1e-9)

	shadow, _ := s.Fill("Shadow")
	assert.InDelta(t, 0.25, shadow.A, 1e-9)

	heading, ok := s.TextStyle("Heading 1")
	require.True(t, ok)
	var props []string
	heading.Each(func(prop, value string) { props = append(props, prop+"="+value) })
	assert.Equal(t, []string{"font-family=Inter", "font-size=32px", "font-weight=700", "line-height=1.25"}, props)
}

func TestParseByteScale(t *testing.T) {
	s, err := Parse([]byte(`{"fills": {"Blue": {"r": 0, "g": 0, "b": 255, "a": 1}}}`), ScaleByte)
	require.NoError(t, err)

	blue, ok := s.Fill("Blue")
	require.True(t, ok)
	assert.Equal(t, style.NewColor(0, 0, 1, 1), blue)
}

func TestParseDoesNotClamp(t *testing.T) {
	s, err := Parse([]byte(`{"fills": {"Hot": {"r": 300, "g": 0, "b": 0}}}`), ScaleByte)
	require.NoError(t, err)

	hot, _ := s.Fill("Hot")
	assert.Greater(t, hot.R, 1.0)
}

func TestParseEmpty(t *testing.T) {
	for _, doc := range []string{`{}`, `{"fills": {}, "textStyles": {}}`, `{"fills": null}`} {
		s, err := Parse([]byte(doc), ScaleUnit)
		require.NoError(t, err, doc)
		assert.Equal(t, 0, s.Len(), doc)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"invalid json", `{"fills":`, "not valid JSON"},
		{"not an object", `[1, 2]`, "must be a JSON object"},
		{"fills array", `{"fills": []}`, "fills must be an object"},
		{"missing channel", `{"fills": {"X": {"r": 1, "g": 1}}}`, `fill "X"`},
		{"bad fill type", `{"fills": {"X": 12}}`, "unsupported fill value"},
		{"bad colour string", `{"fills": {"X": "blue"}}`, "unsupported colour"},
		{"bad hex", `{"fills": {"X": "#12345"}}`, "invalid hex colour"},
		{"text style not object", `{"textStyles": {"T": "16px"}}`, `text style "T"`},
		{"attribute type", `{"textStyles": {"T": {"bold": true}}}`, "string or number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), ScaleUnit)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseCSSColour(t *testing.T) {
	tests := []struct {
		in   string
		want style.Color
	}{
		{"#0000ff", style.NewColor255(0, 0, 255, 1)},
		{"#00F", style.NewColor255(0, 0, 255, 1)},
		{"#ff000080", style.NewColor255(255, 0, 0, 128.0/255)},
		{"#f008", style.NewColor255(255, 0, 0, 136.0/255)},
		{"rgb(12, 34, 56)", style.NewColor255(12, 34, 56, 1)},
		{"RGBA(12, 34, 56, 0.5)", style.NewColor255(12, 34, 56, 0.5)},
	}
	for _, tt := range tests {
		got, err := ParseCSSColour(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want.R, got.R, 1e-9, tt.in)
		assert.InDelta(t, tt.want.G, got.G, 1e-9, tt.in)
		assert.InDelta(t, tt.want.B, got.B, 1e-9, tt.in)
		assert.InDelta(t, tt.want.A, got.A, 1e-9, tt.in)
	}

	for _, bad := range []string{"", "#gg0000", "rgb(1, 2)", "rgb(a, b, c)", "hsl(0, 0%, 0%)"} {
		_, err := ParseCSSColour(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseChannelScale(t *testing.T) {
	s, err := ParseChannelScale("")
	require.NoError(t, err)
	assert.Equal(t, ScaleUnit, s)

	s, err = ParseChannelScale("BYTE")
	require.NoError(t, err)
	assert.Equal(t, ScaleByte, s)

	_, err = ParseChannelScale("percent")
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "styles.json")
	require.NoError(t, os.WriteFile(plain, []byte(snapshot), 0o600))

	var gz bytes.Buffer
	gzw := gzip.NewWriter(&gz)
	_, err := gzw.Write([]byte(snapshot))
	require.NoError(t, err)
	require.NoError(t, gzw.Close())
	gzPath := filepath.Join(dir, "styles.json.gz")
	require.NoError(t, os.WriteFile(gzPath, gz.Bytes(), 0o600))

	var xzBuf bytes.Buffer
	xzw, err := xz.NewWriter(&xzBuf)
	require.NoError(t, err)
	_, err = xzw.Write([]byte(snapshot))
	require.NoError(t, err)
	require.NoError(t, xzw.Close())
	xzPath := filepath.Join(dir, "styles.json.xz")
	require.NoError(t, os.WriteFile(xzPath, xzBuf.Bytes(), 0o600))

	for _, path := range []string{plain, gzPath, xzPath} {
		src := NewFile(path, Options{})
		s, err := src.Resolve(context.Background())
		require.NoError(t, err, path)
		assert.Equal(t, 6, s.Len(), path)
		assert.Equal(t, path, src.String())
	}
}

func TestFileSourceRereads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fills": {"A": "#000"}}`), 0o600))

	src := NewFile(path, Options{})
	s, err := src.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, os.WriteFile(path, []byte(`{"fills": {"A": "#000", "B": "#fff"}}`), 0o600))
	s, err = src.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestFileSourceStdin(t *testing.T) {
	src := NewFile(Stdin, Options{Stdin: strings.NewReader(snapshot)})

	s, err := src.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, s.FillCount())
}

func TestFileSourceErrors(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing.json"), Options{}).Resolve(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.json.gz")
	require.NoError(t, os.WriteFile(bad, []byte("not gzip"), 0o600))
	_, err = NewFile(bad, Options{}).Resolve(context.Background())
	assert.ErrorContains(t, err, "gzip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFile(bad, Options{}).Resolve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteSource(t *testing.T) {
	_, err := NewRemote("http://example.com/styles.json", Options{})
	assert.Error(t, err)

	src, err := NewRemote("https://example.com/styles.json", Options{Scale: ScaleByte})
	require.NoError(t, err)

	var gotURL string
	src.fetch = func(_ context.Context, url string, opts httputil.FetchOptions) ([]byte, error) {
		gotURL = url
		assert.Equal(t, int64(MaxSnapshotSize), opts.MaxBytes)
		return []byte(`{"fills": {"Blue": {"r": 0, "g": 0, "b": 255}}}`), nil
	}

	s, err := src.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/styles.json", gotURL)
	blue, _ := s.Fill("Blue")
	assert.Equal(t, style.NewColor(0, 0, 1, 1), blue)

	boom := errors.New("offline")
	src.fetch = func(context.Context, string, httputil.FetchOptions) ([]byte, error) { return nil, boom }
	_, err = src.Resolve(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestOpen(t *testing.T) {
	src, err := Open("styles.json", Options{})
	require.NoError(t, err)
	assert.IsType(t, &File{}, src)

	src, err = Open("https://example.com/s.json", Options{})
	require.NoError(t, err)
	assert.IsType(t, &Remote{}, src)

	src, err = Open("https://localhost/s.json", Options{})
	assert.Error(t, err)
	assert.Nil(t, src)

	_, err = Open("", Options{})
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	s, err := Static{}.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	fixed := style.NewBuilder().AddFill("A", style.Opaque(0, 0, 0)).Build()
	s, err = Static{Style: fixed}.Resolve(context.Background())
	require.NoError(t, err)
	assert.Same(t, fixed, s)
}
