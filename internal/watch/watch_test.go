package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherDebouncesChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "styles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	w, err := New(path, Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) { calls.Add(1) })
	}()

	// Let the watch get registered before writing.
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"fills": {}}`), 0o600))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherMissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "styles.json"), Options{})
	require.NoError(t, err)

	err = w.Run(context.Background(), func(context.Context) {})
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	w, err := New("styles.json", Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.options.Debounce)
	assert.True(t, filepath.IsAbs(w.path))
	assert.Equal(t, "styles.json", w.name)
}
