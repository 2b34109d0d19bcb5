package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cosmic_base: 75\n"), 0600))

	var reloads atomic.Int32
	w, err := New(path, func(p string) error {
		reloads.Add(1)
		return nil
	})
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("cosmic_base: 70\n"), 0600))

	assert.Eventually(t, func() bool { return reloads.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, w.Stats().Reloads, 1)
}

func TestTablesWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0600))

	var reloads atomic.Int32
	w, err := New(path, func(string) error {
		reloads.Add(1)
		return nil
	})
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0600))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), reloads.Load())
	assert.Equal(t, 0, w.Stats().Events)
}

func TestTablesWatcher_CountsRejectedReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0600))

	w, err := New(path, func(string) error { return errors.New("bad table") })
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("sigil_max_distance: 0\n"), 0600))

	assert.Eventually(t, func() bool { return w.Stats().Rejected >= 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 0, w.Stats().Reloads)
}

func TestTablesWatcher_StartMissingDir(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "nope", "tables.yaml"), func(string) error { return nil })
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background()))
}

func TestTablesWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0600))

	w, err := New(path, func(string) error { return nil })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
}
