package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherFlagsReloadAfterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scene]\nname=\"a\"\n"), 0o644))

	w, err := NewWatcher([]string{path})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	assert.False(t, w.ConsumeReload())

	require.NoError(t, os.WriteFile(path, []byte("[scene]\nname=\"b\"\n"), 0o644))

	require.Eventually(t, func() bool {
		return w.ConsumeReload()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherConsumeReloadClearsFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w, err := NewWatcher([]string{path})
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	w.mu.Lock()
	w.needsReload = true
	w.mu.Unlock()

	assert.True(t, w.ConsumeReload())
	assert.False(t, w.ConsumeReload())
}
