package daemon

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifacts(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, n)), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func startWatcher(t *testing.T, root string, artifacts []string, fired *atomic.Int32) *ArtifactWatcher {
	t.Helper()
	w, err := NewArtifactWatcher(root, artifacts, func() { fired.Add(1) }, nil)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)
	require.NoError(t, w.Start(t.Context()))
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestArtifactWatcherTriggersOnRemove(t *testing.T) {
	root := t.TempDir()
	writeArtifacts(t, root, "pyproject.toml", "replit.nix", ".replit", "README.md")

	var fired atomic.Int32
	startWatcher(t, root, []string{"pyproject.toml", "replit.nix", ".replit"}, &fired)

	require.NoError(t, os.Remove(filepath.Join(root, "replit.nix")))
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestArtifactWatcherTriggersOnRename(t *testing.T) {
	root := t.TempDir()
	writeArtifacts(t, root, ".replit")

	var fired atomic.Int32
	startWatcher(t, root, []string{".replit"}, &fired)

	require.NoError(t, os.Rename(filepath.Join(root, ".replit"), filepath.Join(root, ".replit.bak")))
	assert.Eventually(t, func() bool { return fired.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestArtifactWatcherIgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	writeArtifacts(t, root, ".replit", "README.md")

	var fired atomic.Int32
	startWatcher(t, root, []string{".replit"}, &fired)

	require.NoError(t, os.Remove(filepath.Join(root, "README.md")))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".replit"), []byte("changed"), 0o644))
	assert.Never(t, func() bool { return fired.Load() > 0 }, 300*time.Millisecond, 20*time.Millisecond)
}

func TestArtifactWatcherDirs(t *testing.T) {
	root := t.TempDir()
	writeArtifacts(t, root, "a/pyproject.toml", "b/replit.nix", "a/.replit")

	w, err := NewArtifactWatcher(root, []string{"a/pyproject.toml", "b/replit.nix", "a/.replit"}, func() {}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	assert.Equal(t, []string{filepath.Join(root, "a"), filepath.Join(root, "b")}, w.Dirs())
}

func TestArtifactWatcherStopIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeArtifacts(t, root, ".replit")
	var fired atomic.Int32
	w := startWatcher(t, root, []string{".replit"}, &fired)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
