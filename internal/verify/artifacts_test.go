package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSArtifacts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".replit"), nil, 0o644))

	a := OSArtifacts{Root: root}
	assert.True(t, a.Exists(".replit"))
	assert.False(t, a.Exists("replit.nix"))
	assert.True(t, a.Exists(filepath.Join(root, ".replit")))
	assert.Equal(t, filepath.Join(root, "pyproject.toml"), a.Resolve("pyproject.toml"))
	assert.Equal(t, "pyproject.toml", OSArtifacts{}.Resolve("pyproject.toml"))
}
