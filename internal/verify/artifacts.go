package verify

import (
	"os"
	"path/filepath"
)

// ArtifactChecker reports whether a recorded configuration artifact exists.
type ArtifactChecker interface {
	Exists(path string) bool
}

// OSArtifacts resolves relative artifact paths against Root on the local filesystem.
type OSArtifacts struct {
	Root string
}

func (o OSArtifacts) Exists(path string) bool {
	_, err := os.Stat(o.Resolve(path))
	return err == nil
}

// Resolve returns the filesystem path of an artifact identifier.
func (o OSArtifacts) Resolve(path string) string {
	if filepath.IsAbs(path) || o.Root == "" {
		return path
	}
	return filepath.Join(o.Root, path)
}
