package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are read in order; earlier files win because existing variables are never overridden.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads KEY=VALUE files into the process environment without
// overriding variables that are already set. It returns the files it loaded.
func loadEnvFiles(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = envFiles
	}
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, err
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
