// Package filex holds filesystem helpers for the client's local store.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureFileDir resolves path against the working directory and creates
// its parent directory (owner-only) if missing. It returns the absolute
// path of the file itself.
func EnsureFileDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return abs, nil
}
