// Package filex resolves local directories used by the command-line client.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates base/name with owner-only permissions and returns its
// absolute path. An empty base means the user's config directory.
func EnsureDir(base, name string) (string, error) {
	if base == "" {
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("user config dir: %w", err)
		}
		base = cfg
	}

	dir, err := filepath.Abs(filepath.Join(base, name))
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", name, err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}
