package utils

import (
	"os"
	"path/filepath"
)

// GetProjectRoot walks up from the working directory to the nearest go.mod.
// Falls back to "." outside a source checkout.
func GetProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

// ResolvePath returns p unchanged when absolute or present relative to the
// working directory, otherwise p joined onto the project root.
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return filepath.Join(GetProjectRoot(), p)
}
