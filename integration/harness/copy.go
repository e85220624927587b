package harness

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// SeedWorkspace copies a fixture tree into dst so a test can mutate its
// own workspace without touching the shared fixture. Symlinks in
// fixtures are rejected rather than followed.
func SeedWorkspace(t *testing.T, fixture, dst string) {
	t.Helper()
	if err := copyTree(fixture, dst); err != nil {
		t.Fatalf("seed workspace from %s: %v", fixture, err)
	}
}

func copyTree(src, dst string) error {
	root, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !root.IsDir() {
		return fmt.Errorf("fixture %s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			return fmt.Errorf("fixture contains symlink: %s", path)
		case entry.IsDir():
			info, err := entry.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode())
		default:
			info, err := entry.Info()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return os.WriteFile(target, data, info.Mode())
		}
	})
}
