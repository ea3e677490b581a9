package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles creates one file per entry of files under a fresh temporary
// directory and returns the directory.
func WriteFiles(t *testing.T, files map[string][]byte) string {
	t.Helper()

	dir := t.TempDir()
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			t.Fatalf("create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
