package dbm

import (
	"os"
	"path/filepath"
	"testing"
)

func withFile(t testing.TB, f func(string)) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)
	f(filepath.Join(tmpDir, "test"))
}

// WithTree runs f with a Tree in a temporary directory that is removed afterwards.
func WithTree(t testing.TB, f func(*Tree)) {
	t.Helper()
	withFile(t, func(path string) {
		tree, err := OpenTree(path)
		if err != nil {
			t.Fatal(err)
		}
		defer tree.Close()
		f(tree)
	})
}
