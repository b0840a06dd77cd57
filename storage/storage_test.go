package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zond/charsheet/storage"
	"github.com/zond/charsheet/storage/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, storage.NewMemory())
}

func TestCached(t *testing.T) {
	storetest.Run(t, storage.NewCached(storage.NewMemory(), time.Minute, 100))
}

func TestCachedInvalidates(t *testing.T) {
	backend := storage.NewMemory()
	c := storage.NewCached(backend, time.Minute, 100)
	if err := c.Set("k", "1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get("k"); got != "1" {
		t.Fatalf("got %q, want \"1\"", got)
	}
	if err := c.Set("k", "2"); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get("k"); got != "2" {
		t.Errorf("got %q, want \"2\"", got)
	}
	if err := c.Del("k"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get("k"); err == nil {
		t.Errorf("wanted missing key after Del")
	}
}

func TestFileTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "title")
	title, err := storage.OpenFileTitle(path, "Bob")
	if err != nil {
		t.Fatal(err)
	}
	if got := title.Title(); got != "Bob" {
		t.Errorf("got %q, want \"Bob\"", got)
	}
	if err := title.SetTitle("Alice"); err != nil {
		t.Fatal(err)
	}
	if b, err := os.ReadFile(path); err != nil || string(b) != "Alice\n" {
		t.Errorf("got %q, %v, want \"Alice\\n\", nil", b, err)
	}
	reopened, err := storage.OpenFileTitle(path, "Bob")
	if err != nil {
		t.Fatal(err)
	}
	if got := reopened.Title(); got != "Alice" {
		t.Errorf("got %q, want \"Alice\"", got)
	}
}

func TestExportImport(t *testing.T) {
	src := storage.NewMemory()
	for k, v := range map[string]string{
		"Character.Bob.level":        "3",
		"Character.Bob.level.locked": "true",
		"Character.Bobby.level":      "9",
	} {
		if err := src.Set(k, v); err != nil {
			t.Fatal(err)
		}
	}
	b, err := storage.Export(src, "Character.Bob.")
	if err != nil {
		t.Fatal(err)
	}
	dst := storage.NewMemory()
	keys, err := storage.Import(dst, b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(keys, []string{"Character.Bob.level", "Character.Bob.level.locked"}); diff != "" {
		t.Errorf("imported keys: %v", diff)
	}
	if got, err := dst.Get("Character.Bob.level.locked"); err != nil || got != "true" {
		t.Errorf("got %q, %v, want \"true\", nil", got, err)
	}
	if _, err := dst.Get("Character.Bobby.level"); err == nil {
		t.Errorf("Character.Bobby.level should not be exported with Character.Bob.")
	}
}
