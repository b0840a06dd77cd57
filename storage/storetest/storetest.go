// Package storetest holds the behaviour every storage.Store must share.
package storetest

import (
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zond/charsheet/storage"
)

// Run exercises s, which must be empty, against the Store contract.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	t.Run("missing", func(t *testing.T) {
		if _, err := s.Get("Character.Nobody.level"); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("got %v, want %v", err, os.ErrNotExist)
		}
		if err := s.Del("Character.Nobody.level"); err != nil {
			t.Errorf("deleting a missing key: %v", err)
		}
	})
	t.Run("set get del", func(t *testing.T) {
		if err := s.Set("Character.Bob.level", "3"); err != nil {
			t.Fatal(err)
		}
		if err := s.Set("Character.Bob.level", "4"); err != nil {
			t.Fatal(err)
		}
		if got, err := s.Get("Character.Bob.level"); err != nil || got != "4" {
			t.Errorf("got %q, %v, want \"4\", nil", got, err)
		}
		if err := s.Del("Character.Bob.level"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get("Character.Bob.level"); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("got %v, want %v", err, os.ErrNotExist)
		}
	})
	t.Run("keys", func(t *testing.T) {
		for _, k := range []string{
			"Character.Bobby.xp",
			"Character.Bob.level.locked",
			"Character.Bob.level",
			"Character.Alice.level",
			"Character.Bob.class",
		} {
			if err := s.Set(k, "v"); err != nil {
				t.Fatal(err)
			}
		}
		got, err := s.Keys("Character.Bob.")
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"Character.Bob.class", "Character.Bob.level", "Character.Bob.level.locked"}
		if diff := cmp.Diff(got, want); diff != "" {
			t.Errorf("Keys: %v", diff)
		}
		got, err = s.Keys("Character.Nobody.")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("got %v, want no keys", got)
		}
	})
}
