package charsheet

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestWithStack(t *testing.T) {
	if WithStack(nil) != nil {
		t.Errorf("WithStack(nil) should be nil")
	}
	err := WithStack(os.ErrNotExist)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want wrapped %v", err, os.ErrNotExist)
	}
	if again := WithStack(err); again != err {
		t.Errorf("wrapping twice should keep the first stack")
	}
	if trace := StackTrace(err); !strings.Contains(trace, "TestWithStack") {
		t.Errorf("stack trace %q does not mention the test", trace)
	}
}

func TestCharacterPrefix(t *testing.T) {
	if got, want := CharacterPrefix("Bob"), "Character.Bob."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSyncMap(t *testing.T) {
	m := NewSyncMap[string, string]()
	m.Set("a", "1")
	m.Set("b", "2")
	m.Del("b")
	if v, found := m.GetHas("a"); !found || v != "1" {
		t.Errorf("got %q, %v, want \"1\", true", v, found)
	}
	if _, found := m.GetHas("b"); found {
		t.Errorf("b should be deleted")
	}
	got := map[string]string{}
	for k, v := range m.Each() {
		got[k] = v
	}
	if diff := cmp.Diff(got, map[string]string{"a": "1"}); diff != "" {
		t.Errorf("Each: %v", diff)
	}
	if m.Len() != 1 {
		t.Errorf("got len %v, want 1", m.Len())
	}
}
