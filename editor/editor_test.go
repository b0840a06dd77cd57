package editor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zond/charsheet/field"
	"github.com/zond/charsheet/loop"
	"github.com/zond/charsheet/property"
	"github.com/zond/charsheet/sheet"
	"github.com/zond/charsheet/storage"
)

// screen collects what a terminal writes.
type screen struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (s *screen) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (s *screen) Write(b []byte) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.buf.Write(b)
}

// Take returns and forgets everything written so far.
func (s *screen) Take() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	result := s.buf.String()
	s.buf.Reset()
	return result
}

type testEditor struct {
	*Editor
	ctx context.Context
}

func withEditor(t *testing.T, f func(*testEditor)) {
	t.Helper()
	l := loop.New()
	sh, err := sheet.New(storage.NewMemory(), storage.NewMemoryTitle("Bob"), property.WithDispatcher(l))
	if err != nil {
		t.Fatal(err)
	}
	e := New(sh, l)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Start(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()
	f(&testEditor{Editor: e, ctx: ctx})
}

func (e *testEditor) connect(t *testing.T, user string) (*session, *screen) {
	t.Helper()
	scr := &screen{}
	s := e.newSession(e.ctx, scr, user)
	if err := s.connect(); err != nil {
		t.Fatal(err)
	}
	return s, scr
}

func run(t *testing.T, s *session, line string) {
	t.Helper()
	if err := s.run(line); err != nil {
		t.Fatalf("%q: %v", line, err)
	}
}

func contains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("%q does not contain %q", got, w)
		}
	}
}

func TestSetAnnouncesToEveryone(t *testing.T) {
	withEditor(t, func(e *testEditor) {
		alice, aliceScreen := e.connect(t, "alice")
		_, bobScreen := e.connect(t, "bob")
		run(t, alice, "set level 5")
		want := []string{"level: 5", "proficiency: +3", "stealth_bonus: -5"}
		contains(t, aliceScreen.Take(), want...)
		contains(t, bobScreen.Take(), want...)

		run(t, alice, "who")
		contains(t, aliceScreen.Take(), "2 users connected: alice and bob")

		alice.disconnect()
		run(t, alice, `set race "Half elf"`)
		contains(t, bobScreen.Take(), "race: Half elf")
		if got := aliceScreen.Take(); got != "" {
			t.Errorf("disconnected session got %q", got)
		}
	})
}

func TestRejectedAndLocked(t *testing.T) {
	withEditor(t, func(e *testEditor) {
		s, _ := e.connect(t, "alice")
		run(t, s, "set level 3")
		if err := s.run("set level lots"); !errors.Is(err, field.ErrRejected) {
			t.Errorf("got %v, want %v", err, field.ErrRejected)
		}
		run(t, s, "lock level on")
		if err := s.run("set level 4"); !errors.Is(err, field.ErrLocked) {
			t.Errorf("got %v, want %v", err, field.ErrLocked)
		}
		if got := e.sheet.Level.Value(); got != 3 {
			t.Errorf("got %v, want 3", got)
		}
		if err := s.run("lock level maybe"); err == nil {
			t.Errorf("lock with a bad switch should fail")
		}
		if err := s.run("set nothing 1"); err == nil {
			t.Errorf("setting an unknown property should fail")
		}
		if err := s.run("dance"); err == nil {
			t.Errorf("unknown command should fail")
		}
		if err := s.run("set"); err == nil || !strings.Contains(err.Error(), "usage") {
			t.Errorf("got %v, want usage", err)
		}
	})
}

func TestOverrideReset(t *testing.T) {
	withEditor(t, func(e *testEditor) {
		s, scr := e.connect(t, "alice")
		run(t, s, "set str_score 14")
		contains(t, scr.Take(), "str_mod: +2", "athletics_bonus: +2")
		if err := s.run("set str_mod 5"); !errors.Is(err, field.ErrNotEditable) {
			t.Errorf("got %v, want %v", err, field.ErrNotEditable)
		}
		run(t, s, "override str_mod 5")
		contains(t, scr.Take(), "str_mod: +5", "athletics_bonus: +5")
		run(t, s, "show str_mod")
		contains(t, scr.Take(), "overridden", "1 property")
		run(t, s, "reset str_mod")
		contains(t, scr.Take(), "str_mod: +2")
	})
}

func TestToggleAndFonts(t *testing.T) {
	withEditor(t, func(e *testEditor) {
		s, scr := e.connect(t, "alice")
		run(t, s, "toggle stealth")
		contains(t, scr.Take(), "stealth: ●")
		run(t, s, "toggle stealth")
		contains(t, scr.Take(), "stealth: ◉")
		run(t, s, "dynamic equipment on")
		run(t, s, "font equipment max 30")
		run(t, s, "font equipment 12")
		run(t, s, "show equipment")
		contains(t, scr.Take(), "dynamic(8-30)", "font(12)")
		if err := s.run("font level min 3"); !errors.Is(err, field.ErrNotDynamic) {
			t.Errorf("got %v, want %v", err, field.ErrNotDynamic)
		}
	})
}

func TestRenameAndExport(t *testing.T) {
	withEditor(t, func(e *testEditor) {
		s, scr := e.connect(t, "alice")
		run(t, s, "set class Rogue")
		run(t, s, "rename Alice Smith")
		contains(t, scr.Take(), "name: Alice Smith")
		run(t, s, "export")
		contains(t, scr.Take(), `"Character.Alice Smith.class": "Rogue"`)
		if keys, _ := e.sheet.Store().Keys("Character.Bob."); len(keys) != 0 {
			t.Errorf("leftover keys %v", keys)
		}
	})
}

func TestImage(t *testing.T) {
	withEditor(t, func(e *testEditor) {
		s, scr := e.connect(t, "alice")
		path := filepath.Join(t.TempDir(), "portrait.gif")
		if err := os.WriteFile(path, []byte("GIF89a......"), 0600); err != nil {
			t.Fatal(err)
		}
		run(t, s, "image portrait "+path)
		deadline := time.Now().Add(5 * time.Second)
		for {
			got := scr.Take()
			if strings.Contains(got, "portrait: [image image/gif 12 bytes]") {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("image never rendered")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})
}

func TestQuit(t *testing.T) {
	withEditor(t, func(e *testEditor) {
		s, _ := e.connect(t, "alice")
		if err := s.run("quit"); !errors.Is(err, errQuit) {
			t.Errorf("got %v, want %v", err, errQuit)
		}
		run(t, s, "help")
	})
}

func TestEndedSessionDisconnects(t *testing.T) {
	withEditor(t, func(e *testEditor) {
		ctx, cancel := context.WithCancel(e.ctx)
		cancel()
		s := e.newSession(ctx, &screen{}, "alice")
		if err := s.connect(); err != nil {
			t.Fatalf("connect after the session ended: %v", err)
		}
		s.disconnect()
		var users []string
		if err := e.loop.Do(e.ctx, func() { users = e.fanout.Users() }); err != nil {
			t.Fatal(err)
		}
		if len(users) != 0 {
			t.Errorf("got %v, want no users", users)
		}
		s = e.newSession(ctx, &screen{}, "bob")
		_ = s.process()
		if err := e.loop.Do(e.ctx, func() { users = e.fanout.Users() }); err != nil {
			t.Fatal(err)
		}
		if len(users) != 0 {
			t.Errorf("got %v, want no users after process", users)
		}
	})
}
