// Package editor serves a character sheet to terminal sessions, where every
// connected user sees every change as it happens.
package editor

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/buildkite/shellwords"
	"github.com/gliderlabs/ssh"
	"github.com/pkg/errors"
	"github.com/zond/charsheet"
	"github.com/zond/charsheet/field"
	"github.com/zond/charsheet/loop"
	"github.com/zond/charsheet/property"
	"github.com/zond/charsheet/sheet"
	"golang.org/x/term"
)

var (
	errQuit = errors.New("quit")
)

// Editor binds a field to every property of a sheet, and renders every
// change of them to all connected sessions.
type Editor struct {
	sheet  *sheet.Sheet
	loop   *loop.Loop
	fields map[string]*field.Field
	cells  map[string]*field.Cell
	fanout *Fanout
}

func signed(name string) bool {
	return strings.HasSuffix(name, "_mod") || strings.HasSuffix(name, "_bonus") || name == "initiative" || name == "proficiency"
}

// New must run on the loop goroutine, or before the loop is started.
func New(sh *sheet.Sheet, l *loop.Loop) *Editor {
	e := &Editor{
		sheet:  sh,
		loop:   l,
		fields: map[string]*field.Field{},
		cells:  map[string]*field.Cell{},
		fanout: NewFanout(),
	}
	for _, name := range sh.Names() {
		p, _ := sh.Lookup(name)
		cell := field.NewCell()
		f := field.New(p, cell)
		if signed(name) {
			field.Signed(f)
		}
		cell.OnRender(func(content string) {
			if _, err := fmt.Fprintf(e.fanout, "%s: %s\n", name, summarize(content)); err != nil {
				log.Printf("announcing %q: %v", name, err)
			}
		})
		f.Init()
		e.fields[name] = f
		e.cells[name] = cell
	}
	sh.UpdateAll()
	return e
}

func summarize(content string) string {
	first, _, multiline := strings.Cut(content, "\n")
	if multiline {
		return first + " ..."
	}
	return first
}

func (e *Editor) lookup(name string) (*field.Field, error) {
	f, found := e.fields[name]
	if !found {
		return nil, errors.Errorf("no property %q", name)
	}
	return f, nil
}

type session struct {
	editor *Editor
	term   *term.Terminal
	user   string
	ctx    context.Context
}

func (e *Editor) newSession(ctx context.Context, rw io.ReadWriter, user string) *session {
	return &session{
		editor: e,
		term:   term.NewTerminal(rw, "> "),
		user:   user,
		ctx:    ctx,
	}
}

func (e *Editor) HandleSession(sess ssh.Session) {
	s := e.newSession(sess.Context(), sess, sess.User())
	if err := s.process(); err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(s.term, "InternalServerError: %v\n", err)
			log.Println(err)
			log.Println(charsheet.StackTrace(err))
		}
	}
}

// connect, like disconnect, outlives the session context, so that a Push
// still queued when the session ends is always followed by the Drop.
func (s *session) connect() error {
	return s.editor.loop.Do(context.Background(), func() {
		s.editor.fanout.Push(s.term, s.user)
	})
}

// disconnect outlives the session context, which is usually done already.
func (s *session) disconnect() {
	if err := s.editor.loop.Do(context.Background(), func() {
		s.editor.fanout.Drop(s.term)
	}); err != nil && !errors.Is(err, loop.ErrClosed) {
		log.Printf("disconnecting %q: %v", s.user, err)
	}
}

func (s *session) process() error {
	if err := s.connect(); err != nil {
		return charsheet.WithStack(err)
	}
	defer s.disconnect()

	var character string
	if err := s.editor.loop.Do(s.ctx, func() {
		character = s.editor.sheet.Character()
	}); err != nil {
		return charsheet.WithStack(err)
	}
	fmt.Fprintf(s.term, "Editing %q. Type \"help\" for the list of commands.\n", character)

	for {
		line, err := s.term.ReadLine()
		if err != nil {
			return charsheet.WithStack(err)
		}
		if err := s.run(line); errors.Is(err, errQuit) {
			return nil
		} else if err != nil {
			fmt.Fprintln(s.term, err)
		}
	}
}

// run executes one command line on the loop.
func (s *session) run(line string) error {
	parts, err := shellwords.SplitPosix(line)
	if err != nil {
		return charsheet.WithStack(err)
	}
	if len(parts) == 0 {
		return nil
	}
	var result error
	found := false
	if err := s.editor.loop.Do(s.ctx, func() {
		found, result = s.commands().attempt(s, parts[0], parts[1:])
	}); err != nil {
		return charsheet.WithStack(err)
	}
	if !found {
		return errors.Errorf("Unknown command: %q", parts[0])
	}
	return result
}

func (s *session) nameField() *field.Field {
	return s.editor.fields[property.NameProperty]
}
