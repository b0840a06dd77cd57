package editor

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rodaine/table"
	"github.com/zond/charsheet"
	"github.com/zond/charsheet/field"
	"github.com/zond/charsheet/lang"
	"github.com/zond/charsheet/property"
)

type command struct {
	names map[string]bool
	usage string
	// args is the minimum number of arguments.
	args int
	f    func(s *session, args []string) error
}

type commands []command

func (c commands) attempt(s *session, name string, args []string) (bool, error) {
	for _, cmd := range c {
		if cmd.names[name] {
			if len(args) < cmd.args {
				return true, errors.Errorf("usage: %s", cmd.usage)
			}
			if err := cmd.f(s, args); err != nil {
				return true, err
			}
			return true, nil
		}
	}
	return false, nil
}

func m(s ...string) map[string]bool {
	res := map[string]bool{}
	for _, p := range s {
		res[p] = true
	}
	return res
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, errors.Errorf("want %s, got %q", lang.Enumerator{Pattern: "%q", Operator: "or"}.Do("on", "off"), s)
}

func flags(f *field.Field) string {
	result := []string{}
	if f.Locked() {
		result = append(result, "locked")
	}
	if o, ok := f.Property().(property.Overridable); ok && o.Overridden() {
		result = append(result, "overridden")
	}
	if f.Dynamic() {
		result = append(result, fmt.Sprintf("dynamic(%v-%v)", f.MinFont(), f.MaxFont()))
	}
	if size := f.FontSize(); size > 0 {
		result = append(result, fmt.Sprintf("font(%v)", size))
	}
	return strings.Join(result, " ")
}

// fieldCommand looks up the field named by the first argument, and wraps
// errors about it with its name.
func fieldCommand(f func(s *session, fld *field.Field, args []string) error) func(*session, []string) error {
	return func(s *session, args []string) error {
		fld, err := s.editor.lookup(args[0])
		if err != nil {
			return err
		}
		if err := f(s, fld, args[1:]); err != nil {
			return errors.Wrap(err, args[0])
		}
		return nil
	}
}

func (s *session) commands() commands {
	return []command{
		{
			names: m("show", "ls"),
			usage: "show [property...]",
			f: func(s *session, args []string) error {
				if len(args) == 0 {
					args = s.editor.sheet.Names()
				}
				t := table.New("Property", "Kind", "Value", "Flags").WithWriter(s.term)
				for _, name := range args {
					fld, err := s.editor.lookup(name)
					if err != nil {
						return err
					}
					t.AddRow(name, fld.Property().Kind(), summarize(s.editor.cells[name].Content()), flags(fld))
				}
				t.Print()
				fmt.Fprintln(s.term, lang.Count(len(args), "property"))
				return nil
			},
		},
		{
			names: m("set"),
			usage: "set <property> <value...>",
			args:  1,
			f: fieldCommand(func(s *session, fld *field.Field, args []string) error {
				return fld.Edit(strings.Join(args, " "))
			}),
		},
		{
			names: m("clear"),
			usage: "clear <property>",
			args:  1,
			f: fieldCommand(func(s *session, fld *field.Field, args []string) error {
				return fld.Edit("")
			}),
		},
		{
			names: m("toggle"),
			usage: "toggle <property>",
			args:  1,
			f: fieldCommand(func(s *session, fld *field.Field, args []string) error {
				return fld.Toggle()
			}),
		},
		{
			names: m("override"),
			usage: "override <property> <value...>",
			args:  2,
			f: fieldCommand(func(s *session, fld *field.Field, args []string) error {
				return fld.Override(strings.Join(args, " "))
			}),
		},
		{
			names: m("reset"),
			usage: "reset <property>",
			args:  1,
			f: fieldCommand(func(s *session, fld *field.Field, args []string) error {
				return fld.Reset()
			}),
		},
		{
			names: m("lock"),
			usage: "lock <property> on|off",
			args:  2,
			f: fieldCommand(func(s *session, fld *field.Field, args []string) error {
				locked, err := parseSwitch(args[0])
				if err != nil {
					return err
				}
				fld.Lock(locked)
				return nil
			}),
		},
		{
			names: m("font"),
			usage: "font <property> [min|max] <size>",
			args:  2,
			f: fieldCommand(func(s *session, fld *field.Field, args []string) error {
				setter := func(size int) error {
					fld.SetFontSize(size)
					return nil
				}
				if len(args) > 1 {
					switch args[0] {
					case "min":
						setter = fld.SetMinFont
					case "max":
						setter = fld.SetMaxFont
					default:
						return errors.Errorf("usage: font <property> [min|max] <size>")
					}
					args = args[1:]
				}
				size, err := strconv.Atoi(args[0])
				if err != nil {
					return charsheet.WithStack(err)
				}
				return setter(size)
			}),
		},
		{
			names: m("dynamic"),
			usage: "dynamic <property> on|off",
			args:  2,
			f: fieldCommand(func(s *session, fld *field.Field, args []string) error {
				dynamic, err := parseSwitch(args[0])
				if err != nil {
					return err
				}
				return fld.SetDynamic(dynamic)
			}),
		},
		{
			names: m("image"),
			usage: "image <property> <path>",
			args:  2,
			f: fieldCommand(func(s *session, fld *field.Field, args []string) error {
				b, err := os.ReadFile(args[0])
				if err != nil {
					return charsheet.WithStack(err)
				}
				return fld.SetImage(bytes.NewReader(b))
			}),
		},
		{
			names: m("rename"),
			usage: "rename <name...>",
			args:  1,
			f: func(s *session, args []string) error {
				if err := s.nameField().Edit(strings.Join(args, " ")); err != nil {
					return errors.Wrap(err, "rename")
				}
				return nil
			},
		},
		{
			names: m("export"),
			usage: "export",
			f: func(s *session, args []string) error {
				b, err := s.editor.sheet.Export()
				if err != nil {
					return charsheet.WithStack(err)
				}
				fmt.Fprintf(s.term, "%s\n", b)
				return nil
			},
		},
		{
			names: m("who"),
			usage: "who",
			f: func(s *session, args []string) error {
				users := s.editor.fanout.Users()
				fmt.Fprintf(s.term, "%s connected: %s\n", lang.Count(len(users), "user"), lang.Enumerator{}.Do(users...))
				return nil
			},
		},
		{
			names: m("help", "?"),
			usage: "help",
			f: func(s *session, args []string) error {
				usages := []string{}
				for _, cmd := range s.commands() {
					usages = append(usages, cmd.usage)
				}
				sort.Strings(usages)
				for _, usage := range usages {
					fmt.Fprintln(s.term, usage)
				}
				return nil
			},
		},
		{
			names: m("quit", "exit"),
			usage: "quit",
			f: func(s *session, args []string) error {
				return errQuit
			},
		},
	}
}
