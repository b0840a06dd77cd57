// charsheet-admin reads and edits a sheet directory directly. The server must
// not be running on the same directory.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rodaine/table"
	"github.com/zond/charsheet"
	"github.com/zond/charsheet/lang"
	"github.com/zond/charsheet/property"
	"github.com/zond/charsheet/server"
	"github.com/zond/charsheet/sheet"
)

type admin struct {
	sheet *sheet.Sheet
	out   io.Writer
}

func (a *admin) lookup(name string) (property.Property, error) {
	p, found := a.sheet.Lookup(name)
	if !found {
		return nil, errors.Errorf("no property %q", name)
	}
	return p, nil
}

func (a *admin) set(p property.Property, value string) error {
	if !p.Set(value) {
		return errors.Errorf("%s rejected %q", p.Name(), value)
	}
	return nil
}

func (a *admin) run(command string, args []string) error {
	need := func(n int) error {
		if len(args) < n {
			return errors.Errorf("%s needs %s", command, lang.Count(n, "argument"))
		}
		return nil
	}
	switch command {
	case "list":
		t := table.New("Property", "Kind", "Value").WithWriter(a.out)
		for _, name := range a.sheet.Names() {
			if len(args) > 0 && !strings.HasPrefix(name, args[0]) {
				continue
			}
			p, _ := a.sheet.Lookup(name)
			v, _ := p.Get()
			if p.Kind() == property.KindImage {
				if mediaType, size, ok := property.ParseDataURI(v); ok {
					v = fmt.Sprintf("%s, %s", mediaType, lang.Count(size, "byte"))
				}
			}
			first, _, _ := strings.Cut(v, "\n")
			t.AddRow(name, p.Kind(), first)
		}
		t.Print()
		return nil
	case "get":
		if err := need(1); err != nil {
			return err
		}
		p, err := a.lookup(args[0])
		if err != nil {
			return err
		}
		v, _ := p.Get()
		fmt.Fprintln(a.out, v)
		return nil
	case "set", "clear":
		if err := need(1); err != nil {
			return err
		}
		p, err := a.lookup(args[0])
		if err != nil {
			return err
		}
		return a.set(p, strings.Join(args[1:], " "))
	case "toggle":
		if err := need(1); err != nil {
			return err
		}
		p, err := a.lookup(args[0])
		if err != nil {
			return err
		}
		t, ok := p.(*property.Toggle)
		if !ok {
			return errors.Errorf("%s is no toggle", p.Name())
		}
		if !t.Toggle() {
			return errors.Errorf("%s rejected toggle", p.Name())
		}
		fmt.Fprintln(a.out, t.Value())
		return nil
	case "reset":
		if err := need(1); err != nil {
			return err
		}
		p, err := a.lookup(args[0])
		if err != nil {
			return err
		}
		o, ok := p.(property.Overridable)
		if !ok {
			return errors.Errorf("%s is not computed", p.Name())
		}
		o.Reset()
		return nil
	case "rename":
		if err := need(1); err != nil {
			return err
		}
		return a.set(a.sheet.Name(), strings.Join(args, " "))
	case "export":
		b, err := a.sheet.Export()
		if err != nil {
			return charsheet.WithStack(err)
		}
		fmt.Fprintf(a.out, "%s\n", b)
		return nil
	case "import":
		if err := need(1); err != nil {
			return err
		}
		b, err := os.ReadFile(args[0])
		if err != nil {
			return charsheet.WithStack(err)
		}
		return a.sheet.Import(b)
	case "image":
		if err := need(2); err != nil {
			return err
		}
		p, err := a.lookup(args[0])
		if err != nil {
			return err
		}
		i, ok := p.(*property.Image)
		if !ok {
			return errors.Errorf("%s is no image", p.Name())
		}
		f, err := os.Open(args[1])
		if err != nil {
			return charsheet.WithStack(err)
		}
		defer f.Close()
		if !i.SetFileSync(f) {
			return errors.Errorf("unable to store %q in %s", args[1], p.Name())
		}
		return nil
	}
	return errors.Errorf("unknown command %q", command)
}

func main() {
	config := server.DefaultConfig()
	flag.StringVar(&config.Dir, "dir", config.Dir, "The sheet directory.")
	flag.StringVar(&config.Backend, "backend", config.Backend, "Store backend: tkrzw or sqlite.")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [args...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  list [prefix]             List properties and values\n")
		fmt.Fprintf(os.Stderr, "  get <property>            Print a value\n")
		fmt.Fprintf(os.Stderr, "  set <property> <value>    Set a value\n")
		fmt.Fprintf(os.Stderr, "  clear <property>          Remove a value\n")
		fmt.Fprintf(os.Stderr, "  toggle <property>         Move a toggle to its next cycle\n")
		fmt.Fprintf(os.Stderr, "  reset <property>          Remove the override of a computed value\n")
		fmt.Fprintf(os.Stderr, "  rename <name>             Rename the character\n")
		fmt.Fprintf(os.Stderr, "  export                    Print the character as JSON\n")
		fmt.Fprintf(os.Stderr, "  import <file>             Store the entries of an export\n")
		fmt.Fprintf(os.Stderr, "  image <property> <file>   Store an image\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	store, closer, err := server.OpenStore(config.Backend, config.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	title, err := server.OpenTitle(config.Dir, config.Character)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sh, err := sheet.New(store, title)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := &admin{sheet: sh, out: os.Stdout}
	if err := a.run(args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}
