package editor

import (
	"fmt"
	"sort"

	"github.com/zond/charsheet"
	"golang.org/x/term"
)

type errs []error

func (e errs) Error() string {
	return fmt.Sprintf("%+v", []error(e))
}

// Fanout writes to the terminal of every connected user, and disconnects
// the terminals failing a write.
type Fanout struct {
	users map[*term.Terminal]string
}

func NewFanout() *Fanout {
	return &Fanout{
		users: map[*term.Terminal]string{},
	}
}

func (f *Fanout) Push(t *term.Terminal, user string) {
	f.users[t] = user
}

func (f *Fanout) Drop(t *term.Terminal) {
	delete(f.users, t)
}

// Users returns the names of the connected users, sorted.
func (f *Fanout) Users() []string {
	result := make([]string, 0, len(f.users))
	for _, user := range f.users {
		result = append(result, user)
	}
	sort.Strings(result)
	return result
}

func (f *Fanout) Write(b []byte) (int, error) {
	errs := errs{}
	max := 0
	for t, user := range f.users {
		if written, err := t.Write(b); err != nil {
			delete(f.users, t)
			errs = append(errs, fmt.Errorf("writing to %q: %w", user, err))
		} else if written > max {
			max = written
		}
	}
	if len(errs) > 0 {
		return max, charsheet.WithStack(errs)
	}
	return len(b), nil
}
