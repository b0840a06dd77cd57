package property

import (
	"log"
	"strings"

	"github.com/zond/charsheet"
)

// Name is the character name. It lives in the schema's storage.Title rather
// than in the store, because every other key is derived from it.
type Name struct {
	*core
}

func newName(s *Schema) *Name {
	n := &Name{
		core: newCore(s, NameProperty, KindName),
	}
	s.register(n)
	return n
}

func (n *Name) Get() (string, bool) {
	return n.schema.title.Title(), true
}

// write moves every key of the current character to the new name, one key
// at a time. An error stops the move half way, with no rollback.
func (n *Name) write(value string) bool {
	if err := n.rename(value); err != nil {
		log.Printf("renaming %q to %q: %v", n.schema.title.Title(), value, err)
		return false
	}
	return true
}

func (n *Name) rename(value string) error {
	oldPrefix := charsheet.CharacterPrefix(n.schema.title.Title())
	newPrefix := charsheet.CharacterPrefix(value)
	keys, err := n.schema.store.Keys(oldPrefix)
	if err != nil {
		return charsheet.WithStack(err)
	}
	for _, key := range keys {
		v, err := n.schema.store.Get(key)
		if err != nil {
			return charsheet.WithStack(err)
		}
		if err := n.schema.store.Del(key); err != nil {
			return charsheet.WithStack(err)
		}
		if err := n.schema.store.Set(newPrefix+strings.TrimPrefix(key, oldPrefix), v); err != nil {
			return charsheet.WithStack(err)
		}
	}
	return charsheet.WithStack(n.schema.title.SetTitle(value))
}

// Set renames the character, taking all its stored values along.
func (n *Name) Set(value string) bool {
	if !n.write(value) {
		return false
	}
	n.Update()
	return true
}

func (n *Name) Update() {
	v, _ := n.Get()
	n.propagate(v)
}
