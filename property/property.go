// Package property is the reactive core of the sheet: named cells that
// persist in a storage.Store, derive values from each other, and notify
// subscribers when they change.
//
// Nothing in this package locks. All calls for one Registry must come from
// a single goroutine, normally a loop.Loop.
package property

import (
	"errors"
	"fmt"
	"log"
	"os"
)

// Handler receives the fresh value of a property after every update.
// Absent values are delivered as "".
type Handler func(value string)

// Property is the capability every kind of property, and every decorator
// around one, offers.
type Property interface {
	Name() string
	Kind() Kind
	// Get returns the current value and whether there is one.
	Get() (string, bool)
	// Set stores value, removing the entry when value is empty, and notifies
	// dependants and handlers. A false return means nothing was stored and
	// the caller should call Update to restore its display.
	Set(value string) bool
	// Update updates every dependant, then calls every handler with the
	// value of Get.
	Update()
	AddHandler(h Handler)
	AddDependant(p Property)
	Metadata(key string) (string, bool)
	// SetMetadata stores the textual form of every value in data, and removes
	// the entries whose value is nil.
	SetMetadata(data map[string]any)

	base() *core
	write(value string) bool
}

// Overridable is a computed property, or a decorator around one, whose
// stored value takes precedence over the computed one.
type Overridable interface {
	Property
	Overridden() bool
	// Reset removes the stored value so the computed one is used again.
	Reset()
}

type unwrapper interface {
	Unwrap() Property
}

// core is the state shared by a property and the decorators around it.
type core struct {
	schema     *Schema
	name       string
	kind       Kind
	handlers   []Handler
	dependants []Property
}

func newCore(s *Schema, name string, kind Kind) *core {
	return &core{
		schema: s,
		name:   name,
		kind:   kind,
	}
}

func (c *core) base() *core {
	return c
}

func (c *core) Name() string {
	return c.name
}

func (c *core) Kind() Kind {
	return c.kind
}

func (c *core) AddHandler(h Handler) {
	c.handlers = append(c.handlers, h)
}

func (c *core) AddDependant(p Property) {
	c.dependants = append(c.dependants, p)
}

func (c *core) key() string {
	return c.schema.key(c.name)
}

func (c *core) metadataKey(metadata string) string {
	return fmt.Sprintf("%s.%s", c.key(), metadata)
}

// load reads the raw stored value.
func (c *core) load() (string, bool) {
	key := c.key()
	v, err := c.schema.store.Get(key)
	if errors.Is(err, os.ErrNotExist) {
		return "", false
	} else if err != nil {
		log.Printf("reading %q: %v", key, err)
		return "", false
	}
	return v, true
}

// store writes the raw value, or removes the entry if value is empty.
func (c *core) store(value string) bool {
	key := c.key()
	var err error
	if value == "" {
		err = c.schema.store.Del(key)
	} else {
		err = c.schema.store.Set(key, value)
	}
	if err != nil {
		log.Printf("writing %q: %v", key, err)
		return false
	}
	return true
}

func (c *core) propagate(value string) {
	for _, dependant := range c.dependants {
		dependant.Update()
	}
	for _, handler := range c.handlers {
		handler(value)
	}
}

func (c *core) Metadata(key string) (string, bool) {
	metaKey := c.metadataKey(key)
	v, err := c.schema.store.Get(metaKey)
	if errors.Is(err, os.ErrNotExist) {
		return "", false
	} else if err != nil {
		log.Printf("reading %q: %v", metaKey, err)
		return "", false
	}
	return v, true
}

func (c *core) SetMetadata(data map[string]any) {
	for key, value := range data {
		metaKey := c.metadataKey(key)
		var err error
		if value == nil {
			err = c.schema.store.Del(metaKey)
		} else {
			err = c.schema.store.Set(metaKey, fmt.Sprint(value))
		}
		if err != nil {
			log.Printf("writing %q: %v", metaKey, err)
		}
	}
}

// Basic is a property holding whatever text it was last given.
type Basic struct {
	*core
}

// NewText declares a single line text property.
func NewText(s *Schema, name string) *Basic {
	return newBasic(s, name, KindText)
}

// NewLong declares a multi line text property. It only differs from NewText in Kind.
func NewLong(s *Schema, name string) *Basic {
	return newBasic(s, name, KindLongText)
}

func newBasic(s *Schema, name string, kind Kind) *Basic {
	b := &Basic{
		core: newCore(s, name, kind),
	}
	s.register(b)
	return b
}

func (b *Basic) Get() (string, bool) {
	return b.load()
}

func (b *Basic) write(value string) bool {
	return b.store(value)
}

func (b *Basic) Set(value string) bool {
	if !b.write(value) {
		return false
	}
	b.Update()
	return true
}

func (b *Basic) Update() {
	v, _ := b.Get()
	b.propagate(v)
}
