package field

import (
	"maps"
)

// Cell is a Surface kept in memory, calling its listeners on every render.
// Like the properties it shows, it belongs to a single goroutine.
type Cell struct {
	content   string
	attrs     map[string]string
	listeners []func(content string)
}

func NewCell() *Cell {
	return &Cell{
		attrs: map[string]string{},
	}
}

// OnRender adds a listener called with the new content after every render.
func (c *Cell) OnRender(f func(content string)) {
	c.listeners = append(c.listeners, f)
}

func (c *Cell) Content() string {
	return c.content
}

func (c *Cell) Render(content string) {
	c.content = content
	for _, listener := range c.listeners {
		listener(content)
	}
}

func (c *Cell) Attr(key string) string {
	return c.attrs[key]
}

func (c *Cell) SetAttr(key string, value string) {
	if value == "" {
		delete(c.attrs, key)
	} else {
		c.attrs[key] = value
	}
}

// Attrs returns a copy of every attribute.
func (c *Cell) Attrs() map[string]string {
	return maps.Clone(c.attrs)
}
