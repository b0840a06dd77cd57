package property

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	integerPrefix = regexp.MustCompile(`^[+-]?\d+`)
)

// Int restricts the property it wraps to integers. Stored values stay
// textual, but Get never reports an absent or non integer value.
type Int struct {
	inner Property
}

// RestrictInt wraps inner, and takes its place in the schema.
func RestrictInt(s *Schema, inner Property) *Int {
	r := &Int{inner: inner}
	s.replace(inner, r)
	return r
}

// ParseInt mirrors how the sheet reads numbers typed by a player: the text
// must be a number, and its integer prefix is the value ("3.7" is 3).
// Empty text is 0. Integer prefixes too large for an int are rejected.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	prefix := integerPrefix.FindString(s)
	if prefix == "" {
		// ".5" and friends have no integer prefix.
		return 0, true
	}
	n, err := strconv.Atoi(prefix)
	if err != nil {
		// Out of range for an int.
		return 0, false
	}
	return n, true
}

func (r *Int) Unwrap() Property {
	return r.inner
}

func (r *Int) base() *core {
	return r.inner.base()
}

func (r *Int) Name() string {
	return r.inner.Name()
}

func (r *Int) Kind() Kind {
	return r.inner.Kind()
}

func (r *Int) AddHandler(h Handler) {
	r.inner.AddHandler(h)
}

func (r *Int) AddDependant(p Property) {
	r.inner.AddDependant(p)
}

func (r *Int) Metadata(key string) (string, bool) {
	return r.inner.Metadata(key)
}

func (r *Int) SetMetadata(data map[string]any) {
	r.inner.SetMetadata(data)
}

func (r *Int) Value() int {
	v, found := r.inner.Get()
	if !found {
		return 0
	}
	n, ok := ParseInt(v)
	if !ok {
		return 0
	}
	return n
}

func (r *Int) Get() (string, bool) {
	return strconv.Itoa(r.Value()), true
}

// write stores the integer value of value. Zero is stored as an absent
// value, which Get reads back as 0.
func (r *Int) write(value string) bool {
	n, ok := ParseInt(value)
	if !ok {
		return false
	}
	if n == 0 {
		return r.inner.write("")
	}
	return r.inner.write(strconv.Itoa(n))
}

func (r *Int) Set(value string) bool {
	if !r.write(value) {
		return false
	}
	r.Update()
	return true
}

func (r *Int) SetInt(n int) bool {
	return r.Set(strconv.Itoa(n))
}

func (r *Int) Update() {
	v, _ := r.Get()
	r.base().propagate(v)
}

// Overridden reports whether a wrapped computed property is overridden.
func (r *Int) Overridden() bool {
	if o, ok := r.inner.(Overridable); ok {
		return o.Overridden()
	}
	return false
}

func (r *Int) Reset() {
	r.Set("")
}

// Toggle is an integer that cycles through 0 to cycles-1.
type Toggle struct {
	*Int
	cycles int
}

// NewToggle declares a toggle with the given number of cycles, 2 if cycles < 1.
func NewToggle(s *Schema, name string, cycles int) *Toggle {
	if cycles < 1 {
		cycles = 2
	}
	t := &Toggle{
		Int:    RestrictInt(s, newBasic(s, name, KindToggle)),
		cycles: cycles,
	}
	s.replace(t.Int, t)
	return t
}

func (t *Toggle) Cycles() int {
	return t.cycles
}

// Toggle moves to the next cycle, wrapping to 0 after the last. Values set
// directly with Set are not limited to the cycle range, only Toggle wraps.
func (t *Toggle) Toggle() bool {
	return t.SetInt((t.Value() + 1) % t.cycles)
}

func (t *Toggle) Unwrap() Property {
	return t.Int
}
