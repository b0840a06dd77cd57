// Package field binds properties to the surfaces that display them, and
// implements the editing affordances of every kind of property.
package field

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/zond/charsheet/lang"
	"github.com/zond/charsheet/property"
)

const (
	DefaultMinFont = 8
	DefaultMaxFont = 40
)

const (
	lockedMeta     = "locked"
	fontSizeMeta   = "font-size"
	overriddenMeta = "overridden"
	dynamicMeta    = "dynamic"
	minFontMeta    = "min-font"
	maxFontMeta    = "max-font"
)

const (
	// CycleAttr holds the current toggle cycle of a toggle surface.
	CycleAttr = "cycle"
	// SourceAttr holds the data URI of an image surface.
	SourceAttr = "src"
	// MetadataAttrPrefix prefixes the surface attributes mirroring property metadata.
	MetadataAttrPrefix = "metadata-"
)

var (
	ErrLocked      = errors.New("locked")
	ErrNotEditable = errors.New("not editable")
	ErrRejected    = errors.New("value rejected")
	ErrNotDynamic  = errors.New("dynamic font size is off")
)

// Surface is where a field renders its property, and where a previous
// rendering of it can be read back from.
type Surface interface {
	Content() string
	Render(content string)
	Attr(key string) string
	// SetAttr sets an attribute, or removes it if value is empty.
	SetAttr(key string, value string)
}

// Affordances tells which editing operations a field currently offers.
type Affordances struct {
	Edit     bool
	Override bool
	Reset    bool
	Lock     bool
}

type toggler interface {
	Toggle() bool
}

type fileSetter interface {
	SetFile(r io.Reader)
}

// Field keeps a Surface showing the value of a Property.
type Field struct {
	prop    property.Property
	surface Surface
	format  func(string) string

	editable    bool
	locked      bool
	affordances Affordances

	fontSize int
	dynamic  bool
	minFont  int
	maxFont  int
}

// New binds p to surface. The field renders every update of p from now on,
// but reads nothing from surface until Init.
func New(p property.Property, surface Surface) *Field {
	f := &Field{
		prop:    p,
		surface: surface,
		format:  func(s string) string { return s },
		minFont: DefaultMinFont,
		maxFont: DefaultMaxFont,
	}
	switch p.Kind() {
	case property.KindText, property.KindLongText, property.KindName:
		f.editable = true
	}
	if p.Kind() == property.KindAuto {
		f.affordances = Affordances{Override: true}
	} else {
		f.affordances = Affordances{Edit: f.editable, Lock: true}
	}
	p.AddHandler(f.update)
	return f
}

// Signed makes f prefix non negative integers with "+".
func Signed(f *Field) *Field {
	inner := f.format
	f.format = func(s string) string {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return inner("+" + s)
		}
		return inner(s)
	}
	return f
}

func (f *Field) Property() property.Property {
	return f.prop
}

func (f *Field) Locked() bool {
	return f.locked
}

func (f *Field) Editable() bool {
	return f.editable && !f.locked
}

func (f *Field) Affordances() Affordances {
	result := f.affordances
	result.Edit = result.Edit && !f.locked
	return result
}

func (f *Field) FontSize() int {
	return f.fontSize
}

func (f *Field) Dynamic() bool {
	return f.dynamic
}

func (f *Field) MinFont() int {
	return f.minFont
}

func (f *Field) MaxFont() int {
	return f.maxFont
}

// metadata returns the property metadata for key, or the surface copy of it
// if the property has none.
func (f *Field) metadata(key string) string {
	if v, found := f.prop.Metadata(key); found && v != "" {
		return v
	}
	return f.surface.Attr(MetadataAttrPrefix + key)
}

func (f *Field) setMetadata(key string, value any) {
	f.prop.SetMetadata(map[string]any{key: value})
	attr := ""
	switch v := value.(type) {
	case nil:
	case bool:
		if v {
			attr = "true"
		}
	default:
		attr = fmt.Sprint(v)
	}
	f.surface.SetAttr(MetadataAttrPrefix+key, attr)
}

func (f *Field) metadataInt(key string) int {
	n, err := strconv.Atoi(f.metadata(key))
	if err != nil {
		return 0
	}
	return n
}

// Init adopts a value already shown on the surface if the property has none,
// and syncs the field settings from property metadata, or surface attributes
// where the property has none.
func (f *Field) Init() {
	_, found := f.prop.Get()
	switch f.prop.Kind() {
	case property.KindText, property.KindLongText, property.KindName:
		if content := f.surface.Content(); !found && content != "" {
			f.prop.Set(content)
		}
	case property.KindToggle:
		if cycle := f.surface.Attr(CycleAttr); !found && cycle != "" {
			f.prop.Set(cycle)
		}
	case property.KindImage:
		if src := f.surface.Attr(SourceAttr); !found && src != "" {
			f.prop.Set(src)
		}
	case property.KindAuto:
		if _, hasMeta := f.prop.Metadata(overriddenMeta); !hasMeta && f.metadata(overriddenMeta) == "true" {
			f.prop.Set(f.surface.Content())
		}
	}

	f.Lock(f.metadata(lockedMeta) == "true")
	switch f.prop.Kind() {
	case property.KindToggle, property.KindImage:
		return
	}
	f.SetFontSize(f.metadataInt(fontSizeMeta))
	if f.prop.Kind() == property.KindLongText {
		f.SetDynamic(f.metadata(dynamicMeta) == "true")
		f.setMinFont(f.metadataInt(minFontMeta))
		f.setMaxFont(f.metadataInt(maxFontMeta))
	}
}

func (f *Field) update(value string) {
	switch f.prop.Kind() {
	case property.KindToggle:
		f.surface.SetAttr(CycleAttr, value)
		f.surface.Render(Glyph(value))
	case property.KindImage:
		f.surface.SetAttr(SourceAttr, value)
		f.surface.Render(DescribeImage(value))
	case property.KindAuto:
		f.surface.Render(f.format(value))
		if o, ok := f.prop.(property.Overridable); ok {
			f.setOverridden(o.Overridden())
		}
	default:
		f.surface.Render(f.format(value))
	}
}

func (f *Field) setOverridden(overridden bool) {
	f.setMetadata(overriddenMeta, overridden)
	f.editable = overridden
	f.affordances = Affordances{
		Edit:     overridden,
		Override: !overridden,
		Reset:    overridden,
		Lock:     overridden,
	}
}

// Edit sets the property to value. A rejected value re-renders the current one.
func (f *Field) Edit(value string) error {
	if f.locked {
		return ErrLocked
	}
	if !f.editable {
		return ErrNotEditable
	}
	return f.set(value)
}

func (f *Field) set(value string) error {
	if !f.prop.Set(value) {
		f.prop.Update()
		return ErrRejected
	}
	return nil
}

// Override stores value for a computed property, taking precedence over the computed one.
func (f *Field) Override(value string) error {
	if !f.affordances.Override {
		return errors.Errorf("%s can not be overridden", f.prop.Name())
	}
	return f.set(value)
}

// Reset makes an overridden computed property computed again.
func (f *Field) Reset() error {
	o, ok := f.prop.(property.Overridable)
	if !ok || !f.affordances.Reset {
		return errors.Errorf("%s is not overridden", f.prop.Name())
	}
	o.Reset()
	return nil
}

func (f *Field) Lock(locked bool) {
	f.setMetadata(lockedMeta, locked)
	f.locked = locked
}

// Toggle moves a toggle property to its next cycle.
func (f *Field) Toggle() error {
	t, ok := f.prop.(toggler)
	if !ok {
		return errors.Errorf("%s is no toggle", f.prop.Name())
	}
	if f.locked {
		return ErrLocked
	}
	if !t.Toggle() {
		return ErrRejected
	}
	return nil
}

// SetImage loads r into an image property. The property changes when r is
// fully read, after SetImage has returned.
func (f *Field) SetImage(r io.Reader) error {
	i, ok := f.prop.(fileSetter)
	if !ok {
		return errors.Errorf("%s is no image", f.prop.Name())
	}
	if f.locked {
		return ErrLocked
	}
	i.SetFile(r)
	return nil
}

// SetFontSize stores the font size, 0 meaning the default one.
func (f *Field) SetFontSize(size int) {
	if size > 0 {
		f.setMetadata(fontSizeMeta, size)
	} else {
		f.setMetadata(fontSizeMeta, nil)
	}
	f.fontSize = size
}

// SetDynamic turns dynamic font sizing of a long text field on or off.
func (f *Field) SetDynamic(dynamic bool) error {
	if f.prop.Kind() != property.KindLongText {
		return errors.Errorf("%s has no dynamic font size", f.prop.Name())
	}
	f.setMetadata(dynamicMeta, dynamic)
	f.dynamic = dynamic
	return nil
}

func (f *Field) SetMinFont(size int) error {
	if !f.dynamic {
		return ErrNotDynamic
	}
	f.setMinFont(size)
	return nil
}

func (f *Field) setMinFont(size int) {
	if size <= 0 {
		size = DefaultMinFont
	}
	f.setMetadata(minFontMeta, size)
	f.minFont = size
}

func (f *Field) SetMaxFont(size int) error {
	if !f.dynamic {
		return ErrNotDynamic
	}
	f.setMaxFont(size)
	return nil
}

func (f *Field) setMaxFont(size int) {
	if size <= 0 {
		size = DefaultMaxFont
	}
	f.setMetadata(maxFontMeta, size)
	f.maxFont = size
}

var glyphs = map[string]string{
	"":  "",
	"0": "",
	"1": "●",
	"2": "◉",
}

// Glyph returns the mark a toggle in cycle shows.
func Glyph(cycle string) string {
	if g, found := glyphs[cycle]; found {
		return g
	}
	return cycle
}

// DescribeImage returns a short text standing in for an image data URI.
func DescribeImage(uri string) string {
	if uri == "" {
		return ""
	}
	mediaType, size, ok := property.ParseDataURI(uri)
	if !ok {
		return "[image]"
	}
	return fmt.Sprintf("[image %s %s]", mediaType, lang.Count(size, "byte"))
}
