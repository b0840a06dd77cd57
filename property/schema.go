package property

import (
	"github.com/pkg/errors"
	"github.com/zond/charsheet"
	"github.com/zond/charsheet/storage"
)

const (
	// NameProperty is the name of the property every schema declares for the character name.
	NameProperty = "name"
)

// Dispatcher runs functions on the goroutine that owns the properties.
type Dispatcher interface {
	Post(f func())
}

type immediate struct{}

func (immediate) Post(f func()) {
	f()
}

type Option func(*Schema)

// WithDispatcher makes asynchronous completions, such as Image.SetFile,
// run through d. Without it they run on whatever goroutine completes them.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Schema) {
		s.dispatcher = d
	}
}

// Schema collects property declarations. Every property constructor takes
// the schema, and Build turns the declarations into a Registry.
//
// Construction errors are sticky and reported by Build.
type Schema struct {
	store      storage.Store
	title      storage.Title
	dispatcher Dispatcher
	props      map[string]Property
	order      []string
	name       *Name
	err        error
	built      bool
}

func NewSchema(store storage.Store, title storage.Title, opts ...Option) *Schema {
	s := &Schema{
		store:      store,
		title:      title,
		dispatcher: immediate{},
		props:      map[string]Property{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.name = newName(s)
	return s
}

func (s *Schema) key(name string) string {
	return charsheet.CharacterPrefix(s.title.Title()) + name
}

func (s *Schema) fail(err error) {
	if s.err == nil {
		s.err = charsheet.WithStack(err)
	}
}

func (s *Schema) register(p Property) {
	if s.built {
		s.fail(errors.Errorf("%q declared after Build", p.Name()))
		return
	}
	if _, found := s.props[p.Name()]; found {
		s.fail(errors.Errorf("%q declared twice", p.Name()))
		return
	}
	s.props[p.Name()] = p
	s.order = append(s.order, p.Name())
}

// replace makes outer the registered handle for the property inner was registered as.
func (s *Schema) replace(inner, outer Property) {
	if current, found := s.props[inner.Name()]; !found || current != inner {
		s.fail(errors.Errorf("%q wrapped, but it is not the registered handle", inner.Name()))
		return
	}
	s.props[inner.Name()] = outer
}

// Name returns the character name property.
func (s *Schema) Name() *Name {
	return s.name
}

// Build wires every computed property as a dependant of its dependencies,
// in declaration order, and returns the frozen name to property mapping.
//
// Dependencies must not form a cycle. Nothing checks that, and an update
// of a cyclic dependency never returns.
func (s *Schema) Build() (*Registry, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.built {
		return nil, errors.New("schema already built")
	}
	for _, name := range s.order {
		p := s.props[name]
		auto, ok := AsAuto(p)
		if !ok {
			continue
		}
		for _, dependency := range auto.dependencies {
			registered, found := s.props[dependency.Name()]
			if !found || registered.base() != dependency.base() {
				return nil, errors.Errorf("%q depends on %q, which is not declared in this schema", name, dependency.Name())
			}
			registered.AddDependant(p)
		}
	}
	s.built = true
	return &Registry{
		schema: s,
		props:  s.props,
		order:  append([]string{}, s.order...),
	}, nil
}

// AsAuto finds the computed property inside p and any decorators around it.
func AsAuto(p Property) (*Auto, bool) {
	for {
		switch v := p.(type) {
		case *Auto:
			return v, true
		case unwrapper:
			p = v.Unwrap()
		default:
			return nil, false
		}
	}
}

// Registry looks up the properties of a built schema by name.
type Registry struct {
	schema *Schema
	props  map[string]Property
	order  []string
}

func (r *Registry) Lookup(name string) (Property, bool) {
	p, found := r.props[name]
	return p, found
}

// Names returns the property names in declaration order, starting with NameProperty.
func (r *Registry) Names() []string {
	return append([]string{}, r.order...)
}

func (r *Registry) Name() *Name {
	return r.schema.name
}

// Character returns the current character name.
func (r *Registry) Character() string {
	return r.schema.title.Title()
}

func (r *Registry) Store() storage.Store {
	return r.schema.store
}

// UpdateAll updates every property in declaration order.
func (r *Registry) UpdateAll() {
	for _, name := range r.order {
		r.props[name].Update()
	}
}

// Export returns every stored value and metadata entry of the current character as JSON.
func (r *Registry) Export() ([]byte, error) {
	return storage.Export(r.schema.store, charsheet.CharacterPrefix(r.Character()))
}

// Import stores the entries of an Export and updates every property.
// Entries belonging to other characters are stored too, but not shown until
// the character is renamed to them.
func (r *Registry) Import(b []byte) error {
	if _, err := storage.Import(r.schema.store, b); err != nil {
		return charsheet.WithStack(err)
	}
	r.UpdateAll()
	return nil
}
