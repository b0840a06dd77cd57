package property

// Calculator derives a value from the current values of other properties.
// It must not read the property it computes, directly or indirectly.
type Calculator func() string

// Auto is computed from its dependencies unless a value has been stored
// for it, in which case it is overridden and the stored value wins.
type Auto struct {
	*core
	dependencies []Property
	calculate    Calculator
	overridden   bool
}

// NewAuto declares a computed property. Schema.Build makes it a dependant of
// every property in dependencies.
func NewAuto(s *Schema, name string, dependencies []Property, calculate Calculator) *Auto {
	a := &Auto{
		core:         newCore(s, name, KindAuto),
		dependencies: dependencies,
		calculate:    calculate,
	}
	s.register(a)
	return a
}

func (a *Auto) Get() (string, bool) {
	if v, found := a.load(); found {
		a.overridden = true
		return v, true
	}
	a.overridden = false
	return a.calculate(), true
}

func (a *Auto) write(value string) bool {
	ok := a.store(value)
	if value == "" {
		a.overridden = false
	} else if ok {
		a.overridden = true
	}
	return ok
}

func (a *Auto) Set(value string) bool {
	if !a.write(value) {
		return false
	}
	a.Update()
	return true
}

func (a *Auto) Update() {
	v, _ := a.Get()
	a.propagate(v)
}

// Overridden reports whether the last Get or Set found a stored value.
func (a *Auto) Overridden() bool {
	return a.overridden
}

func (a *Auto) Reset() {
	a.Set("")
}

func (a *Auto) Dependencies() []Property {
	return append([]Property{}, a.dependencies...)
}
