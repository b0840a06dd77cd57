package property

// Kind tells the widget layer how to render a property.
type Kind int

const (
	KindText Kind = iota
	KindLongText
	KindAuto
	KindToggle
	KindImage
	KindName
)

var kindNames = map[Kind]string{
	KindText:     "text",
	KindLongText: "long",
	KindAuto:     "auto",
	KindToggle:   "toggle",
	KindImage:    "image",
	KindName:     "name",
}

func (k Kind) String() string {
	if s, found := kindNames[k]; found {
		return s
	}
	return "unknown"
}
