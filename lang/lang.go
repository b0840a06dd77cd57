// Package lang formats user facing text.
package lang

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gertd/go-pluralize"
)

const (
	DefaultPattern   = "%s"
	DefaultSeparator = ","
	DefaultOperator  = "and"
)

var (
	plurals = pluralize.NewClient()
)

// Enumerator joins words into a list like "a, b and c".
type Enumerator struct {
	Pattern   string
	Separator string
	Operator  string
}

func (e Enumerator) Do(elements ...string) string {
	pattern, separator, operator := DefaultPattern, DefaultSeparator, DefaultOperator
	if e.Pattern != "" {
		pattern = e.Pattern
	}
	if e.Separator != "" {
		separator = e.Separator
	}
	if e.Operator != "" {
		operator = e.Operator
	}
	res := &bytes.Buffer{}
	for idx, element := range elements {
		fmt.Fprintf(res, pattern, element)
		if idx+2 < len(elements) {
			fmt.Fprintf(res, "%s ", separator)
		} else if idx+1 < len(elements) {
			fmt.Fprintf(res, " %s ", operator)
		}
	}
	return res.String()
}

// Count returns n followed by word, pluralized unless n is 1.
func Count(n int, word string) string {
	return plurals.Pluralize(word, n, true)
}

func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Label turns a property name like "sleight_of_hand_bonus" into "Sleight of hand bonus".
func Label(name string) string {
	return Capitalize(strings.ReplaceAll(name, "_", " "))
}
