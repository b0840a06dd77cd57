package lang

import (
	"testing"
)

func TestEnumerator(t *testing.T) {
	tests := []struct {
		enumerator Enumerator
		input      []string
		expected   string
	}{
		{Enumerator{}, nil, ""},
		{Enumerator{}, []string{"str"}, "str"},
		{Enumerator{}, []string{"str", "dex"}, "str and dex"},
		{Enumerator{}, []string{"str", "dex", "con"}, "str, dex and con"},
		{Enumerator{Pattern: "[%s]", Operator: "or"}, []string{"on", "off"}, "[on] or [off]"},
		{Enumerator{Separator: ";"}, []string{"a", "b", "c", "d"}, "a; b; c and d"},
	}
	for _, tt := range tests {
		if got := tt.enumerator.Do(tt.input...); got != tt.expected {
			t.Errorf("%+v.Do(%q) = %q, want %q", tt.enumerator, tt.input, got, tt.expected)
		}
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		count    int
		word     string
		expected string
	}{
		{0, "property", "0 properties"},
		{1, "property", "1 property"},
		{2, "key", "2 keys"},
		{3, "proficiency", "3 proficiencies"},
	}
	for _, tt := range tests {
		if got := Count(tt.count, tt.word); got != tt.expected {
			t.Errorf("Count(%v, %q) = %q, want %q", tt.count, tt.word, got, tt.expected)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sleight_of_hand_bonus", "Sleight of hand bonus"},
		{"ac", "Ac"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Label(tt.input); got != tt.expected {
				t.Errorf("Label(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
