package core

import "testing"

func TestLineIndentAt(t *testing.T) {
	text := "def f():\n    if a:\n\t\tgo()\n"
	if got := lineIndentAt(text, 0); got != "" {
		t.Errorf("indent at 0 = %q", got)
	}
	if got := lineIndentAt(text, 13); got != "    " {
		t.Errorf("indent on second line = %q", got)
	}
	if got := lineIndentAt(text, 20); got != "\t\t" {
		t.Errorf("tab indent = %q", got)
	}
}

func TestDetectIndentUnit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"four_spaces", "def f():\n    x = 1\n", "    "},
		{"two_spaces", "if (a) {\n  b();\n}\n", "  "},
		{"tabs", "if a {\n\tb()\n}\n", "\t"},
		{"flat_text_falls_back", "a = 1\nb = 2\n", "    "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectIndentUnit(tt.text); got != tt.want {
				t.Errorf("detectIndentUnit = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReindent(t *testing.T) {
	body := "        first()\n            nested()\n        last()"
	want := "  first()\n      nested()\n  last()"
	if got := reindent(body, "  "); got != want {
		t.Errorf("reindent = %q, want %q", got, want)
	}

	// Blank lines stay empty instead of gaining trailing whitespace.
	if got := reindent("    a\n\n    b", ""); got != "a\n\nb" {
		t.Errorf("reindent with blank line = %q", got)
	}
}

func TestSplice(t *testing.T) {
	if got := splice("hello world", 6, 11, "there"); got != "hello there" {
		t.Errorf("splice = %q", got)
	}
	if got := splice("abc", -5, 99, "x"); got != "x" {
		t.Errorf("splice with clamped bounds = %q", got)
	}
}
