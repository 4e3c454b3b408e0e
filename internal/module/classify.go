// Package module resolves module names against a list of search
// directories (spec.md §3) and classifies module bytes into one of four
// calling conventions (spec.md §4.2): Binary, NewStyle, WantJSON, or
// OldStyle. Classification is total and evaluated in a fixed precedence
// order so every byte sequence lands in exactly one style.
package module

import (
	"strings"
	"unicode/utf8"
)

// Style is one of the four module calling conventions.
type Style int

const (
	// StyleBinary is any module whose bytes are not valid UTF-8: it is
	// invoked directly with a JSON args file, no interpreter involved.
	StyleBinary Style = iota
	// StyleNewStyle modules contain the literal marker "AnsibleModule(";
	// arguments are piped as JSON on stdin.
	StyleNewStyle
	// StyleWantJSON modules contain the literal marker "WANT_JSON";
	// arguments are written to a JSON file passed as an argument.
	StyleWantJSON
	// StyleOldStyle is the fallback: arguments are written as
	// space-joined k=v pairs in a file passed as an argument.
	StyleOldStyle
)

func (s Style) String() string {
	switch s {
	case StyleBinary:
		return "binary"
	case StyleNewStyle:
		return "new_style"
	case StyleWantJSON:
		return "want_json"
	case StyleOldStyle:
		return "old_style"
	default:
		return "unknown"
	}
}

const (
	newStyleMarker  = "AnsibleModule("
	wantJSONMarker  = "WANT_JSON"
)

// Classify inspects module bytes and returns exactly one Style,
// evaluated in precedence order: Binary > NewStyle > WantJSON >
// OldStyle (spec.md §8 classifier totality property).
func Classify(data []byte) Style {
	if !utf8.Valid(data) {
		return StyleBinary
	}
	text := string(data)
	switch {
	case strings.Contains(text, newStyleMarker):
		return StyleNewStyle
	case strings.Contains(text, wantJSONMarker):
		return StyleWantJSON
	default:
		return StyleOldStyle
	}
}
