package display

import (
	"unicode"
	"unicode/utf8"

	"github.com/muesli/reflow/wordwrap"
)

// Width is the console column count output is wrapped to.
const Width = 80

// Wrap wraps text to Width columns. ANSI escape sequences take no width.
func Wrap(text string) string {
	return WrapTo(text, Width)
}

// WrapTo wraps text to width columns. A non-positive width leaves text as is.
func WrapTo(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
