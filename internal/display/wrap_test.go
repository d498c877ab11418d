package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestWrap(t *testing.T) {
	short := "lobby/welcome (1, 2, 3) Hello"
	testutil.AssertEqual(t, "short unchanged", Wrap(short), short)

	long := strings.TrimSpace(strings.Repeat("word ", 30))
	for i, line := range strings.Split(Wrap(long), "\n") {
		if len(line) > Width {
			t.Errorf("line %d is %d wide", i, len(line))
		}
	}

	testutil.AssertEqual(t, "no width", WrapTo(long, 0), long)
	testutil.AssertEqual(t, "narrow", WrapTo("ab cd", 2), "ab\ncd")
}

func TestCapitalize(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"empty":      {in: "", exp: ""},
		"lower":      {in: "text not found", exp: "Text not found"},
		"already up": {in: "Done", exp: "Done"},
		"multibyte":  {in: "éclair", exp: "Éclair"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "capitalized", Capitalize(tt.in), tt.exp)
		})
	}
}
