package lang

import (
	"testing"

	"github.com/pixil98/go-testutil"
	"golang.org/x/text/language"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		code   string
		expTag language.Tag
		expErr bool
	}{
		"empty selects english": {
			code:   "",
			expTag: language.English,
		},
		"japanese": {
			code:   "ja",
			expTag: language.Japanese,
		},
		"regional english": {
			code:   "en-GB",
			expTag: language.English,
		},
		"unsupported falls back": {
			code:   "de",
			expTag: language.English,
		},
		"malformed": {
			code:   "not a language!",
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := New(tt.code)
			if tt.expErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "tag", l.Tag().String(), tt.expTag.String())
		})
	}
}

func TestLang_Translate(t *testing.T) {
	tests := map[string]struct {
		code string
		key  string
		args []any
		exp  string
	}{
		"english with args": {
			code: "en",
			key:  UpdateAvailable,
			args: []any{"2.6.0", "2.5.0"},
			exp:  "Version 2.6.0 is available (current: 2.5.0)",
		},
		"japanese with args": {
			code: "ja",
			key:  UpdateNothing,
			args: []any{"2.5.0"},
			exp:  "アップデートはありません。2.5.0 が最新バージョンです",
		},
		"english without args": {
			code: "en",
			key:  CommandsOff,
			exp:  "Commands are disabled",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := New(tt.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "message", l.Translate(tt.key, tt.args...), tt.exp)
		})
	}
}

func TestCatalogComplete(t *testing.T) {
	for key := range messages[language.English] {
		for _, tag := range supported {
			if _, ok := messages[tag][key]; !ok {
				t.Errorf("%s missing translation for %q", tag, key)
			}
		}
	}
}
