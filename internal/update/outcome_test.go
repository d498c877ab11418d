package update

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-texter/internal/lang"
)

func TestEvaluate(t *testing.T) {
	tests := map[string]struct {
		res    Result
		exp    OutcomeKind
		expErr error
	}{
		"newer": {
			res: Result{Release: &Release{Name: "2.6.0", HTMLURL: "https://x/2.6.0"}},
			exp: NewerRemote,
		},
		"equal": {
			res: Result{Release: &Release{Name: "2.5.0"}},
			exp: UpToDate,
		},
		"older": {
			res: Result{Release: &Release{Name: "2.4.1"}},
			exp: OlderRemote,
		},
		"empty feed": {
			res:    Result{},
			exp:    FetchFailed,
			expErr: ErrNoReleases,
		},
		"transport": {
			res:    Result{Err: ErrTransport},
			exp:    FetchFailed,
			expErr: ErrTransport,
		},
		"bad name": {
			res:    Result{Release: &Release{Name: "nightly"}},
			exp:    FetchFailed,
			expErr: ErrMalformedResponse,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			o := Evaluate("2.5.0", tt.res)

			testutil.AssertEqual(t, "kind", o.Kind, tt.exp)
			testutil.AssertEqual(t, "local", o.Local, "2.5.0")
			if tt.expErr != nil {
				testutil.AssertEqual(t, "error", errors.Is(o.Err, tt.expErr), true)
				return
			}
			if o.Err != nil {
				t.Fatalf("unexpected error: %v", o.Err)
			}
		})
	}
}

func TestEvaluate_KeepsURL(t *testing.T) {
	o := Evaluate("2.5.0", Result{Release: &Release{Name: "2.6.0", HTMLURL: "https://x/2.6.0"}})

	testutil.AssertEqual(t, "version", o.Remote.Version(), "2.6.0")
	testutil.AssertEqual(t, "url", o.Remote.URL(), "https://x/2.6.0")
}

func TestReport(t *testing.T) {
	tr, err := lang.New("en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]struct {
		outcome   Outcome
		expLevels []string
		expTexts  []string
	}{
		"newer": {
			outcome:   Evaluate("2.5.0", Result{Release: &Release{Name: "2.6.0", HTMLURL: "https://x/2.6.0"}}),
			expLevels: []string{"level=INFO+2", "level=INFO+2"},
			expTexts:  []string{"Version 2.6.0 is available (current: 2.5.0)", "https://x/2.6.0"},
		},
		"equal": {
			outcome:   Evaluate("2.5.0", Result{Release: &Release{Name: "2.5.0"}}),
			expLevels: []string{"level=INFO"},
			expTexts:  []string{"2.5.0 is the latest version"},
		},
		"older": {
			outcome:   Evaluate("2.5.0", Result{Release: &Release{Name: "2.4.0"}}),
			expLevels: []string{"level=WARN"},
			expTexts:  []string{"development version"},
		},
		"failed": {
			outcome:   Evaluate("2.5.0", Result{Err: errors.New("dial tcp: refused")}),
			expLevels: []string{"level=INFO"},
			expTexts:  []string{"dial tcp: refused"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			Report(context.Background(), logger, tr, tt.outcome)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			testutil.AssertEqual(t, "lines", len(lines), len(tt.expLevels))
			for i := range min(len(lines), len(tt.expLevels)) {
				testutil.AssertEqual(t, tt.expLevels[i], strings.Contains(lines[i], tt.expLevels[i]), true)
				testutil.AssertEqual(t, tt.expTexts[i], strings.Contains(lines[i], tt.expTexts[i]), true)
			}
		})
	}
}
