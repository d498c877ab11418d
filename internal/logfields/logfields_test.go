package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestStringHelpers(t *testing.T) {
	tests := map[string]struct {
		attr   slog.Attr
		expKey string
		expVal string
	}{
		"zone":        {attr: Zone("lobby"), expKey: KeyZone, expVal: "lobby"},
		"name":        {attr: Name("welcome"), expKey: KeyName, expVal: "welcome"},
		"registry":    {attr: Registry("removable"), expKey: KeyRegistry, expVal: "removable"},
		"path":        {attr: Path("/tmp/ft.json"), expKey: KeyPath, expVal: "/tmp/ft.json"},
		"listener":    {attr: Listener("telnet"), expKey: KeyListener, expVal: "telnet"},
		"remote addr": {attr: RemoteAddr("1.2.3.4:5"), expKey: KeyRemoteAddr, expVal: "1.2.3.4:5"},
		"user":        {attr: User("ann"), expKey: KeyUser, expVal: "ann"},
		"version":     {attr: Version("2.6.0"), expKey: KeyVersion, expVal: "2.6.0"},
		"subject":     {attr: Subject("texter.display.lobby"), expKey: KeySubject, expVal: "texter.display.lobby"},
		"outcome":     {attr: Outcome("equal"), expKey: KeyOutcome, expVal: "equal"},
		"count":       {attr: Count(3), expKey: KeyCount, expVal: "3"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "key", tt.attr.Key, tt.expKey)
			testutil.AssertEqual(t, "value", tt.attr.Value.String(), tt.expVal)
		})
	}
}

func TestError(t *testing.T) {
	testutil.AssertEqual(t, "nil", Error(nil).Value.String(), "")
	testutil.AssertEqual(t, "key", Error(nil).Key, KeyError)
	testutil.AssertEqual(t, "value", Error(errors.New("boom")).Value.String(), "boom")
}
