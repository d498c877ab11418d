package logfields

import "log/slog"

// Canonical log field names.
const (
	KeyZone       = "zone"
	KeyName       = "name"
	KeyRegistry   = "registry"
	KeyPath       = "path"
	KeyListener   = "listener"
	KeyRemoteAddr = "remote_addr"
	KeyUser       = "user"
	KeyVersion    = "version"
	KeySubject    = "subject"
	KeyCount      = "count"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

func Zone(z string) slog.Attr       { return slog.String(KeyZone, z) }
func Name(n string) slog.Attr       { return slog.String(KeyName, n) }
func Registry(r string) slog.Attr   { return slog.String(KeyRegistry, r) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Listener(l string) slog.Attr   { return slog.String(KeyListener, l) }
func RemoteAddr(a string) slog.Attr { return slog.String(KeyRemoteAddr, a) }
func User(u string) slog.Attr       { return slog.String(KeyUser, u) }
func Version(v string) slog.Attr    { return slog.String(KeyVersion, v) }
func Subject(s string) slog.Attr    { return slog.String(KeySubject, s) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func Outcome(o string) slog.Attr    { return slog.String(KeyOutcome, o) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
