package update

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-texter/internal/lang"
)

// LevelNotice sits between info and warn for messages operators should see
// but that need no action.
const LevelNotice = slog.Level(2)

type OutcomeKind int

const (
	FetchFailed OutcomeKind = iota
	OlderRemote
	UpToDate
	NewerRemote
)

func (k OutcomeKind) String() string {
	switch k {
	case FetchFailed:
		return "fetch_failed"
	case OlderRemote:
		return "older_remote"
	case UpToDate:
		return "equal"
	case NewerRemote:
		return "newer_remote"
	default:
		return "unknown"
	}
}

// Outcome is the result of one update check.
type Outcome struct {
	Kind   OutcomeKind
	Local  string
	Remote VersionInfo
	Err    error
}

// Result is what a fetch hands back to the main loop.
type Result struct {
	Release *Release
	Err     error
}

// Evaluate classifies a fetch result against the local version.
func Evaluate(local string, res Result) Outcome {
	if res.Err != nil {
		return Outcome{Kind: FetchFailed, Local: local, Err: res.Err}
	}
	if res.Release == nil {
		return Outcome{Kind: FetchFailed, Local: local, Err: ErrNoReleases}
	}

	info, err := NewVersionInfo(res.Release.Name, res.Release.HTMLURL)
	if err != nil {
		return Outcome{Kind: FetchFailed, Local: local, Err: err}
	}

	cmp, err := Compare(local, info.Version())
	if err != nil {
		return Outcome{Kind: FetchFailed, Local: local, Remote: info, Err: err}
	}

	o := Outcome{Local: local, Remote: info}
	switch cmp {
	case Older:
		o.Kind = OlderRemote
	case Equal:
		o.Kind = UpToDate
	case Newer:
		o.Kind = NewerRemote
	}
	return o
}

// Translator looks up localized messages.
type Translator interface {
	Translate(key string, args ...any) string
}

// Report logs an outcome for the operator.
func Report(ctx context.Context, logger *slog.Logger, tr Translator, o Outcome) {
	switch o.Kind {
	case OlderRemote:
		logger.WarnContext(ctx, tr.Translate(lang.VersionDev),
			"local", o.Local, "remote", o.Remote.Version())
	case UpToDate:
		logger.InfoContext(ctx, tr.Translate(lang.UpdateNothing, o.Local))
	case NewerRemote:
		logger.Log(ctx, LevelNotice, tr.Translate(lang.UpdateAvailable, o.Remote.Version(), o.Local))
		logger.Log(ctx, LevelNotice, tr.Translate(lang.UpdateDownload, o.Remote.URL()))
	default:
		reason := "unknown error"
		if o.Err != nil {
			reason = o.Err.Error()
		}
		logger.InfoContext(ctx, tr.Translate(lang.UpdateOffline, reason))
	}
}
