package update

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// Comparison describes the remote version relative to the local one.
type Comparison int

const (
	Older Comparison = iota - 1
	Equal
	Newer
)

func (c Comparison) String() string {
	switch c {
	case Older:
		return "older"
	case Equal:
		return "equal"
	case Newer:
		return "newer"
	default:
		return fmt.Sprintf("Comparison(%d)", int(c))
	}
}

// Compare orders remote against local using major.minor.patch[.build]
// precedence. Build metadata is ignored.
func Compare(local, remote string) (Comparison, error) {
	lv, err := version.NewVersion(local)
	if err != nil {
		return Equal, fmt.Errorf("parsing local version %q: %w", local, err)
	}
	rv, err := version.NewVersion(remote)
	if err != nil {
		return Equal, fmt.Errorf("parsing remote version %q: %w", remote, err)
	}

	return Comparison(rv.Compare(lv)), nil
}

// VersionInfo describes one published release.
type VersionInfo struct {
	version string
	url     string
}

// NewVersionInfo validates name as a version and keeps it in normalized form.
func NewVersionInfo(name, url string) (VersionInfo, error) {
	v, err := version.NewVersion(name)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("%w: release name %q: %w", ErrMalformedResponse, name, err)
	}
	return VersionInfo{version: v.String(), url: url}, nil
}

func (v VersionInfo) Version() string {
	return v.version
}

func (v VersionInfo) URL() string {
	return v.url
}
