package annotation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion wraps semver parse failures.
var ErrInvalidVersion = errors.New("invalid version")

// VersionMatches reports whether claimed satisfies ~defaultVersion.
// An empty default disables the check; an empty claim means the default.
func VersionMatches(claimed, defaultVersion string) (bool, error) {
	if defaultVersion == "" || claimed == "" {
		return true, nil
	}
	want, err := semver.NewVersion(foldVersion(defaultVersion))
	if err != nil {
		return false, fmt.Errorf("%w %q: %w", ErrInvalidVersion, defaultVersion, err)
	}
	got, err := semver.NewVersion(foldVersion(claimed))
	if err != nil {
		return false, fmt.Errorf("%w %q: %w", ErrInvalidVersion, claimed, err)
	}
	c, err := semver.NewConstraint("~" + want.String())
	if err != nil {
		return false, fmt.Errorf("%w %q: %w", ErrInvalidVersion, defaultVersion, err)
	}
	return c.Check(got), nil
}

// foldVersion drops the fourth component of framework versions like 6.6.0.0.
func foldVersion(v string) string {
	v = strings.TrimSpace(strings.TrimPrefix(v, "v"))
	core, rest := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, rest = v[:i], v[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ".") + rest
}
