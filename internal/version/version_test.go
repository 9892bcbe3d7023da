package version

import (
	"testing"

	"github.com/fatih/color"
)

func override(t *testing.T, v, commit, date string) {
	t.Helper()
	origV, origC, origD := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = origV, origC, origD })
}

func TestInfo(t *testing.T) {
	cases := []struct {
		version, commit, date string
		want                  string
	}{
		{"1.2.3", "", "", "twigblock 1.2.3"},
		{"1.2.3", "abc123", "", "twigblock 1.2.3 (commit abc123)"},
		{"0.1.0-dev", "abc123", "2026-01-15", "twigblock 0.1.0-dev (commit abc123, built 2026-01-15)"},
	}
	for _, tc := range cases {
		override(t, tc.version, tc.commit, tc.date)
		if got := Info(false); got != tc.want {
			t.Errorf("Info() = %q, want %q", got, tc.want)
		}
	}
}

func TestColoredWithoutColorKeepsText(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	for _, v := range []string{"1.2.3", "2.0.0-rc.1+build.7", "dev"} {
		override(t, v, "", "")
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}
