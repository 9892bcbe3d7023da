package diagfmt

import "twigblock/internal/diag"

// PathMode specifies how diagnostic locations are displayed.
type PathMode uint8

const (
	// PathModeTemplate prints the logical template name (@Ns/path.twig).
	PathModeTemplate PathMode = iota
	// PathModeAbsolute prints the absolute file path.
	PathModeAbsolute
	// PathModeRelative prints the file path relative to BaseDir.
	PathModeRelative
	PathModeBasename
)

// ParsePathMode maps a flag value to a PathMode.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "template":
		return PathModeTemplate, true
	case "absolute":
		return PathModeAbsolute, true
	case "relative":
		return PathModeRelative, true
	case "basename":
		return PathModeBasename, true
	}
	return PathModeTemplate, false
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color       bool
	PathMode    PathMode
	BaseDir     string
	ShowNotes   bool
	ShowPreview bool
	// MinSeverity hides diagnostics below this level.
	MinSeverity diag.Severity
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	MinSeverity  diag.Severity
	PathMode     PathMode
	BaseDir      string
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}
