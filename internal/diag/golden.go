package diag

import (
	"fmt"
	"sort"
	"strings"
)

// FormatShortDiagnostics renders diagnostics one per line in a stable order,
// suitable for golden comparisons and terse CLI output.
func FormatShortDiagnostics(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	sorted := make([]Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i], sorted[j]
		if di.Template != dj.Template {
			return di.Template < dj.Template
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Code < dj.Code
	})

	var sb strings.Builder
	for _, d := range sorted {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			loc := n.Template
			if n.Line > 0 {
				loc = fmt.Sprintf("%s:%d", n.Template, n.Line)
			}
			fmt.Fprintf(&sb, "  note: %s: %s\n", loc, n.Msg)
		}
	}
	return sb.String()
}
