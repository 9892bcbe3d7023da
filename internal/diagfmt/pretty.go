package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"twigblock/internal/diag"
)

// Pretty writes one diagnostic per entry:
//
//	<location>: <SEV> <CODE>: <message>
//	   12 | source line
//	  note: <location>: <message>
//
// bag is expected to be sorted by the caller.
func Pretty(w io.Writer, bag *diag.Bag, src Sources, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	sev := func(s diag.Severity) string { return s.String() }
	dim := fmt.Sprint
	if opts.Color {
		sev = func(s diag.Severity) string { return severityColor(s).Sprint(s.String()) }
		dim = color.New(color.Faint).Sprint
	}

	for _, d := range bag.Items() {
		if d.Severity < opts.MinSeverity {
			continue
		}
		var b strings.Builder
		loc := locate(src, d.Template, d.Line, opts.PathMode, opts.BaseDir)
		if loc == "" {
			loc = d.Path
		}
		if loc != "" {
			b.WriteString(loc)
			b.WriteString(": ")
		}
		fmt.Fprintf(&b, "%s %s: %s\n", sev(d.Severity), d.Code.ID(), d.Message)
		if opts.ShowPreview {
			if text, ok := previewLine(src, d.Template, d.Line); ok {
				b.WriteString(dim(fmt.Sprintf("%6d | ", d.Line)))
				b.WriteString(text)
				b.WriteString("\n")
			}
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				nloc := locate(src, n.Template, n.Line, opts.PathMode, opts.BaseDir)
				if nloc != "" {
					nloc += ": "
				}
				fmt.Fprintf(&b, "  %s %s%s\n", dim("note:"), nloc, n.Msg)
			}
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	if n := bag.Dropped(); n > 0 {
		_, err := fmt.Fprintf(w, "%s\n", dim(fmt.Sprintf("... %d more diagnostics not shown (raise --max-diagnostics)", n)))
		return err
	}
	return nil
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
