package diagfmt

import (
	"encoding/json"
	"io"

	"twigblock/internal/diag"
)

// NoteJSON is a secondary location of a diagnostic.
type NoteJSON struct {
	Message  string `json:"message" yaml:"message"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

// DiagnosticJSON is the serialized form of a diagnostic.
type DiagnosticJSON struct {
	Severity string     `json:"severity" yaml:"severity"`
	Code     string     `json:"code" yaml:"code"`
	Title    string     `json:"title" yaml:"title"`
	Message  string     `json:"message" yaml:"message"`
	Template string     `json:"template,omitempty" yaml:"template,omitempty"`
	Location string     `json:"location,omitempty" yaml:"location,omitempty"`
	Line     int        `json:"line,omitempty" yaml:"line,omitempty"`
	Notes    []NoteJSON `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics" yaml:"diagnostics"`
	Count       int              `json:"count" yaml:"count"`
	Errors      int              `json:"errors" yaml:"errors"`
	Warnings    int              `json:"warnings" yaml:"warnings"`
	Dropped     int              `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// BuildDiagnosticsOutput builds the output structure without encoding it.
func BuildDiagnosticsOutput(bag *diag.Bag, src Sources, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	if bag == nil {
		return out
	}
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	for _, d := range items[:n] {
		if d.Severity < opts.MinSeverity {
			continue
		}
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Template: d.Template,
			Location: locate(src, d.Template, d.Line, opts.PathMode, opts.BaseDir),
			Line:     d.Line,
		}
		if dj.Location == "" {
			dj.Location = d.Path
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{
					Message:  note.Msg,
					Location: locate(src, note.Template, note.Line, opts.PathMode, opts.BaseDir),
				})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	out.Errors = bag.Count(diag.SevError)
	out.Warnings = bag.Count(diag.SevWarning)
	out.Dropped = bag.Dropped()
	return out
}

// JSON writes the diagnostics as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, src Sources, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, src, opts))
}
