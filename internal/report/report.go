// Package report renders pipeline results as a colored table, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"twigblock/internal/diag"
	"twigblock/internal/diagfmt"
	"twigblock/internal/observ"
)

// Format selects the output encoding.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatPretty:
		return FormatPretty, nil
	case FormatJSON, FormatYAML:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (want pretty, json or yaml)", s)
}

// Options configures a Printer.
type Options struct {
	Format Format
	Color  bool
	Quiet  bool
	// MinSeverity hides diagnostics below it. Quiet raises it to warning.
	MinSeverity diag.Severity
	PathMode    diagfmt.PathMode
	BaseDir     string
	Sources     diagfmt.Sources
	// Timings is attached to structured output and printed after tables.
	Timings *observ.Timer
}

// Printer writes reports to one writer.
type Printer struct {
	w    io.Writer
	opts Options
}

// New returns a printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatPretty
	}
	return &Printer{w: w, opts: opts}
}

// Document is the root of JSON and YAML output.
type Document struct {
	Command     string                    `json:"command" yaml:"command"`
	Summary     any                       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Results     any                       `json:"results" yaml:"results"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics" yaml:"diagnostics"`
	Timings     *observ.Report            `json:"timings,omitempty" yaml:"timings,omitempty"`
}

func (p *Printer) document(command string, summary, results any, bag *diag.Bag) Document {
	doc := Document{
		Command: command,
		Summary: summary,
		Results: results,
		Diagnostics: diagfmt.BuildDiagnosticsOutput(bag, p.opts.Sources, diagfmt.JSONOpts{
			MinSeverity:  p.opts.MinSeverity,
			PathMode:     p.opts.PathMode,
			BaseDir:      p.opts.BaseDir,
			IncludeNotes: true,
		}),
	}
	if p.opts.Timings != nil {
		r := p.opts.Timings.Report()
		doc.Timings = &r
	}
	return doc
}

// emit encodes doc for structured formats. It reports false for pretty.
func (p *Printer) emit(doc Document) (bool, error) {
	switch p.opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// Diagnostics prints the bag in pretty form. Quiet output is one line per
// warning or error, without previews.
func (p *Printer) Diagnostics(bag *diag.Bag) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	bag.Sort()
	if p.opts.Quiet {
		floor := max(p.opts.MinSeverity, diag.SevWarning)
		var keep []diag.Diagnostic
		for _, d := range bag.Items() {
			if d.Severity >= floor {
				keep = append(keep, d)
			}
		}
		_, err := io.WriteString(p.w, diag.FormatShortDiagnostics(keep, false))
		return err
	}
	return diagfmt.Pretty(p.w, bag, p.opts.Sources, diagfmt.PrettyOpts{
		Color:       p.opts.Color,
		PathMode:    p.opts.PathMode,
		BaseDir:     p.opts.BaseDir,
		ShowNotes:   true,
		ShowPreview: true,
		MinSeverity: p.opts.MinSeverity,
	})
}

func (p *Printer) timings() {
	if p.opts.Timings != nil {
		fmt.Fprint(p.w, p.opts.Timings.Summary())
	}
}
