package report

import (
	"fmt"
	"strconv"
	"strings"

	"twigblock/internal/annotate"
	"twigblock/internal/pipeline"
	"twigblock/internal/validate"
)

// ValidateSummary counts validate outcomes.
type ValidateSummary struct {
	Templates int `json:"templates" yaml:"templates"`
	Checked   int `json:"checked" yaml:"checked"`
	Invalid   int `json:"invalid" yaml:"invalid"`
}

// Validate prints a validate run.
func (p *Printer) Validate(res *pipeline.ValidateResult) error {
	sum := ValidateSummary{Templates: len(res.Targets), Checked: len(res.Results), Invalid: res.Invalid()}
	results := res.Results
	if results == nil {
		results = []validate.Result{}
	}
	if ok, err := p.emit(p.document("validate", sum, results, res.Bag)); ok {
		return err
	}

	t := &table{header: []string{"STATUS", "LOCATION", "BLOCK", "CLAIM", "ORIGIN", "DETAIL"}}
	for _, r := range res.Results {
		if p.opts.Quiet && r.Valid {
			continue
		}
		status := colored("ok", okColor)
		if !r.Valid {
			status = colored("invalid", badColor)
		}
		origin := "-"
		if r.Origin != nil {
			origin = r.Origin.Template
		}
		claim := shortHash(r.Comment.Hash)
		if r.Comment.Version != "" {
			claim += "@" + r.Comment.Version
		}
		t.add(status,
			plain(fmt.Sprintf("%s:%d", r.Comment.Template, r.Comment.Line)),
			plain(r.Comment.Block),
			plain(claim),
			plain(origin),
			colored(mismatch(r), warnColor))
	}
	if len(t.rows) > 0 {
		if err := t.render(p.w, p.opts.Color); err != nil {
			return err
		}
	}
	if err := p.Diagnostics(res.Bag); err != nil {
		return err
	}
	line := fmt.Sprintf("%d annotations in %d templates, %d invalid\n", sum.Checked, sum.Templates, sum.Invalid)
	if p.opts.Color {
		c := okColor
		if sum.Invalid > 0 {
			c = badColor
		}
		line = c.Sprint(line)
	}
	fmt.Fprint(p.w, line)
	p.timings()
	return nil
}

func mismatch(r validate.Result) string {
	var parts []string
	if !r.Comment.Parsed {
		parts = append(parts, "unparseable")
	} else {
		if !r.Match.Hash {
			if r.SourceHash == "" {
				parts = append(parts, "no source")
			} else {
				parts = append(parts, "hash is now "+shortHash(r.SourceHash))
			}
		}
		if !r.Match.Version {
			parts = append(parts, "version "+r.Comment.Version+" outside ~"+r.SourceVersion)
		}
	}
	return strings.Join(parts, ", ")
}

// AnnotateSummary counts annotate outcomes.
type AnnotateSummary struct {
	Templates int  `json:"templates" yaml:"templates"`
	Created   int  `json:"created" yaml:"created"`
	Updated   int  `json:"updated" yaml:"updated"`
	Unchanged int  `json:"unchanged" yaml:"unchanged"`
	Skipped   int  `json:"skipped" yaml:"skipped"`
	DryRun    bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// Annotate prints an annotate run. Unchanged and skipped blocks are
// listed only in structured output.
func (p *Printer) Annotate(res *pipeline.AnnotateResult) error {
	sum := AnnotateSummary{Templates: len(res.Targets), DryRun: res.DryRun}
	sum.Created, sum.Updated, sum.Unchanged, sum.Skipped = res.Counts()
	results := res.Results
	if results == nil {
		results = []annotate.Result{}
	}
	if ok, err := p.emit(p.document("annotate", sum, results, res.Bag)); ok {
		return err
	}

	t := &table{header: []string{"ACTION", "LOCATION", "BLOCK", "HASH"}}
	for _, r := range res.Results {
		var action cell
		switch {
		case r.Created:
			action = colored("created", okColor)
		case r.Updated:
			action = colored("updated", warnColor)
		default:
			continue
		}
		t.add(action,
			plain(r.Block.Template+":"+strconv.Itoa(r.Block.Lines.Start)),
			plain(r.Block.Name),
			plain(shortHash(r.SourceHash)))
	}
	if len(t.rows) > 0 && !p.opts.Quiet {
		if err := t.render(p.w, p.opts.Color); err != nil {
			return err
		}
	}
	if err := p.Diagnostics(res.Bag); err != nil {
		return err
	}
	prefix := ""
	if res.DryRun {
		prefix = "dry run: "
	}
	fmt.Fprintf(p.w, "%s%d created, %d updated, %d unchanged, %d skipped in %d templates\n",
		prefix, sum.Created, sum.Updated, sum.Unchanged, sum.Skipped, sum.Templates)
	p.timings()
	return nil
}
