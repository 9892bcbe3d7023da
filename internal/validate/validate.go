// Package validate checks annotation comments against the current content
// of the blocks they were copied from.
package validate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"twigblock/internal/annotation"
	"twigblock/internal/block"
	"twigblock/internal/diag"
	"twigblock/internal/loader"
	"twigblock/internal/trace"
	"twigblock/internal/twig"
)

// Match tells which parts of a claim hold.
type Match struct {
	Hash    bool `json:"hash" yaml:"hash"`
	Version bool `json:"version" yaml:"version"`
}

// Result is one validated comment.
type Result struct {
	Comment       block.Comment `json:"comment" yaml:"comment"`
	SourceHash    string        `json:"source_hash" yaml:"source_hash"`
	SourceVersion string        `json:"source_version,omitempty" yaml:"source_version,omitempty"`
	Match         Match         `json:"match" yaml:"match"`
	Valid         bool          `json:"valid" yaml:"valid"`
	Origin        *block.Block  `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// TemplateHook observes each processed target.
type TemplateHook func(name string, err error, elapsed time.Duration)

// Validator checks annotations of target templates.
type Validator struct {
	src       block.Source
	resolver  *block.Resolver
	extractor *block.Extractor

	// MaxDiagnostics bounds the returned bag, 0 means unbounded.
	MaxDiagnostics int
	OnTemplate     TemplateHook
}

// New returns a validator reading templates from src.
func New(src block.Source, d twig.Delimiters) *Validator {
	return &Validator{
		src:       src,
		resolver:  block.NewResolver(src),
		extractor: block.NewExtractor(src, d),
	}
}

// Validate checks every annotation comment found in targets. Per-item
// failures are reported in the bag and never stop the run.
func (v *Validator) Validate(ctx context.Context, targets []string, defaultVersion string) ([]Result, *diag.Bag) {
	bag := diag.NewBag(v.MaxDiagnostics)
	// ошибки цепочки extends одинаковы для всех блоков шаблона
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	if v.src == nil {
		diag.ReportError(rep, diag.LoadEngine, "", 0, "validator has no template source").Emit()
		return nil, bag
	}

	names := append([]string(nil), targets...)
	sort.Strings(names)

	tracer := trace.FromContext(ctx)
	run := trace.Begin(tracer, trace.ScopePhase, "validate", trace.CurrentSpan(ctx).SpanID)
	defer run.End("")

	var results []Result
	for _, name := range names {
		if ctx.Err() != nil {
			diag.ReportWarning(rep, diag.LoadInfo, "", 0, "validation cancelled: "+ctx.Err().Error()).Emit()
			break
		}
		start := time.Now()
		span := trace.BeginTemplate(tracer, name, run.ID())
		res, err := v.validateTemplate(name, defaultVersion, rep)
		span.WithExtra("comments", fmt.Sprint(len(res))).End("")
		results = append(results, res...)
		if v.OnTemplate != nil {
			v.OnTemplate(name, err, time.Since(start))
		}
	}
	return results, bag
}

func (v *Validator) validateTemplate(name, defaultVersion string, rep diag.Reporter) ([]Result, error) {
	t, err := v.src.Load(name)
	if err != nil {
		code, _, line := block.Classify(err)
		// цель, которую не удалось загрузить, всегда ошибка
		diag.ReportError(rep, code, name, line, err.Error()).Emit()
		return nil, err
	}

	comments := block.Collect(t, defaultVersion)
	out := make([]Result, 0, len(comments))
	for _, c := range comments {
		out = append(out, v.validateComment(c, t.Module.ParentLine, defaultVersion, rep))
	}
	return out, nil
}

func (v *Validator) validateComment(c block.Comment, parentLine int, defaultVersion string, rep diag.Reporter) Result {
	r := Result{Comment: c, SourceHash: annotation.UnknownHash, SourceVersion: defaultVersion}

	if !c.Parsed {
		diag.ReportWarning(rep, diag.AnnUnparseable, c.Template, c.Line,
			fmt.Sprintf("comment above block %q is not a valid annotation: %q", c.Block, c.Text)).Emit()
	}

	origin, ok, err := v.resolver.ResolveOrigin(c.Template, c.Block)
	switch {
	case err != nil:
		code, sev, _ := block.Classify(err)
		if cause, ok := block.AncestryCause(err); ok {
			diag.NewReportBuilder(rep, sev, code, c.Template, parentLine, cause.Error()).Emit()
			break
		}
		diag.NewReportBuilder(rep, sev, code, c.Template, c.Lines.Start, err.Error()).Emit()
	case !ok:
		diag.ReportWarning(rep, diag.ResNoOrigin, c.Template, c.Lines.Start,
			fmt.Sprintf("block %q has no origin in any parent template", c.Block)).Emit()
	default:
		r.Origin = &origin
		hash, err := v.extractor.Hash(origin)
		if err != nil {
			code, sev, line := block.Classify(err)
			diag.NewReportBuilder(rep, sev, code, c.Template, c.Lines.Start, err.Error()).
				WithNote(origin.Template, line, "origin block declared here").Emit()
			break
		}
		r.SourceHash = hash
	}

	r.Match.Hash = c.Parsed && r.SourceHash != annotation.UnknownHash && c.Hash == r.SourceHash
	matches, err := annotation.VersionMatches(c.Version, defaultVersion)
	if err != nil {
		diag.ReportError(rep, diag.AnnBadVersion, c.Template, c.Line, err.Error()).Emit()
	}
	r.Match.Version = err == nil && matches
	r.Valid = r.Match.Hash && r.Match.Version
	return r
}

// Invalid filters results that failed validation.
func Invalid(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Valid {
			out = append(out, r)
		}
	}
	return out
}

var _ block.Source = (*loader.Loader)(nil)
