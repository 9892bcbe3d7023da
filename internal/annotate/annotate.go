package annotate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"twigblock/internal/annotation"
	"twigblock/internal/block"
	"twigblock/internal/diag"
	"twigblock/internal/fsx"
	"twigblock/internal/loader"
	"twigblock/internal/project/dag"
	"twigblock/internal/source"
	"twigblock/internal/trace"
	"twigblock/internal/twig"
)

// Skip reasons.
const (
	SkipRoot     = "root"
	SkipNoOrigin = "no-origin"
	SkipNotFound = "not-found"
	SkipError    = "error"
)

// Result is the outcome for one block.
type Result struct {
	Block         block.Block `json:"block" yaml:"block"`
	SourceHash    string      `json:"source_hash,omitempty" yaml:"source_hash,omitempty"`
	SourceVersion string      `json:"source_version,omitempty" yaml:"source_version,omitempty"`
	Created       bool        `json:"created" yaml:"created"`
	Updated       bool        `json:"updated" yaml:"updated"`
	Skipped       string      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Changed reports whether the block's annotation line was inserted or rewritten.
func (r Result) Changed() bool {
	return r.Created || r.Updated
}

// Source is what the annotator needs from the loader.
type Source interface {
	Load(name string) (*loader.Template, error)
	SourcePath(name string) (string, error)
	Invalidate(name string)
}

// TemplateHook observes each processed target.
type TemplateHook func(name string, err error, elapsed time.Duration)

// Annotator (re)writes annotation comments into target templates.
type Annotator struct {
	src       Source
	delim     twig.Delimiters
	markers   block.Markers
	resolver  *block.Resolver
	extractor *block.Extractor

	DryRun         bool
	MaxDiagnostics int
	OnTemplate     TemplateHook
}

func New(src Source, d twig.Delimiters) *Annotator {
	return &Annotator{
		src:       src,
		delim:     d,
		markers:   block.NewMarkers(d),
		resolver:  block.NewResolver(src),
		extractor: block.NewExtractor(src, d),
	}
}

// Annotate processes targets parents first. Per-block failures are
// reported in the bag and never stop the run.
func (a *Annotator) Annotate(ctx context.Context, targets []string, defaultVersion string) ([]Result, *diag.Bag) {
	bag := diag.NewBag(a.MaxDiagnostics)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	if a.src == nil {
		diag.ReportError(rep, diag.LoadEngine, "", 0, "annotator has no template source").Emit()
		return nil, bag
	}

	tracer := trace.FromContext(ctx)
	run := trace.Begin(tracer, trace.ScopePhase, "annotate", trace.CurrentSpan(ctx).SpanID)
	defer run.End("")

	order := a.order(targets, rep)
	ledger := NewLedger()

	var results []Result
	for _, name := range order {
		if ctx.Err() != nil {
			diag.ReportWarning(rep, diag.AnnInfo, "", 0, "annotation cancelled: "+ctx.Err().Error()).Emit()
			break
		}
		start := time.Now()
		span := trace.BeginTemplate(tracer, name, run.ID())
		res, err := a.annotateTemplate(ctx, name, defaultVersion, ledger, rep, span.ID())
		span.WithExtra("blocks", fmt.Sprint(len(res))).End("")
		results = append(results, res...)
		if a.OnTemplate != nil {
			a.OnTemplate(name, err, time.Since(start))
		}
	}
	return results, bag
}

// order sorts targets so that a template comes after its parent. Templates
// caught in a cycle go last; they still get processed.
func (a *Annotator) order(targets []string, rep diag.Reporter) []string {
	nodes := make([]dag.TemplateNode, 0, len(targets))
	seen := make(map[string]struct{}, len(targets))
	for _, name := range targets {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		node := dag.TemplateNode{Name: name, Reporter: rep}
		// ошибки загрузки сообщаются позже, при обработке шаблона
		if t, err := a.src.Load(name); err == nil {
			node.Parent = t.Parent()
			node.ParentLine = t.Module.ParentLine
		}
		nodes = append(nodes, node)
	}
	idx := dag.BuildIndex(nodes)
	graph, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(idx, slots, topo)

	out := dag.Names(idx, topo.Order)
	return append(out, dag.Names(idx, topo.Cycles)...)
}

func (a *Annotator) annotateTemplate(ctx context.Context, name, defaultVersion string, ledger *Ledger, rep diag.Reporter, parent uint64) ([]Result, error) {
	t, err := a.src.Load(name)
	if err != nil {
		code, _, line := block.Classify(err)
		diag.ReportError(rep, code, name, line, err.Error()).Emit()
		return nil, err
	}

	blocks := block.Blocks(t)
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Lines.Start < blocks[j].Lines.Start
	})
	existing := make(map[string]block.Comment)
	for _, c := range block.Collect(t, defaultVersion) {
		existing[c.Block] = c
	}

	tracer := trace.FromContext(ctx)
	out := make([]Result, 0, len(blocks))
	for _, b := range blocks {
		r := a.annotateBlock(b, t.Module.ParentLine, existing, defaultVersion, ledger, rep)
		trace.Point(tracer, trace.Mark{Scope: trace.ScopeBlock, Template: name, Block: b.Name, Detail: resultDetail(r)}, parent)
		out = append(out, r)
	}
	return out, nil
}

func resultDetail(r Result) string {
	switch {
	case r.Skipped != "":
		return "skipped: " + r.Skipped
	case r.Created:
		return "created"
	case r.Updated:
		return "updated"
	}
	return "unchanged"
}

func (a *Annotator) annotateBlock(b block.Block, parentLine int, existing map[string]block.Comment, defaultVersion string, ledger *Ledger, rep diag.Reporter) Result {
	r := Result{Block: b}
	if b.ParentTemplate == "" {
		r.Skipped = SkipRoot
		return r
	}

	origin, ok, err := a.resolver.ResolveOrigin(b.Template, b.Name)
	switch {
	case err != nil:
		code, sev, _ := block.Classify(err)
		if cause, ok := block.AncestryCause(err); ok {
			diag.NewReportBuilder(rep, sev, code, b.Template, parentLine, cause.Error()).Emit()
		} else {
			diag.NewReportBuilder(rep, sev, code, b.Template, b.Lines.Start, err.Error()).Emit()
		}
		if errors.Is(err, loader.ErrTemplateNotFound) {
			r.Skipped = SkipNotFound
		} else {
			r.Skipped = SkipError
		}
		return r
	case !ok:
		r.Skipped = SkipNoOrigin
		return r
	}

	hash, err := a.extractor.Hash(origin)
	if err != nil {
		code, sev, line := block.Classify(err)
		diag.NewReportBuilder(rep, sev, code, b.Template, b.Lines.Start, err.Error()).
			WithNote(origin.Template, line, "origin block declared here").Emit()
		r.Skipped = SkipError
		return r
	}
	r.SourceHash = hash
	r.SourceVersion = defaultVersion

	prev, has := existing[b.Name]
	payload := annotation.Payload{Hash: hash, Version: defaultVersion}
	mode := insertLine
	switch {
	case has && prev.Parsed:
		mode = replacePayload
	case has:
		mode = replaceLine
	}
	created, updated, err := a.apply(b, mode, payload, ledger)
	if err != nil {
		a.reportApplyError(rep, b, err)
		r.Skipped = SkipError
		return r
	}
	r.Created, r.Updated = created, updated
	return r
}

type editMode int

const (
	insertLine     editMode = iota
	replacePayload          // only the payload of the adjacent annotation changes
	replaceLine             // the adjacent comment is overwritten as a whole
)

// apply edits the current file text for b according to mode. Only
// insertLine changes the line count.
func (a *Annotator) apply(b block.Block, mode editMode, payload annotation.Payload, ledger *Ledger) (created, updated bool, err error) {
	path, err := a.src.SourcePath(b.Template)
	if err != nil {
		return false, false, err
	}
	// #nosec G304 -- path comes from a registered template directory
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, false, &fsx.Error{Op: fsx.OpRead, Path: path, Err: err}
	}
	content, flags := source.Normalize(raw)
	text := string(content)
	lines := source.SplitLines(text)

	line := b.Lines.Start + ledger.Offset(path)
	if line < 1 || line > len(lines) || !a.markers.Start(b.Name).MatchString(lines[line-1]) {
		return false, false, &block.SyntaxError{Template: b.Template, Block: b.Name, Line: line, Marker: "start"}
	}

	comment := indentOf(lines[line-1]) + a.delim.WrapComment(payload.String())
	switch mode {
	case insertLine:
		lines = append(lines[:line-1], append([]string{comment}, lines[line-1:]...)...)
		created = true
	default:
		if line < 2 {
			return false, false, &block.SyntaxError{Template: b.Template, Block: b.Name, Line: line, Marker: "annotation"}
		}
		next := comment
		if mode == replacePayload {
			var ok bool
			if next, ok = annotation.Replace(lines[line-2], payload); !ok {
				return false, false, &block.SyntaxError{Template: b.Template, Block: b.Name, Line: line - 1, Marker: "annotation"}
			}
		}
		if next == lines[line-2] {
			return false, false, nil
		}
		lines[line-2] = next
		updated = true
	}

	if a.DryRun {
		return created, updated, nil
	}
	out := source.JoinLines(lines, flags.Has(source.FileTrailingNewline))
	if _, err := fsx.WriteFileLocked(path, source.Denormalize([]byte(out), flags), 0o644); err != nil {
		return false, false, err
	}
	if created {
		ledger.Add(path, 1)
	}
	a.src.Invalidate(b.Template)
	return created, updated, nil
}

func (a *Annotator) reportApplyError(rep diag.Reporter, b block.Block, err error) {
	var fe *fsx.Error
	if errors.As(err, &fe) {
		code := diag.IOWrite
		switch fe.Op {
		case fsx.OpMkdir:
			code = diag.IOMkdir
		case fsx.OpLock:
			code = diag.IOLock
		case fsx.OpRead:
			code = diag.IORead
		}
		diag.ReportError(rep, code, b.Template, b.Lines.Start, err.Error()).Emit()
		return
	}
	code, sev, line := block.Classify(err)
	if line == 0 {
		line = b.Lines.Start
	}
	diag.NewReportBuilder(rep, sev, code, b.Template, line, err.Error()).Emit()
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
