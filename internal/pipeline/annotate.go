package pipeline

import (
	"context"
	"time"

	"twigblock/internal/annotate"
	"twigblock/internal/diag"
	"twigblock/internal/trace"
)

// AnnotateResult is the outcome of an annotate run.
type AnnotateResult struct {
	Targets []string
	Results []annotate.Result
	Bag     *diag.Bag
	DryRun  bool
}

// Counts summarizes the results.
func (r *AnnotateResult) Counts() (created, updated, unchanged, skipped int) {
	if r == nil {
		return
	}
	for _, res := range r.Results {
		switch {
		case res.Skipped != "":
			skipped++
		case res.Created:
			created++
		case res.Updated:
			updated++
		default:
			unchanged++
		}
	}
	return
}

// Annotate prepares req and writes annotations into its targets.
func Annotate(ctx context.Context, req *Request) (*AnnotateResult, error) {
	s, err := Prepare(ctx, req)
	res := &AnnotateResult{DryRun: req != nil && req.DryRun}
	if s != nil {
		res.Targets, res.Bag = s.Targets, s.Bag
	}
	if err != nil {
		return res, err
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "annotate-run", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	phase := beginPhase(req.Timer, "annotate")
	start := time.Now()
	emitStage(req.Progress, nil, StageAnnotate, StatusWorking, nil, 0)

	a := annotate.New(s.Loader, s.Loader.Delimiters())
	a.DryRun = req.DryRun
	a.MaxDiagnostics = req.MaxDiagnostics
	a.OnTemplate = templateHook(req.Progress, StageAnnotate)
	results, bag := a.Annotate(ctx, s.Targets, req.Version)
	res.Results = results
	res.Bag.Merge(bag)

	elapsed := time.Since(start)
	endPhase(req.Timer, phase, "")
	emitStage(req.Progress, nil, StageAnnotate, StatusDone, nil, elapsed)
	return res, nil
}
