package pipeline

import (
	"context"
	"time"

	"twigblock/internal/diag"
	"twigblock/internal/trace"
	"twigblock/internal/validate"
)

// ValidateResult is the outcome of a validate run.
type ValidateResult struct {
	Targets []string
	Results []validate.Result
	Bag     *diag.Bag
}

// Invalid counts comments that failed validation.
func (r *ValidateResult) Invalid() int {
	if r == nil {
		return 0
	}
	return len(validate.Invalid(r.Results))
}

// Validate prepares req and checks every annotation in its targets.
func Validate(ctx context.Context, req *Request) (*ValidateResult, error) {
	s, err := Prepare(ctx, req)
	res := &ValidateResult{}
	if s != nil {
		res.Targets, res.Bag = s.Targets, s.Bag
	}
	if err != nil {
		return res, err
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "validate-run", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	phase := beginPhase(req.Timer, "validate")
	start := time.Now()
	emitStage(req.Progress, nil, StageValidate, StatusWorking, nil, 0)

	v := validate.New(s.Loader, s.Loader.Delimiters())
	v.MaxDiagnostics = req.MaxDiagnostics
	v.OnTemplate = templateHook(req.Progress, StageValidate)
	results, bag := v.Validate(ctx, s.Targets, req.Version)
	res.Results = results
	res.Bag.Merge(bag)

	elapsed := time.Since(start)
	endPhase(req.Timer, phase, "")
	emitStage(req.Progress, nil, StageValidate, StatusDone, nil, elapsed)
	return res, nil
}
