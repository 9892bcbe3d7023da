package loader

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"twigblock/internal/trace"
)

// PreloadResult pairs a template name with its load outcome.
type PreloadResult struct {
	Name     string
	Template *Template
	Err      error
}

// Preload loads names in parallel and warms the cache. Results keep the
// order of names; per-template failures are reported in Err.
func (l *Loader) Preload(ctx context.Context, names []string, jobs int) ([]PreloadResult, error) {
	results := make([]PreloadResult, len(names))
	if len(names) == 0 {
		return results, nil
	}
	// Настраиваем параллелизм
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "preload", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(names)))
	for i, name := range names {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			t, err := l.Load(name)
			// индекс i уникален, мьютекс не нужен
			results[i] = PreloadResult{Name: name, Template: t, Err: err}
			if err != nil {
				trace.Point(tracer, trace.Mark{Scope: trace.ScopeTemplate, Name: "preload-error", Template: name, Detail: err.Error()}, span.ID())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
