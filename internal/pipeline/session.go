// Package pipeline wires the loader, validator and annotator into the
// batch operations exposed by the CLI.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"twigblock/internal/diag"
	"twigblock/internal/loader"
	"twigblock/internal/observ"
	"twigblock/internal/project"
	"twigblock/internal/trace"
)

// ErrNoTargets is returned when no target directory could be read.
var ErrNoTargets = errors.New("no target templates")

// Request configures one batch run.
type Request struct {
	Context project.PathMap
	Targets project.PathMap
	// Version is the default framework version; "" disables version checks.
	Version        string
	Jobs           int
	MaxDiagnostics int
	DryRun         bool
	Loader         *loader.Loader
	Progress       ProgressSink
	Timer          *observ.Timer
}

// Session is a prepared request: paths registered, targets enumerated and
// preloaded.
type Session struct {
	Loader  *loader.Loader
	Targets []string
	Bag     *diag.Bag
}

// Prepare registers every path, enumerates the target templates and warms
// the loader cache. Missing directories are reported and skipped.
func Prepare(ctx context.Context, req *Request) (*Session, error) {
	if req == nil {
		return nil, fmt.Errorf("missing request")
	}
	l := req.Loader
	if l == nil {
		var err error
		if l, err = loader.New(loader.Options{}); err != nil {
			return nil, err
		}
	}
	s := &Session{Loader: l, Bag: diag.NewBag(req.MaxDiagnostics)}
	rep := diag.BagReporter{Bag: s.Bag}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "prepare", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	phase := beginPhase(req.Timer, "load")
	start := time.Now()
	emitStage(req.Progress, nil, StageLoad, StatusWorking, nil, 0)

	all := req.Context.Merge(req.Targets)
	for _, ns := range all.Namespaces() {
		for _, dir := range all[ns] {
			if err := l.RegisterPath(ns, dir); err != nil {
				diag.ReportWarning(rep, diag.LoadPathNotFound, "", 0, fmt.Sprintf("skipping %s: %v", dir, err)).Emit()
			}
		}
	}

	seen := make(map[string]struct{})
	readable := 0
	for _, ns := range req.Targets.Namespaces() {
		for _, dir := range req.Targets[ns] {
			refs, err := l.LoadFiles(ns, dir, loader.DefaultExt)
			if err != nil {
				continue
			}
			readable++
			for _, ref := range refs {
				if _, dup := seen[ref.Name]; dup {
					continue
				}
				seen[ref.Name] = struct{}{}
				s.Targets = append(s.Targets, ref.Name)
			}
		}
	}
	sort.Strings(s.Targets)
	if readable == 0 {
		endPhase(req.Timer, phase, "no targets")
		emitStage(req.Progress, nil, StageLoad, StatusError, ErrNoTargets, time.Since(start))
		return s, ErrNoTargets
	}
	emitStage(req.Progress, s.Targets, StageLoad, StatusQueued, nil, 0)

	if _, err := l.Preload(ctx, s.Targets, req.Jobs); err != nil {
		endPhase(req.Timer, phase, "cancelled")
		return s, err
	}
	elapsed := time.Since(start)
	endPhase(req.Timer, phase, fmt.Sprintf("%d templates", len(s.Targets)))
	emitStage(req.Progress, nil, StageLoad, StatusDone, nil, elapsed)
	return s, nil
}

// templateHook turns per-template callbacks into progress events.
func templateHook(sink ProgressSink, stage Stage) func(string, error, time.Duration) {
	return func(name string, err error, elapsed time.Duration) {
		status := StatusDone
		if err != nil {
			status = StatusError
		}
		emit(sink, Event{File: name, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}

func beginPhase(t *observ.Timer, name string) int {
	if t == nil {
		return -1
	}
	return t.Begin(name)
}

func endPhase(t *observ.Timer, idx int, note string) {
	if t == nil {
		return
	}
	t.End(idx, note)
}
