package pipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageLoad covers path registration, enumeration and parsing.
	StageLoad Stage = "load"
	// StageValidate checks existing annotations.
	StageValidate Stage = "validate"
	// StageAnnotate writes annotations.
	StageAnnotate Stage = "annotate"
	// StageInspect lists annotations without checking them.
	StageInspect Stage = "inspect"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the template is waiting to be processed.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the template is done.
	StatusDone Status = "done"
	// StatusError indicates the template could not be processed.
	StatusError Status = "error"
)

// Event reports progress for a template (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	if len(files) == 0 {
		sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
		return
	}
	for _, f := range files {
		sink.OnEvent(Event{File: f, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
