package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

// marker is the one-character tag used by the text format.
func (k Kind) marker() byte {
	switch k {
	case KindSpanBegin:
		return '+'
	case KindSpanEnd:
		return '-'
	default:
		return '.'
	}
}

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Coarser scopes have lower values,
// so a level admits every scope up to its limit.
type Scope uint8

const (
	// ScopeRun is a whole CLI invocation.
	ScopeRun Scope = iota + 1
	// ScopePhase is one phase of a run (prepare, preload, validate, annotate).
	ScopePhase
	// ScopeTemplate is the processing of a single template.
	ScopeTemplate
	// ScopeBlock is the resolution or rewrite of a single block.
	ScopeBlock
)

var scopeNames = [...]string{
	ScopeRun:      "run",
	ScopePhase:    "phase",
	ScopeTemplate: "template",
	ScopeBlock:    "block",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one recorded trace entry. Template and Block name the subject
// of template- and block-scope events; Dur is set on span ends only.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string
	Template string
	Block    string
	Detail   string
	Dur      time.Duration
	Extra    map[string]string
}

// Subject is the most specific thing the event is about:
// "template#block", the template, or the event name.
func (ev *Event) Subject() string {
	switch {
	case ev.Template != "" && ev.Block != "":
		return ev.Template + "#" + ev.Block
	case ev.Template != "":
		return ev.Template
	case ev.Block != "":
		return "#" + ev.Block
	default:
		return ev.Name
	}
}
