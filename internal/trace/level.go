package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // run and phase spans, shown only when the run fails
	LevelPhase        // run and phase spans
	LevelDetail       // plus one span per template
	LevelDebug        // plus one event per block
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level. The empty string is off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// maxScope is the finest scope recorded at l.
func (l Level) maxScope() Scope {
	switch l {
	case LevelError, LevelPhase:
		return ScopePhase
	case LevelDetail:
		return ScopeTemplate
	case LevelDebug:
		return ScopeBlock
	}
	return 0
}

// ShouldEmit reports whether events of scope are recorded at l.
func (l Level) ShouldEmit(scope Scope) bool {
	return scope != 0 && scope <= l.maxScope()
}

// DumpOnExit reports whether a ring recorded at l is printed for a run
// that ended with failed.
func (l Level) DumpOnExit(failed bool) bool {
	return l != LevelError || failed
}
