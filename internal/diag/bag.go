package diag

import (
	"math"
	"slices"
	"strings"
)

// Bag collects diagnostics of one run up to a limit (--max-diagnostics).
// Diagnostics past the limit are counted but not kept.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag returns a bag holding at most max diagnostics. max <= 0 means unbounded.
func NewBag(max int) *Bag {
	if max <= 0 {
		max = math.MaxInt
	}
	return &Bag{items: make([]Diagnostic, 0, min(max, 16)), max: max}
}

// Add stores d, or counts it as dropped once the limit is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped returns how many diagnostics did not fit.
func (b *Bag) Dropped() int {
	if b == nil {
		return 0
	}
	return b.dropped
}

// HasErrors reports whether a kept diagnostic is an error.
func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает внутренний срез, не модифицировать.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends the diagnostics of other. The limit grows to fit them:
// other was already bounded when it was filled.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.max = max(b.max, len(b.items)+len(other.items))
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort orders diagnostics by template, line, severity (desc) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		if c := strings.Compare(x.Template, y.Template); c != 0 {
			return c
		}
		if x.Line != y.Line {
			return x.Line - y.Line
		}
		if x.Severity != y.Severity {
			return int(y.Severity) - int(x.Severity)
		}
		return int(x.Code) - int(y.Code)
	})
}

// Count returns the number of kept diagnostics with the given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}
