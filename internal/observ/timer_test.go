package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(10 * time.Millisecond)

	load := tm.Begin("load")
	tm.End(load, "3 templates")
	run := tm.Begin("validate")
	tm.End(run, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].DurationMS != 10 || r.TotalMS != 20 {
		t.Fatalf("report %+v", r)
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "// 3 templates") || !strings.Contains(sum, "total") {
		t.Fatalf("summary:\n%s", sum)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("report %+v", r)
	}
}
