package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"twigblock/internal/pipeline"
)

func feed(m *progressModel, events ...pipeline.Event) {
	for _, ev := range events {
		m.Update(eventMsg(ev))
	}
}

func TestQueuedEventsAddTemplates(t *testing.T) {
	m := NewProgressModel("validate", nil, make(chan pipeline.Event)).(*progressModel)
	feed(m,
		pipeline.Event{File: "@Theme/a.twig", Stage: pipeline.StageLoad, Status: pipeline.StatusQueued},
		pipeline.Event{File: "@Theme/b.twig", Stage: pipeline.StageLoad, Status: pipeline.StatusQueued},
		pipeline.Event{Stage: pipeline.StageValidate, Status: pipeline.StatusWorking},
		pipeline.Event{File: "@Theme/a.twig", Stage: pipeline.StageValidate, Status: pipeline.StatusDone},
		pipeline.Event{File: "@Theme/b.twig", Stage: pipeline.StageValidate, Status: pipeline.StatusError, Err: errors.New("boom")},
	)
	if len(m.items) != 2 || m.items[0].status != "done" || m.items[1].status != "error" {
		t.Fatalf("items %+v", m.items)
	}
	if m.failed != 1 || m.stageLabel != "validating" {
		t.Fatalf("failed %d label %q", m.failed, m.stageLabel)
	}
	view := m.View()
	if !strings.Contains(view, "validate (validating)") || !strings.Contains(view, "@Theme/b.twig") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestVisibleCapsRows(t *testing.T) {
	files := make([]string, 0, MaxRows+5)
	for i := range MaxRows + 5 {
		files = append(files, fmt.Sprintf("t%02d.twig", i))
	}
	m := NewProgressModel("annotate", files, make(chan pipeline.Event)).(*progressModel)
	for _, f := range files[:MaxRows] {
		feed(m, pipeline.Event{File: f, Stage: pipeline.StageAnnotate, Status: pipeline.StatusDone})
	}
	feed(m, pipeline.Event{File: files[len(files)-1], Stage: pipeline.StageAnnotate, Status: pipeline.StatusError})

	rows := m.visible()
	if len(rows) != MaxRows || rows[0].name != files[len(files)-1] || rows[1].status != "queued" {
		t.Fatalf("rows %+v", rows)
	}
	if !strings.Contains(m.View(), "5 more") {
		t.Fatal("hidden rows not summarized")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("шаблон-основа", 9); got != "шаблон..." || runewidth.StringWidth(got) != 9 {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}
