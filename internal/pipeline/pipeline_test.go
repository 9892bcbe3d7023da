package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"twigblock/internal/annotation"
	"twigblock/internal/project"
)

const coreBase = "{% block content %}\n    base content\n{% endblock %}\n{% block side %}s{% endblock %}\n"

const themeBase = "{% sw_extends '@Core/base.twig' %}\n{% block content %}theme{% endblock %}\n"

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func request(root, version string) *Request {
	ctx := project.PathMap{}
	ctx.Add("Core", filepath.Join(root, "Core"))
	targets := project.PathMap{}
	targets.Add("Theme", filepath.Join(root, "Theme"))
	return &Request{Context: ctx, Targets: targets, Version: version, Jobs: 2}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(stage Stage, status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Stage == stage && ev.Status == status && ev.File != "" {
			n++
		}
	}
	return n
}

func TestAnnotateValidateRoundTrip(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Core/base.twig":  coreBase,
		"Theme/base.twig": themeBase,
	})
	ctx := context.Background()

	rec := &recorder{}
	req := request(root, "6.6.0.0")
	req.Progress = rec
	ann, err := Annotate(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	created, updated, _, _ := ann.Counts()
	if created != 1 || updated != 0 {
		t.Fatalf("created %d updated %d results %+v", created, updated, ann.Results)
	}
	if rec.count(StageLoad, StatusQueued) != 1 || rec.count(StageAnnotate, StatusDone) != 1 {
		t.Fatalf("events %+v", rec.events)
	}

	hash := annotation.Hash("\n    base content\n")
	got, err := os.ReadFile(filepath.Join(root, "Theme/base.twig"))
	if err != nil {
		t.Fatal(err)
	}
	want := "{% sw_extends '@Core/base.twig' %}\n{# " + annotation.Format(hash, "6.6.0.0") + " #}\n{% block content %}theme{% endblock %}\n"
	if string(got) != want {
		t.Fatalf("annotated file:\n%s\nwant:\n%s", got, want)
	}

	val, err := Validate(ctx, request(root, "6.6.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if len(val.Results) != 1 || val.Invalid() != 0 {
		t.Fatalf("validate %+v", val.Results)
	}

	// upstream change invalidates the copy
	edited := "{% block content %}\n    new base content\n{% endblock %}\n{% block side %}s{% endblock %}\n"
	if err := os.WriteFile(filepath.Join(root, "Core/base.twig"), []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	val, err = Validate(ctx, request(root, "6.6.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if val.Invalid() != 1 || val.Results[0].Match.Hash {
		t.Fatalf("expected hash mismatch, got %+v", val.Results)
	}

	ann, err = Annotate(ctx, request(root, "6.6.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if _, updated, _, _ = ann.Counts(); updated != 1 {
		t.Fatalf("re-annotate %+v", ann.Results)
	}
	val, err = Validate(ctx, request(root, "6.6.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if val.Invalid() != 0 {
		t.Fatalf("after re-annotate %+v", val.Results)
	}
}

func TestAnnotateDryRunLeavesFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Core/base.twig":  coreBase,
		"Theme/base.twig": themeBase,
	})
	req := request(root, "")
	req.DryRun = true
	res, err := Annotate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if created, _, _, _ := res.Counts(); created != 1 || !res.DryRun {
		t.Fatalf("dry run %+v", res.Results)
	}
	got, _ := os.ReadFile(filepath.Join(root, "Theme/base.twig"))
	if string(got) != themeBase {
		t.Fatalf("dry run wrote %q", got)
	}
}

func TestInspectReportsDetached(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Core/base.twig": coreBase,
		"Theme/base.twig": "{% sw_extends '@Core/base.twig' %}\n{# twig-block:abc #}\n\n" +
			"{# twig-block:def@6.5.0.0 #}\n{% block content %}theme{% endblock %}\n",
	})
	res, err := Inspect(context.Background(), request(root, ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Comments) != 2 {
		t.Fatalf("comments %+v", res.Comments)
	}
	attached := 0
	for _, c := range res.Comments {
		if c.Attached {
			attached++
			if c.Block != "content" || c.Hash != "def" || c.Version != "6.5.0.0" {
				t.Fatalf("attached comment %+v", c)
			}
		}
	}
	if attached != 1 || res.Bag.Len() != 1 {
		t.Fatalf("attached %d diags %v", attached, res.Bag.Items())
	}
}

func TestBlocksWithFilter(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Core/base.twig":  coreBase,
		"Theme/base.twig": themeBase + "{% block footer %}f{% endblock %}\n",
	})
	rows, _, err := Blocks(context.Background(), request(root, ""), "@Theme/base.twig", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows %+v", rows)
	}
	if rows[0].Origin == nil || rows[0].Origin.Template != "@Core/base.twig" || rows[0].Hash == "" {
		t.Fatalf("content row %+v", rows[0])
	}
	if rows[1].Origin != nil {
		t.Fatalf("footer has no origin: %+v", rows[1])
	}

	rows, _, err = Blocks(context.Background(), request(root, ""), "@Theme/base.twig", "ftr")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Block.Name != "footer" {
		t.Fatalf("filtered %+v", rows)
	}
}

func TestGraphLevelsAndCycles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Core/base.twig":  coreBase,
		"Theme/base.twig": "{% sw_extends '@Theme/page.twig' %}\n",
		"Theme/page.twig": "{% extends '@Theme/base.twig' %}\n",
		"Theme/root.twig": "{% block a %}{% endblock %}\n",
		"Theme/leaf.twig": "{% extends '@Theme/root.twig' %}\n",
	})
	res, err := Graph(context.Background(), request(root, ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Levels) != 2 || res.Levels[0][0] != "@Theme/root.twig" || res.Levels[1][0] != "@Theme/leaf.twig" {
		t.Fatalf("levels %v", res.Levels)
	}
	if len(res.Cycles) != 2 {
		t.Fatalf("cycles %v", res.Cycles)
	}
	if !res.Bag.HasErrors() {
		t.Fatal("cycle must be reported")
	}
}

func TestNoTargets(t *testing.T) {
	req := request(t.TempDir(), "")
	res, err := Validate(context.Background(), req)
	if !errors.Is(err, ErrNoTargets) {
		t.Fatalf("err = %v", err)
	}
	if res.Bag.Len() == 0 {
		t.Fatal("missing directories must be reported")
	}
}
