package annotate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"twigblock/internal/annotation"
	"twigblock/internal/diag"
	"twigblock/internal/loader"
	"twigblock/internal/twig"
)

const baseTpl = `{% block page %}
    {% block header %}H{% endblock %}
    {% block body %}
        B
    {% endblock %}
    {% block footer %}F{% endblock %}
{% endblock %}
`

const themeTpl = `{% sw_extends '@Core/base.twig' %}
{% block page %}
    {% block header %}mine{% endblock %}
    {% block body %}
        mine
    {% endblock %}
    {% block footer %}mine{% endblock %}
    {% block extra %}new{% endblock %}
{% endblock %}
`

type fixture struct {
	root string
	l    *loader.Loader
}

func newFixture(t *testing.T, files map[string]string) *fixture {
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
	l, err := loader.New(loader.Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, ns := range []string{"Core", "Theme"} {
		dir := filepath.Join(root, ns)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := l.RegisterPath(ns, dir); err != nil {
			t.Fatal(err)
		}
	}
	return &fixture{root: root, l: l}
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.root, rel))
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func annotate(t *testing.T, f *fixture, targets ...string) ([]Result, *diag.Bag) {
	t.Helper()
	a := New(f.l, twig.DefaultDelimiters())
	return a.Annotate(context.Background(), targets, "6.6.0.0")
}

func byName(results []Result) map[string]Result {
	out := make(map[string]Result, len(results))
	for _, r := range results {
		out[r.Block.Name] = r
	}
	return out
}

func TestAnnotateInsertsWithOffsets(t *testing.T) {
	f := newFixture(t, map[string]string{"Core/base.twig": baseTpl, "Theme/base.twig": themeTpl})
	results, bag := annotate(t, f, "@Theme/base.twig")
	if bag.HasErrors() {
		t.Fatalf("diags %v", bag.Items())
	}
	got := byName(results)
	for _, name := range []string{"page", "header", "body", "footer"} {
		if !got[name].Created || got[name].SourceHash == "" {
			t.Errorf("%s: %+v", name, got[name])
		}
	}
	if got["extra"].Skipped != SkipNoOrigin {
		t.Errorf("extra: %+v", got["extra"])
	}

	text := f.read(t, "Theme/base.twig")
	lines := strings.Split(text, "\n")
	want := map[int]string{
		1:  "{# " + annotation.Format(got["page"].SourceHash, "6.6.0.0") + " #}",
		3:  "    {# " + annotation.Format(got["header"].SourceHash, "6.6.0.0") + " #}",
		5:  "    {# " + annotation.Format(got["body"].SourceHash, "6.6.0.0") + " #}",
		9:  "    {# " + annotation.Format(got["footer"].SourceHash, "6.6.0.0") + " #}",
		10: "    {% block footer %}mine{% endblock %}",
		11: "    {% block extra %}new{% endblock %}",
	}
	for idx, line := range want {
		if lines[idx] != line {
			t.Errorf("line %d = %q, want %q\n%s", idx+1, lines[idx], line, text)
		}
	}
	if got["header"].SourceHash != annotation.Hash("H") || got["footer"].SourceHash != annotation.Hash("F") {
		t.Errorf("hashes do not match origin content")
	}
}

func TestAnnotateIdempotent(t *testing.T) {
	f := newFixture(t, map[string]string{"Core/base.twig": baseTpl, "Theme/base.twig": themeTpl})
	annotate(t, f, "@Theme/base.twig")
	first := f.read(t, "Theme/base.twig")

	results, bag := annotate(t, f, "@Theme/base.twig")
	if bag.HasErrors() {
		t.Fatalf("diags %v", bag.Items())
	}
	for _, r := range results {
		if r.Changed() {
			t.Errorf("second run changed %s: %+v", r.Block.Name, r)
		}
	}
	if second := f.read(t, "Theme/base.twig"); second != first {
		t.Fatalf("file changed on second run:\n%s\n---\n%s", first, second)
	}
}

func TestAnnotateUpdatesStalePayload(t *testing.T) {
	theme := "{% sw_extends '@Core/base.twig' %}\n  {# keep twig-block:abc@6.5.0.0 me #}\n  {% block header %}x{% endblock %}\n"
	f := newFixture(t, map[string]string{"Core/base.twig": baseTpl, "Theme/base.twig": theme})
	results, _ := annotate(t, f, "@Theme/base.twig")
	r := byName(results)["header"]
	if r.Created || !r.Updated {
		t.Fatalf("result %+v", r)
	}
	want := "  {# keep " + annotation.Format(annotation.Hash("H"), "6.6.0.0") + " me #}"
	if line := strings.Split(f.read(t, "Theme/base.twig"), "\n")[1]; line != want {
		t.Fatalf("line %q", line)
	}
}

func TestAnnotateOverwritesUnparseableComment(t *testing.T) {
	theme := "{% sw_extends '@Core/base.twig' %}\n  {# twig-block:??? #}\n  {% block header %}x{% endblock %}\n{# note #}\n{% block footer %}y{% endblock %}\n"
	f := newFixture(t, map[string]string{"Core/base.twig": baseTpl, "Theme/base.twig": theme})
	results, bag := annotate(t, f, "@Theme/base.twig")
	if bag.HasErrors() {
		t.Fatalf("diags %v", bag.Items())
	}
	got := byName(results)
	for _, name := range []string{"header", "footer"} {
		if r := got[name]; r.Created || !r.Updated {
			t.Fatalf("%s: %+v", name, r)
		}
	}
	want := "{% sw_extends '@Core/base.twig' %}\n" +
		"  {# " + annotation.Format(annotation.Hash("H"), "6.6.0.0") + " #}\n" +
		"  {% block header %}x{% endblock %}\n" +
		"{# " + annotation.Format(annotation.Hash("F"), "6.6.0.0") + " #}\n" +
		"{% block footer %}y{% endblock %}\n"
	if out := f.read(t, "Theme/base.twig"); out != want {
		t.Fatalf("file:\n%s", out)
	}
}

func TestAnnotateDryRunAndRoot(t *testing.T) {
	f := newFixture(t, map[string]string{"Core/base.twig": baseTpl, "Theme/base.twig": themeTpl})
	a := New(f.l, twig.DefaultDelimiters())
	a.DryRun = true
	results, _ := a.Annotate(context.Background(), []string{"@Theme/base.twig", "@Core/base.twig"}, "6.6.0.0")
	if f.read(t, "Theme/base.twig") != themeTpl || f.read(t, "Core/base.twig") != baseTpl {
		t.Fatal("dry run wrote files")
	}
	var roots, created int
	for _, r := range results {
		if r.Skipped == SkipRoot {
			roots++
		}
		if r.Created {
			created++
		}
	}
	if roots != 4 || created != 4 {
		t.Fatalf("roots=%d created=%d", roots, created)
	}
}

func TestAnnotatePreservesCRLFAndBOM(t *testing.T) {
	theme := "\ufeff{% sw_extends '@Core/base.twig' %}\r\n{% block footer %}x{% endblock %}\r\n"
	f := newFixture(t, map[string]string{"Core/base.twig": baseTpl, "Theme/base.twig": theme})
	_, bag := annotate(t, f, "@Theme/base.twig")
	if bag.HasErrors() {
		t.Fatalf("diags %v", bag.Items())
	}
	text := f.read(t, "Theme/base.twig")
	if !strings.HasPrefix(text, "\ufeff") || strings.Count(text, "\r\n") != 3 || strings.Count(text, "\n") != 3 {
		t.Fatalf("line endings lost: %q", text)
	}
}

func TestAnnotateParentsFirst(t *testing.T) {
	mid := "{% sw_extends '@Core/base.twig' %}\n{% block body %}\n    mid\n{% endblock %}\n"
	leaf := "{% sw_extends '@Theme/mid.twig' %}\n{% block body %}leaf{% endblock %}\n"
	f := newFixture(t, map[string]string{"Core/base.twig": baseTpl, "Theme/mid.twig": mid, "Theme/leaf.twig": leaf})
	results, bag := annotate(t, f, "@Theme/leaf.twig", "@Theme/mid.twig")
	if bag.HasErrors() {
		t.Fatalf("diags %v", bag.Items())
	}
	if len(results) != 2 || results[0].Block.Template != "@Theme/mid.twig" {
		t.Fatalf("order %+v", results)
	}
	if results[0].SourceHash != results[1].SourceHash {
		t.Fatalf("both blocks share the Core origin: %+v", results)
	}
}

func TestAnnotateDriftIsReported(t *testing.T) {
	f := newFixture(t, map[string]string{"Core/base.twig": baseTpl, "Theme/base.twig": themeTpl})
	if _, err := f.l.Load("@Theme/base.twig"); err != nil {
		t.Fatal(err)
	}
	// file edited behind the loader's back
	if err := os.WriteFile(filepath.Join(f.root, "Theme/base.twig"), []byte("\n\n\n"+themeTpl), 0o644); err != nil {
		t.Fatal(err)
	}
	results, bag := annotate(t, f, "@Theme/base.twig")
	if !bag.HasErrors() {
		t.Fatal("expected drift errors")
	}
	for _, r := range results {
		if r.Block.Name == "page" && r.Skipped != SkipError {
			t.Fatalf("page %+v", r)
		}
	}
	for _, d := range bag.Items() {
		if d.Code != diag.SynMarkerNotFound {
			t.Fatalf("unexpected diag %v", d)
		}
	}
}

func TestLedger(t *testing.T) {
	l := NewLedger()
	l.Add("a", 1)
	l.Add("a", 2)
	if l.Offset("a") != 3 || l.Offset("b") != 0 {
		t.Fatalf("offsets %d %d", l.Offset("a"), l.Offset("b"))
	}
}

func TestAnnotateMissingParentReportedOnce(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Theme/orphan.twig": "{% sw_extends '@Core/gone.twig' %}\n{% block a %}{% endblock %}\n{% block b %}{% endblock %}\n",
	})
	results, bag := annotate(t, f, "@Theme/orphan.twig")
	if len(results) != 2 || results[0].Skipped != SkipNotFound || results[1].Skipped != SkipNotFound {
		t.Fatalf("results %+v", results)
	}
	if bag.Len() != 1 {
		t.Fatalf("diags %v", bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.LoadTemplateNotFound || d.Line != 1 {
		t.Fatalf("diag %+v", d)
	}
}
