package validate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"twigblock/internal/annotation"
	"twigblock/internal/diag"
	"twigblock/internal/loader"
	"twigblock/internal/twig"
)

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
		if err := l.RegisterPath(ns, filepath.Join(root, ns)); err != nil {
			t.Fatal(err)
		}
	}
	return &fixture{root: root, l: l}
}

func (f *fixture) rewrite(t *testing.T, rel, content string, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.root, rel), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	f.l.Invalidate(name)
}

const baseTpl = "{% block content %}\n    base content\n{% endblock %}\n{% block side %}s{% endblock %}\n"

func themeTpl(payload string) string {
	return "{% sw_extends '@Core/base.twig' %}\n{# " + payload + " #}\n{% block content %}theme{% endblock %}\n"
}

func run(t *testing.T, f *fixture, version string) ([]Result, *diag.Bag) {
	t.Helper()
	v := New(f.l, twig.DefaultDelimiters())
	return v.Validate(context.Background(), []string{"@Theme/base.twig"}, version)
}

func TestValidateMatchAndHashSensitivity(t *testing.T) {
	hash := annotation.Hash("\n    base content\n")
	f := newFixture(t, map[string]string{
		"Core/base.twig":  baseTpl,
		"Theme/base.twig": themeTpl(annotation.Format(hash, "6.6.0.0")),
	})

	results, bag := run(t, f, "6.6.0.0")
	if len(results) != 1 {
		t.Fatalf("results %+v", results)
	}
	r := results[0]
	if !r.Valid || r.SourceHash != hash || r.Origin == nil || r.Origin.Template != "@Core/base.twig" {
		t.Fatalf("result %+v diags %v", r, bag.Items())
	}
	if bag.HasErrors() {
		t.Fatalf("diags %v", bag.Items())
	}

	// a one-character change in the origin flips the result
	f.rewrite(t, "Core/base.twig", "{% block content %}\n    base content!\n{% endblock %}\n", "@Core/base.twig")
	results, _ = run(t, f, "6.6.0.0")
	if results[0].Valid || results[0].Match.Hash || !results[0].Match.Version {
		t.Fatalf("after edit %+v", results[0])
	}
}

func TestValidateVersionMismatch(t *testing.T) {
	hash := annotation.Hash("\n    base content\n")
	f := newFixture(t, map[string]string{
		"Core/base.twig":  baseTpl,
		"Theme/base.twig": themeTpl(annotation.Format(hash, "6.5.8.0")),
	})
	results, _ := run(t, f, "6.6.0.0")
	r := results[0]
	if r.Valid || !r.Match.Hash || r.Match.Version {
		t.Fatalf("result %+v", r)
	}
	// no default version disables the check
	results, _ = run(t, f, "")
	if !results[0].Valid {
		t.Fatalf("without version %+v", results[0])
	}
}

func TestValidateUnparseable(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Core/base.twig":  baseTpl,
		"Theme/base.twig": themeTpl("twig-block:ZZZ"),
	})
	results, bag := run(t, f, "6.6.0.0")
	r := results[0]
	if r.Valid || r.Comment.Parsed || r.SourceHash == annotation.UnknownHash {
		t.Fatalf("result %+v", r)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.AnnUnparseable {
		t.Fatalf("diags %v", bag.Items())
	}
}

func TestValidateNoOriginAndMissingParent(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Core/base.twig":    baseTpl,
		"Theme/base.twig":   "{% sw_extends '@Core/base.twig' %}\n{# twig-block:abc #}\n{% block brand_new %}{% endblock %}\n",
		"Theme/orphan.twig": "{% sw_extends '@Core/gone.twig' %}\n{# twig-block:abc #}\n{% block content %}{% endblock %}\n",
	})
	v := New(f.l, twig.DefaultDelimiters())
	results, bag := v.Validate(context.Background(), []string{"@Theme/orphan.twig", "@Theme/base.twig"}, "")
	if len(results) != 2 {
		t.Fatalf("results %+v", results)
	}
	for _, r := range results {
		if r.Valid || r.SourceHash != annotation.UnknownHash {
			t.Errorf("result %+v", r)
		}
	}
	codes := map[diag.Code]bool{}
	for _, d := range bag.Items() {
		codes[d.Code] = true
	}
	if !codes[diag.ResNoOrigin] || !codes[diag.LoadTemplateNotFound] {
		t.Fatalf("diags %v", bag.Items())
	}
	if bag.HasErrors() {
		t.Fatalf("soft failures reported as errors: %v", bag.Items())
	}
}

func TestValidateCycleAndMissingTarget(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Core/base.twig":  "{% extends '@Theme/base.twig' %}{% block content %}{% endblock %}",
		"Theme/base.twig": themeTpl("twig-block:abc"),
	})
	v := New(f.l, twig.DefaultDelimiters())
	var seen []string
	v.OnTemplate = func(name string, err error, _ time.Duration) {
		seen = append(seen, name)
	}
	results, bag := v.Validate(context.Background(), []string{"@Theme/none.twig", "@Theme/base.twig"}, "")
	if len(seen) != 2 || seen[0] != "@Theme/base.twig" {
		t.Fatalf("hook order %v", seen)
	}
	if len(results) != 1 || results[0].Valid {
		t.Fatalf("results %+v", results)
	}
	var cycle, missing bool
	for _, d := range bag.Items() {
		switch d.Code {
		case diag.ResCycle:
			cycle = true
		case diag.LoadTemplateNotFound:
			missing = d.Severity == diag.SevError
		}
	}
	if !cycle || !missing {
		t.Fatalf("diags %v", bag.Items())
	}
}

func TestValidateCancelled(t *testing.T) {
	f := newFixture(t, map[string]string{"Core/base.twig": baseTpl, "Theme/base.twig": themeTpl("twig-block:abc")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, _ := New(f.l, twig.DefaultDelimiters()).Validate(ctx, []string{"@Theme/base.twig"}, "")
	if len(results) != 0 {
		t.Fatalf("results %+v", results)
	}
}
