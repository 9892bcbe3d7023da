package block

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"twigblock/internal/annotation"
	"twigblock/internal/loader"
	"twigblock/internal/source"
	"twigblock/internal/twig"
)

// memSource serves templates parsed from in-memory text.
type memSource struct {
	fs    *source.FileSet
	texts map[string]string
	loads int
}

func newMemSource(texts map[string]string) *memSource {
	return &memSource{fs: source.NewFileSet(), texts: texts}
}

func (m *memSource) Load(name string) (*loader.Template, error) {
	m.loads++
	text, ok := m.texts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", loader.ErrTemplateNotFound, name)
	}
	id := m.fs.AddVirtual(name, []byte(text))
	f := m.fs.Get(id)
	mod, err := twig.Parse(name, string(f.Content), twig.DefaultDelimiters())
	if err != nil {
		return nil, err
	}
	return &loader.Template{Name: name, Path: name, File: f, Module: mod}, nil
}

const (
	baseTpl = `{% block page %}
    <main>
    {% block content %}base content{% endblock %}
    </main>
{% endblock %}
{% block footer %}f{% endblock %}
`
	midTpl = `{% sw_extends '@Core/base.twig' %}
{% block footer %}mid{% endblock %}
`
	themeTpl = `{% sw_extends '@Mid/base.twig' %}
{# twig-block:abc@6.6.0.0 #}
{% block content %}theme{% endblock %}
{# twig-block: #}
{% block footer %}
  themed
{% endblock %}
{# twig-block:def #}

{% block page %}{% endblock %}
`
)

func fixture() *memSource {
	return newMemSource(map[string]string{
		"@Core/base.twig":  baseTpl,
		"@Mid/base.twig":   midTpl,
		"@Theme/base.twig": themeTpl,
	})
}

func TestResolveOriginSkipsGaps(t *testing.T) {
	r := NewResolver(fixture())
	origin, ok, err := r.ResolveOrigin("@Theme/base.twig", "content")
	if err != nil || !ok {
		t.Fatalf("ResolveOrigin: %v %v", ok, err)
	}
	if origin.Template != "@Core/base.twig" || origin.Lines != (LineRange{3, 3}) || origin.Level != 1 {
		t.Fatalf("origin %+v", origin)
	}
}

func TestResolveOriginTopMost(t *testing.T) {
	r := NewResolver(fixture())
	origin, ok, err := r.ResolveOrigin("@Theme/base.twig", "footer")
	if err != nil || !ok || origin.Template != "@Core/base.twig" {
		t.Fatalf("origin %+v ok=%v err=%v", origin, ok, err)
	}
}

func TestResolveOriginNoOrigin(t *testing.T) {
	src := newMemSource(map[string]string{
		"root.twig":  "{% block a %}{% endblock %}",
		"child.twig": "{% extends 'root.twig' %}{% block only_here %}{% endblock %}",
	})
	r := NewResolver(src)
	if _, ok, err := r.ResolveOrigin("root.twig", "a"); ok || err != nil {
		t.Fatalf("root block: ok=%v err=%v", ok, err)
	}
	if _, ok, err := r.ResolveOrigin("child.twig", "only_here"); ok || err != nil {
		t.Fatalf("new block: ok=%v err=%v", ok, err)
	}
}

func TestResolveOriginCycle(t *testing.T) {
	src := newMemSource(map[string]string{
		"a.twig": "{% extends 'b.twig' %}{% block x %}{% endblock %}",
		"b.twig": "{% extends 'a.twig' %}{% block x %}{% endblock %}",
		"s.twig": "{% extends 's.twig' %}{% block x %}{% endblock %}",
	})
	r := NewResolver(src)
	_, _, err := r.ResolveOrigin("a.twig", "x")
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if !strings.Contains(err.Error(), "recursion detected") || !strings.Contains(err.Error(), "a.twig -> b.twig -> a.twig") {
		t.Fatalf("message %q", err.Error())
	}
	if _, _, err := r.ResolveOrigin("s.twig", "x"); !errors.As(err, &ce) {
		t.Fatalf("self parent: %v", err)
	}
}

func TestResolveOriginMissingParent(t *testing.T) {
	src := newMemSource(map[string]string{"c.twig": "{% extends 'gone.twig' %}{% block x %}{% endblock %}"})
	_, _, err := NewResolver(src).ResolveOrigin("c.twig", "x")
	if !errors.Is(err, loader.ErrTemplateNotFound) {
		t.Fatalf("err %v", err)
	}
	if _, _, err := NewResolver(nil).ResolveOrigin("c.twig", "x"); err == nil {
		t.Fatal("nil source accepted")
	}
}

func TestSliceContent(t *testing.T) {
	m := NewMarkers(twig.DefaultDelimiters())
	lines := source.SplitLines(baseTpl)
	cases := []struct {
		b    Block
		want string
	}{
		{Block{Name: "content", Lines: LineRange{3, 3}}, "base content"},
		{Block{Name: "page", Lines: LineRange{1, 5}}, "\n    <main>\n    {% block content %}base content{% endblock %}\n    </main>\n"},
		{Block{Name: "footer", Lines: LineRange{6, 6}}, "f"},
	}
	for _, tc := range cases {
		got, err := SliceContent(lines, tc.b, m)
		if err != nil {
			t.Fatalf("%s: %v", tc.b.Name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %q want %q", tc.b.Name, got, tc.want)
		}
	}
}

func TestSliceContentSharedEndLine(t *testing.T) {
	m := NewMarkers(twig.DefaultDelimiters())
	cases := []struct {
		text string
		b    Block
		want string
	}{
		{"{% block a %}{% block b %}x{% endblock %}{% endblock %}", Block{Name: "b", Lines: LineRange{1, 1}}, "x"},
		{"{% block a %}{% block b %}x{% endblock %}{% endblock %}", Block{Name: "a", Lines: LineRange{1, 1}}, "{% block b %}x{% endblock %}"},
		{"{% block a %}\n  {% block b %}\n    x\n  {% endblock %}{% endblock %}", Block{Name: "b", Lines: LineRange{2, 4}}, "\n    x\n  "},
		{"{% block a %}\n  {% block b %}\n    x\n  {% endblock %}{% endblock %}", Block{Name: "a", Lines: LineRange{1, 4}}, "\n  {% block b %}\n    x\n  {% endblock %}"},
		{"{% block a %}{% block t 'v' %}y{% endblock a %}", Block{Name: "a", Lines: LineRange{1, 1}}, "{% block t 'v' %}y"},
	}
	for _, tc := range cases {
		got, err := SliceContent(source.SplitLines(tc.text), tc.b, m)
		if err != nil {
			t.Fatalf("%s in %q: %v", tc.b.Name, tc.text, err)
		}
		if got != tc.want {
			t.Errorf("%s in %q: got %q want %q", tc.b.Name, tc.text, got, tc.want)
		}
	}
}

func TestSliceContentInlineAndModifiers(t *testing.T) {
	m := NewMarkers(twig.DefaultDelimiters())
	lines := []string{`  {%- block title "Hello" -%}`, `{%~ block body ~%}x{%- endblock body -%}`}
	got, err := SliceContent(lines, Block{Name: "title", Lines: LineRange{1, 1}, Inline: true}, m)
	if err != nil || got != `"Hello"` {
		t.Fatalf("inline %q %v", got, err)
	}
	got, err = SliceContent(lines, Block{Name: "body", Lines: LineRange{2, 2}}, m)
	if err != nil || got != "x" {
		t.Fatalf("modifiers %q %v", got, err)
	}
}

func TestSliceContentDrift(t *testing.T) {
	m := NewMarkers(twig.DefaultDelimiters())
	lines := []string{"nothing", "{% endblock %}"}
	_, err := SliceContent(lines, Block{Template: "t", Name: "a", Lines: LineRange{1, 2}}, m)
	var se *SyntaxError
	if !errors.As(err, &se) || se.Marker != "start" || se.Line != 1 {
		t.Fatalf("err %v", err)
	}
	lines = []string{"{% block a %}", "text"}
	_, err = SliceContent(lines, Block{Template: "t", Name: "a", Lines: LineRange{1, 2}}, m)
	if !errors.As(err, &se) || se.Marker != "end" || se.Line != 2 {
		t.Fatalf("err %v", err)
	}
	_, err = SliceContent(lines, Block{Template: "t", Name: "a", Lines: LineRange{1, 9}}, m)
	if !errors.As(err, &se) {
		t.Fatalf("out of range err %v", err)
	}
}

func TestExtractorHashMemo(t *testing.T) {
	src := fixture()
	e := NewExtractor(src, twig.DefaultDelimiters())
	b := Block{Template: "@Core/base.twig", Name: "content", Lines: LineRange{3, 3}}
	h, err := e.Hash(b)
	if err != nil {
		t.Fatal(err)
	}
	if h != annotation.Hash("base content") {
		t.Fatalf("hash %s", h)
	}
}

func TestCollect(t *testing.T) {
	src := fixture()
	tpl, err := src.Load("@Theme/base.twig")
	if err != nil {
		t.Fatal(err)
	}
	got := Collect(tpl, "6.5.0.0")
	if len(got) != 2 {
		t.Fatalf("comments %+v", got)
	}
	c := got[0]
	if c.Block != "content" || c.Line != 2 || c.Lines.Start != 3 || c.Hash != "abc" || c.Version != "6.6.0.0" || !c.Parsed {
		t.Fatalf("first %+v", c)
	}
	if c.ParentTemplate != "@Mid/base.twig" {
		t.Fatalf("parent %q", c.ParentTemplate)
	}
	bad := got[1]
	if bad.Block != "footer" || bad.Parsed || bad.Hash != "" || bad.Version != "6.5.0.0" {
		t.Fatalf("malformed %+v", bad)
	}

	all := CollectAll(tpl, "6.5.0.0")
	if len(all) != 3 || all[2].Attached || all[2].Hash != "def" || all[2].Line != 8 {
		t.Fatalf("all %+v", all)
	}
}

func TestCollectMultilineAndPlain(t *testing.T) {
	src := newMemSource(map[string]string{"t.twig": "{# twig-block:\nabc #}\n{% block a %}{% endblock %}\n{# plain #}\n{% block b %}{% endblock %}\n"})
	tpl, err := src.Load("t.twig")
	if err != nil {
		t.Fatal(err)
	}
	got := Collect(tpl, "6.6.0.0")
	if len(got) != 1 {
		t.Fatalf("comments %+v", got)
	}
	c := got[0]
	if c.Block != "b" || c.Line != 4 || c.Parsed || c.Hash != "" || c.Text != "plain" {
		t.Fatalf("plain %+v", c)
	}
	// the multi-line annotation is loose, the plain comment is attached
	if all := CollectAll(tpl, ""); len(all) != 2 || all[0].Attached || all[0].Line != 1 || !all[1].Attached {
		t.Fatalf("all %+v", all)
	}
}

func TestAncestryCause(t *testing.T) {
	src := newMemSource(map[string]string{"c.twig": "{% extends 'gone.twig' %}{% block x %}{% endblock %}{% block y %}{% endblock %}"})
	r := NewResolver(src)
	_, _, errX := r.ResolveOrigin("c.twig", "x")
	_, _, errY := r.ResolveOrigin("c.twig", "y")
	cx, okX := AncestryCause(errX)
	cy, okY := AncestryCause(errY)
	if !okX || !okY || cx.Error() != cy.Error() || strings.Contains(cx.Error(), "#x") {
		t.Fatalf("causes %v / %v", cx, cy)
	}
	drift := &SyntaxError{Template: "c.twig", Block: "x", Line: 1, Marker: "start"}
	if _, ok := AncestryCause(drift); ok {
		t.Fatal("drift is block-specific")
	}
}
