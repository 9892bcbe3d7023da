package twig

import (
	"errors"
	"testing"

	"twigblock/internal/diag"
)

const childSrc = `{% sw_extends '@Storefront/base.html.twig' %}

{# twig-block:abc@6.6.0 #}
{% block page %}
    {% block page_inner 'x' %}
    {% block nested %}
        body
    {% endblock %}
{% endblock page %}
`

func TestParseBlocks(t *testing.T) {
	m, err := Parse("@Theme/child.html.twig", childSrc, DefaultDelimiters())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Parent != "@Storefront/base.html.twig" || m.ParentLine != 1 {
		t.Fatalf("parent %q line %d", m.Parent, m.ParentLine)
	}
	if len(m.Blocks) != 3 {
		t.Fatalf("blocks %+v", m.Blocks)
	}
	page, ok := m.Lookup("page")
	if !ok || page.Start != 4 || page.End != 9 || page.Level != 0 {
		t.Fatalf("page %+v", page)
	}
	inner, _ := m.Lookup("page_inner")
	if !inner.Inline || inner.Expr != "'x'" || inner.Start != inner.End || inner.Level != 1 {
		t.Fatalf("inline %+v", inner)
	}
	nested, _ := m.Lookup("nested")
	if nested.Start != 6 || nested.End != 8 || nested.Level != 1 {
		t.Fatalf("nested %+v", nested)
	}
	comments := m.Comments()
	if len(comments) != 1 || comments[0].Line != 3 || comments[0].Text != "twig-block:abc@6.6.0" {
		t.Fatalf("comments %+v", comments)
	}
}

func TestParseNodeOrder(t *testing.T) {
	m, err := Parse("t", "{# a #}\n{% block x %}{% endblock %}\n{# b #}", DefaultDelimiters())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []NodeKind{NodeComment, NodeBlockEnter, NodeBlockLeave, NodeComment}
	if len(m.Nodes) != len(want) {
		t.Fatalf("nodes %+v", m.Nodes)
	}
	for i, k := range want {
		if m.Nodes[i].Kind != k {
			t.Errorf("node %d: %v, want %v", i, m.Nodes[i].Kind, k)
		}
	}
}

func TestParseEmbedIgnored(t *testing.T) {
	src := "{% embed 'x.twig' %}{% block a %}{% endblock %}{% endembed %}{% block a %}{% endblock %}"
	m, err := Parse("t", src, DefaultDelimiters())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Blocks) != 1 {
		t.Fatalf("blocks %+v", m.Blocks)
	}
}

func TestParseDynamicExtendsIgnored(t *testing.T) {
	m, err := Parse("t", "{% extends layout ~ '.twig' %}", DefaultDelimiters())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Parent != "" {
		t.Fatalf("parent %q", m.Parent)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{"{% block a %}{% endblock %}{% block a %}{% endblock %}", diag.SynDuplicateBlock},
		{"{% endblock %}", diag.SynUnexpectedEndblock},
		{"{% block a %}{% endblock b %}", diag.SynEndblockMismatch},
		{"{% block a %}", diag.SynUnclosedBlock},
		{"{% block 1a %}{% endblock %}", diag.SynBadBlockName},
	}
	for _, tc := range cases {
		_, err := Parse("bad.twig", tc.src, DefaultDelimiters())
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("%q: expected SyntaxError, got %v", tc.src, err)
			continue
		}
		if se.Code != tc.code || se.Template != "bad.twig" {
			t.Errorf("%q: got %+v, want code %v", tc.src, se, tc.code)
		}
	}
}

func TestConstantString(t *testing.T) {
	cases := map[string]string{`'a.twig'`: "a.twig", `"b"`: "b"}
	for in, want := range cases {
		got, ok := constantString(in)
		if !ok || got != want {
			t.Errorf("%s: %q %v", in, got, ok)
		}
	}
	for _, in := range []string{`x`, `'a' ~ 'b'`, `"a'`} {
		if _, ok := constantString(in); ok {
			t.Errorf("%s accepted", in)
		}
	}
}
