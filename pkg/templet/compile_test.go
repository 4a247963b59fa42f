package templet

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func wantSynErr(t *testing.T, text string, ns Context, msg string) {
	t.Helper()
	_, err := Compile(text, ns)
	var se *SyntaxError
	if !errors.As(err, &se) { t.Fatalf("want SyntaxError, got %v", err) }
	if se.Msg != msg { t.Fatalf("got %q, want %q", se.Msg, msg) }
}

func TestBadNames(t *testing.T) {
	wantSynErr(t, "Wat: {{ var%&!@ }}", nil, "Not a valid name: 'var%&!@'")
	wantSynErr(t, "Wat: {{ foo|filter%&!@ }}", nil, "Not a valid name: 'filter%&!@'")
	wantSynErr(t, "Wat: {% for @ in x %}{% endfor %}", nil, "Not a valid name: '@'")
	wantSynErr(t, "Wat: {% block @ %}", nil, "Not a valid name: '@'")
	wantSynErr(t, "{% extends @ %}", nil, "Not a valid name: '@'")
	wantSynErr(t, "{% include @ %}", nil, "Not a valid name: '@'")
}

func TestBogusTagSyntax(t *testing.T) {
	wantSynErr(t, "Huh: {% bogus %}!!{% endbogus %}??", nil, "Don't understand tag: 'bogus'")
}

func TestMalformedIf(t *testing.T) {
	wantSynErr(t, "Buh? {% if %}hi!{% endif %}", nil, "Don't understand if: '{% if %}'")
	wantSynErr(t, "Buh? {% if this or that %}hi!{% endif %}", nil, "Don't understand if: '{% if this or that %}'")
}

func TestMalformedElif(t *testing.T) {
	wantSynErr(t, "{% if One %}One{% elif %}Two{% endif %}", nil, "Don't understand elif: '{% elif %}'")
	wantSynErr(t, "{% if One %}One{% elif a b c %}abc{% endif %}", nil, "Don't understand elif: '{% elif a b c %}'")
}

func TestMalformedElse(t *testing.T) {
	wantSynErr(t, "{% if One %}One{% else a %}a", nil, "Don't understand else: '{% else a %}'")
}

func TestMalformedFor(t *testing.T) {
	wantSynErr(t, "Weird: {% for %}loop{% endfor %}", nil, "Don't understand for: '{% for %}'")
	wantSynErr(t, "Weird: {% for x from y %}loop{% endfor %}", nil, "Don't understand for: '{% for x from y %}'")
	wantSynErr(t, "Weird: {% for x, y in z %}loop{% endfor %}", nil, "Don't understand for: '{% for x, y in z %}'")
}

func TestTwoVariableFor(t *testing.T) {
	tpl, err := Compile("{% for x,y in z %}{% endfor %}", nil)
	if err != nil { t.Fatalf("compile error: %v", err) }
	fn, ok := tpl.Nodes()[0].(*ForNode)
	if !ok { t.Fatalf("want ForNode, got %#v", tpl.Nodes()[0]) }
	if diff := cmp.Diff([]string{"x", "y"}, fn.Vars); diff != "" {
		t.Fatalf("vars mismatch (-want +got):\n%s", diff)
	}
}

func TestMalformedExtends(t *testing.T) {
	wantSynErr(t, "{% extends %}", nil, "Don't understand extends: '{% extends %}'")
	wantSynErr(t, "Weird: {% extends x %}", nil, "Don't understand extends: '{% extends x %}'")
}

func TestMalformedInclude(t *testing.T) {
	wantSynErr(t, "{% include %}", nil, "Don't understand include: '{% include %}'")
	wantSynErr(t, "{% include x %}", nil, "Don't understand include: '{% include x %}'")
}

func TestInvalidExtends(t *testing.T) {
	wantSynErr(t, "{% extends unknown %}", nil, "Not a valid name: 'unknown'")
	wantSynErr(t, "{% extends basic %}", NewContext(map[string]any{"basic": 1}), "Not a valid template: 'basic'")
}

func TestSecondExtends(t *testing.T) {
	ns := NewContext(map[string]any{"a": "A", "b": "B"})
	wantSynErr(t, "{% extends a %}{% extends b %}", ns, "Don't understand extends: '{% extends b %}'")
}

func TestBadNesting(t *testing.T) {
	wantSynErr(t, "{% if x %}X", nil, "Unmatched action tag: 'if'")
	wantSynErr(t, "{% if x %}X{% endfor %}", nil, "Mismatched end tag: 'for'")
	wantSynErr(t, "{% if x %}{% endif %}{% endif %}", nil, "Too many ends: '{% endif %}'")
	wantSynErr(t, "{% elif x %}", nil, "Unmatched action tag: 'elif'")
	wantSynErr(t, "{% else %}", nil, "Unmatched action tag: 'else'")
	wantSynErr(t, "{% for x in y %}{% elif x %}", nil, "Mismatched elif tag: 'for'")
	wantSynErr(t, "{% for x in y %}{% else %}", nil, "Mismatched else tag: 'for'")
}

func TestMalformedEnd(t *testing.T) {
	wantSynErr(t, "{% if x %}X{% end if %}", nil, "Don't understand end: '{% end if %}'")
	wantSynErr(t, "{% if x %}X{% endif now %}", nil, "Don't understand end: '{% endif now %}'")
}

func TestCompiledTree(t *testing.T) {
	tpl, err := Compile("Hello {{ name }}!", nil)
	if err != nil { t.Fatalf("compile error: %v", err) }
	want := []Node{
		&TextNode{Text: "Hello "},
		&OutputNode{Expr: &Expr{Path: []string{"name"}}},
		&TextNode{Text: "!"},
	}
	if diff := cmp.Diff(want, tpl.Nodes()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}
