package templet

import "testing"

func lexAll(src string) []token {
	lx := newLexer(src)
	var toks []token
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestLexTextAndDelimiters(t *testing.T) {
	toks := lexAll("Hello {{ name }}!{# note #}{% if x %}")
	if len(toks) != 5 { t.Fatalf("want 5 tokens, got %d", len(toks)) }
	if toks[0].kind != tokText || toks[0].raw != "Hello " {
		t.Fatalf("tok0: %#v", toks[0])
	}
	if toks[1].kind != tokExpr || toks[1].content != "name" || toks[1].raw != "{{ name }}" {
		t.Fatalf("tok1: %#v", toks[1])
	}
	if toks[2].kind != tokText || toks[2].raw != "!" {
		t.Fatalf("tok2: %#v", toks[2])
	}
	if toks[3].kind != tokComment || toks[3].content != "note" {
		t.Fatalf("tok3: %#v", toks[3])
	}
	if toks[4].kind != tokAction || toks[4].content != "if x" {
		t.Fatalf("tok4: %#v", toks[4])
	}
}

func TestLexCommentToken(t *testing.T) {
	toks := lexAll("a{# multi\nline #}b")
	if len(toks) != 3 { t.Fatalf("want 3 tokens, got %d", len(toks)) }
	if toks[1].kind != tokComment || toks[1].content != "multi\nline" {
		t.Fatalf("tok1: %#v", toks[1])
	}
}

func TestLexCompactTags(t *testing.T) {
	toks := lexAll("{%if x%}{{n}}{%endif%}")
	if len(toks) != 3 { t.Fatalf("want 3 tokens, got %d", len(toks)) }
	if toks[0].content != "if x" || toks[1].content != "n" || toks[2].content != "endif" {
		t.Fatalf("contents: %q %q %q", toks[0].content, toks[1].content, toks[2].content)
	}
}

func TestLexLoneBraces(t *testing.T) {
	toks := lexAll("20% fun { brace } time")
	if len(toks) != 1 || toks[0].kind != tokText || toks[0].raw != "20% fun { brace } time" {
		t.Fatalf("tokens: %#v", toks)
	}
}

func TestLexUnterminatedDelimiter(t *testing.T) {
	toks := lexAll("start {{ name")
	if len(toks) != 1 || toks[0].kind != tokText || toks[0].raw != "start {{ name" {
		t.Fatalf("tokens: %#v", toks)
	}
}
