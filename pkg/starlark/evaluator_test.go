package starlark

import (
	"testing"

	"github.com/rainfd/template-engine-plus/pkg/templet"
)

func TestEvalExpression(t *testing.T) {
	e := NewEvaluator()
	v, err := e.Eval("1 + 2")
	if err != nil { t.Fatalf("eval error: %v", err) }
	if v.String() != "3" { t.Fatalf("got %q", v.String()) }
}

func TestExecAndExport(t *testing.T) {
	e := NewEvaluator()
	_, err := e.ExecString("greeting = 'hello'\n_hidden = 1\n")
	if err != nil { t.Fatalf("exec error: %v", err) }
	ctx := e.ExportContext()
	if v, ok := ctx["greeting"]; !ok || v.String() != "hello" {
		t.Fatalf("greeting: %v %v", v, ok)
	}
	if _, ok := ctx["_hidden"]; ok {
		t.Fatalf("underscore globals must not export")
	}
}

func TestScriptFunctionAsFilter(t *testing.T) {
	ns, err := LoadFilters("def shout(s):\n    return s.upper() + '!'\n")
	if err != nil { t.Fatalf("load error: %v", err) }
	out, err := templet.TemplateString("{{ name|shout }}").Render(ns,
		templet.NewContext(map[string]any{"name": "ned"}))
	if err != nil { t.Fatalf("render error: %v", err) }
	if out != "NED!" { t.Fatalf("got %q", out) }
}

func TestScriptFilterWithArgument(t *testing.T) {
	ns, err := LoadFilters("def add(x, y):\n    return x + y\n")
	if err != nil { t.Fatalf("load error: %v", err) }
	out, err := templet.TemplateString("{{ num|add:2 }}").Render(ns,
		templet.NewContext(map[string]any{"num": 1}))
	if err != nil { t.Fatalf("render error: %v", err) }
	if out != "3" { t.Fatalf("got %q", out) }
}

func TestConvertRoundTrip(t *testing.T) {
	in := templet.DictValue{
		"s": templet.StringValue("x"),
		"n": templet.IntValue(3),
		"l": templet.ListValue{templet.IntValue(1), templet.BoolValue(true)},
	}
	out := ConvertFromStarlark(ConvertToStarlark(in))
	dv, ok := out.(templet.DictValue)
	if !ok { t.Fatalf("want DictValue, got %T", out) }
	if dv["s"].String() != "x" || dv["n"].String() != "3" {
		t.Fatalf("scalars: %v", dv)
	}
	lv, ok := dv["l"].(templet.ListValue)
	if !ok || len(lv) != 2 { t.Fatalf("list: %v", dv["l"]) }
}

func TestLoadFiltersBadScript(t *testing.T) {
	if _, err := LoadFilters("def broken(:\n"); err == nil {
		t.Fatalf("want error for bad script")
	}
}
