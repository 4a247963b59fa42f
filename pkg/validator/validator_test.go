package validator

import (
	"fmt"
	"strings"
	"testing"
)

type checked struct{ name string }

func (c checked) Validate() error {
	return NotEmpty(c.name, "name")
}

func TestAll(t *testing.T) {
	if err := All(nil, nil); err != nil { t.Fatalf("got %v", err) }
	want := fmt.Errorf("boom")
	if err := All(nil, want, fmt.Errorf("later")); err != want {
		t.Fatalf("got %v", err)
	}
}

func TestEach(t *testing.T) {
	if err := Each([]checked{{"a"}, {"b"}}); err != nil { t.Fatalf("got %v", err) }
	err := Each([]checked{{"a"}, {""}})
	if err == nil || !strings.Contains(err.Error(), "item 1") { t.Fatalf("got %v", err) }
}

func TestMap(t *testing.T) {
	err := Map([]string{"x", ""}, func(s, desc string) error {
		return NotEmpty(s, desc)
	}, "items")
	if err == nil || !strings.Contains(err.Error(), "items[1]") { t.Fatalf("got %v", err) }
}

func TestMapDict(t *testing.T) {
	err := MapDict(map[string]int{"a": 1}, func(k string, v int) error {
		if v != 1 {
			return fmt.Errorf("bad %s", k)
		}
		return nil
	}, "entries")
	if err != nil { t.Fatalf("got %v", err) }
}

func TestNoDuplicates(t *testing.T) {
	if err := NoDuplicates([]string{"a", "b"}, "xs"); err != nil { t.Fatalf("got %v", err) }
	if err := NoDuplicates([]string{"a", "a"}, "xs"); err == nil { t.Fatalf("want error") }
}

func TestMatchesAllowed(t *testing.T) {
	if err := MatchesAllowed("b", []string{"a", "b"}, "kind"); err != nil { t.Fatalf("got %v", err) }
	if err := MatchesAllowed("c", []string{"a", "b"}, "kind"); err == nil { t.Fatalf("want error") }
}

func TestKeyOf(t *testing.T) {
	m := map[string]int{"a": 1}
	if err := KeyOf("a", m, "ref"); err != nil { t.Fatalf("got %v", err) }
	if err := KeyOf("b", m, "ref"); err == nil { t.Fatalf("want error") }
}
