package env

import "testing"

func TestLookupWalksChain(t *testing.T) {
	parent := NewEnvironment()
	parent.Bind("f", &LibFunction{Name: "f"})

	child := parent.Extend()
	child.Bind("g", &LibFunction{Name: "g"})

	if _, ok := child.Lookup("f"); !ok {
		t.Error("child must see parent bindings")
	}
	if _, ok := child.Lookup("g"); !ok {
		t.Error("child must see its own bindings")
	}
	if _, ok := parent.Lookup("g"); ok {
		t.Error("parent must not see child bindings")
	}
	if _, ok := child.Lookup("missing"); ok {
		t.Error("unbound names must not resolve")
	}
}

func TestInnermostBindingShadows(t *testing.T) {
	parent := NewEnvironment()
	outer := &LibFunction{Name: "f"}
	parent.Bind("f", outer)

	child := parent.Extend()
	inner := &LibFunction{Name: "f"}
	child.Bind("f", inner)

	obj, ok := child.Lookup("f")
	if !ok || obj != Object(inner) {
		t.Error("innermost binding must shadow the outer one")
	}
}
