package scope

import (
	"testing"

	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

func TestBindShadowsButDoesNotRemove(t *testing.T) {
	doc := &vdom.Document{Root: vdom.NewElement(1, 0, "hvml")}
	child := vdom.NewElement(2, 0, "body")
	doc.Root.AddChild(&vdom.Node{Kind: vdom.ElementNode, Element: child})

	reg := NewRegistry(doc)
	reg.Document().Bind("x", variant.NewNumber(1))
	reg.Of(child).Bind("x", variant.NewNumber(2))

	v, ok := reg.Resolve(nil, child, "x")
	if !ok || v.AsNumber() != 2 {
		t.Fatalf("Resolve from child scope = %v, want 2 (shadowing)", v)
	}

	// invariant 4: the document-level binding still exists underneath.
	docVal, ok := reg.Document().Lookup("x")
	if !ok || docVal.AsNumber() != 1 {
		t.Fatalf("document-level binding was removed, not shadowed")
	}
}

func TestFrameTempTakesPriority(t *testing.T) {
	doc := &vdom.Document{Root: vdom.NewElement(1, 0, "hvml")}
	reg := NewRegistry(doc)
	reg.Document().Bind("y", variant.NewNumber(1))

	frameTemp := newManager(nil)
	frameTemp.Bind("y", variant.NewNumber(99))

	v, ok := reg.Resolve(frameTemp, doc.Root, "y")
	if !ok || v.AsNumber() != 99 {
		t.Fatalf("frame-temporary binding should win, got %v", v)
	}
}

func TestUnbindSetsUndefinedNotRemoved(t *testing.T) {
	m := newManager(nil)
	m.Bind("z", variant.NewNumber(1))
	m.Unbind("z")
	v, ok := m.Lookup("z")
	if !ok {
		t.Fatalf("unbind should leave the key present")
	}
	if v.Kind() != variant.Undefined {
		t.Fatalf("unbind should set the slot to undefined, got kind %s", v.Kind())
	}
}

func TestResolveAtRoot(t *testing.T) {
	doc := &vdom.Document{Root: vdom.NewElement(1, 0, "hvml")}
	reg := NewRegistry(doc)
	m, err := reg.ResolveAt("_root", doc.Root, nil)
	if err != nil {
		t.Fatalf("ResolveAt(_root): %v", err)
	}
	if m != reg.Document() {
		t.Fatalf("ResolveAt(_root) should return the document manager")
	}
}
