// Package vdom models the read-only document tree the HVML parser
// emits: the program the interpreter core walks. Per spec.md §1 the
// parser itself is out of scope; this package defines the tree shape
// consumers depend on (§3 Element E, §6 vDOM consumer interface) and,
// in the loader subpackage, a concrete producer that stands in for the
// real parser so the rest of the module has something to execute
// against.
package vdom

import "github.com/hvml-run/hvmi/runtime"

// NodeKind distinguishes the three child kinds a vDOM element may hold,
// per spec.md §1's "tree of element/content/comment nodes".
type NodeKind int

const (
	ElementNode NodeKind = iota
	ContentNode
	CommentNode
)

// AttrOp is the operator carried on an attribute assignment, per
// spec.md §3's Attribute `{key, op, value-tree}`.
type AttrOp int

const (
	OpAssign AttrOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpOr  // ||=
	OpAnd // &&=
)

// Attribute is one `name op value` pair on an Element. Value is the raw
// VCM (Variant Creation Model) source text; evaluating it against a
// frame's scope produces a *variant.Value — that evaluation is the
// frame/scope packages' job, not this one's.
type Attribute struct {
	Key   string
	Op    AttrOp
	Value string
}

// Element is one node of the read-only vDOM, per spec.md §3's Element E.
type Element struct {
	ID       int
	TagID    runtime.Atom
	TagName  string

	SelfClosing bool
	Silently    bool // inherits from parent unless explicitly set

	Attributes []Attribute
	Content    string // inline text/CDATA content, when this element has no element children

	Parent        *Element
	FirstChild    *Node
	children      []*Node // backing store; FirstChild/NextSibling walk this
}

// Node is one child slot under an Element: either another Element, a
// text-content run, or a comment. Exactly one of Element/Text is
// meaningful, selected by Kind.
type Node struct {
	Kind    NodeKind
	Element *Element
	Text    string

	index   int
	siblings []*Node
}

// NextSibling implements the vDOM consumer interface's next_sibling.
func (n *Node) NextSibling() *Node {
	if n == nil || n.index+1 >= len(n.siblings) {
		return nil
	}
	return n.siblings[n.index+1]
}

// Document is the root of a parsed HVML program.
type Document struct {
	Root *Element
	// Document carries no scope state; document-level bindings are held
	// by the scope package.
}

// FindAttr implements the vDOM consumer interface's find_attr.
func (e *Element) FindAttr(key string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a, true
		}
	}
	return Attribute{}, false
}

// TagID / TagName implement the vDOM consumer interface.
func (e *Element) GetTagID() runtime.Atom { return e.TagID }
func (e *Element) GetTagName() string     { return e.TagName }

// Parent implements the vDOM consumer interface's parent.
func (e *Element) GetParent() *Element { return e.Parent }

// FirstChildNode implements the vDOM consumer interface's first_child.
func (e *Element) FirstChildNode() *Node { return e.FirstChild }

// Children returns every child Node in document order.
func (e *Element) Children() []*Node { return e.children }

// AddChild appends a fully-formed child node (used by loaders building
// a tree programmatically; the YAML loader in vdom/loader is the
// reference producer).
func (e *Element) AddChild(n *Node) {
	n.index = len(e.children)
	n.siblings = e.children // placeholder; fixed up below
	e.children = append(e.children, n)
	for _, c := range e.children {
		c.siblings = e.children
	}
	if e.FirstChild == nil {
		e.FirstChild = e.children[0]
	}
	if n.Kind == ElementNode && n.Element != nil {
		n.Element.Parent = e
	}
}

// NewElement constructs a detached Element with the given tag.
func NewElement(id int, tagID runtime.Atom, tagName string) *Element {
	return &Element{ID: id, TagID: tagID, TagName: tagName}
}
