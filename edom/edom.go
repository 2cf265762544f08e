// Package edom implements the eDOM producer interface from spec.md §6
// in memory: the interpreter's typed edit stream (new_element,
// new_text_content, set_attribute) applied against a plain tree, with
// no rendering side effects. It is the reference backend SPEC_FULL.md
// §1 ships so the interpreter can run end-to-end without a real
// browser-facing renderer attached.
package edom

import (
	"fmt"
	"sync"
)

// Op is the insertion/mutation operator from spec.md §6.
type Op int

const (
	Append Op = iota
	Prepend
	InsertBefore
	InsertAfter
	Displace
	Update
	Erase
	Clear
)

// Handle identifies one element in a Document; opaque to callers other
// than this package, matching spec.md §3's "opaque handle" contract.
type Handle uint64

// element is the producer-side node: a tag, attributes, text content,
// and children, addressable only by Handle.
type element struct {
	tag      string
	attrs    map[string]string
	text     string
	parent   Handle
	children []Handle
}

// Document is an in-memory eDOM instance. One Document is created per
// top-level coroutine's `target`.
type Document struct {
	mu       sync.Mutex
	nodes    map[Handle]*element
	nextID   uint64
	rootID   Handle
	onChange func()
}

// OnChange installs fn to be called (without the document lock held)
// after every mutating call, letting renderer.Server know a fresh
// snapshot is worth pushing down a coroutine's websocket stream
// without polling. A nil fn disables the hook.
func (d *Document) OnChange(fn func()) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

func (d *Document) notify() {
	d.mu.Lock()
	fn := d.onChange
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// NewDocument creates a Document with a single root element tagged
// "html", matching the renderer bridge's implicit document root.
func NewDocument() *Document {
	d := &Document{nodes: make(map[Handle]*element)}
	d.rootID = d.alloc("html")
	return d
}

// Root returns the document root's handle.
func (d *Document) Root() Handle { return d.rootID }

func (d *Document) alloc(tag string) Handle {
	d.nextID++
	h := Handle(d.nextID)
	d.nodes[h] = &element{tag: tag, attrs: make(map[string]string)}
	return h
}

// NewElement implements spec.md §6's new_element(doc, parent, op, tag,
// self_closing).
func (d *Document) NewElement(parent Handle, op Op, tag string, selfClosing bool) (Handle, error) {
	d.mu.Lock()
	if _, ok := d.nodes[parent]; !ok {
		d.mu.Unlock()
		return 0, fmt.Errorf("edom: unknown parent handle %d", parent)
	}
	h := d.alloc(tag)
	d.nodes[h].parent = parent
	err := d.insert(parent, h, op)
	d.mu.Unlock()
	d.notify()
	if err != nil {
		return 0, err
	}
	return h, nil
}

// NewTextContent implements spec.md §6's new_text_content(doc, elem,
// op, text, len).
func (d *Document) NewTextContent(elem Handle, op Op, text string) error {
	d.mu.Lock()
	n, ok := d.nodes[elem]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("edom: unknown element handle %d", elem)
	}
	var err error
	switch op {
	case Append:
		n.text += text
	case Displace, Update:
		n.text = text
	case Clear:
		n.text = ""
	default:
		err = fmt.Errorf("edom: unsupported text op %d", op)
	}
	d.mu.Unlock()
	d.notify()
	return err
}

// SetAttribute implements spec.md §6's set_attribute(doc, elem, op,
// key, val, len).
func (d *Document) SetAttribute(elem Handle, op Op, key, val string) error {
	d.mu.Lock()
	n, ok := d.nodes[elem]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("edom: unknown element handle %d", elem)
	}
	switch op {
	case Erase:
		delete(n.attrs, key)
	default:
		n.attrs[key] = val
	}
	d.mu.Unlock()
	d.notify()
	return nil
}

// insert wires h into parent's child list according to op: Prepend
// puts h first, Displace replaces every existing child with h, and any
// other op appends h at the end. InsertBefore/After relative to an
// existing sibling are not handled here.
func (d *Document) insert(parent, h Handle, op Op) error {
	p := d.nodes[parent]
	switch op {
	case Prepend:
		p.children = append([]Handle{h}, p.children...)
	case Displace:
		for _, c := range p.children {
			delete(d.nodes, c)
		}
		p.children = []Handle{h}
	default: // Append and anything else default to append-at-end
		p.children = append(p.children, h)
	}
	return nil
}

// ClearChildren empties h's child list, discarding every descendant
// node, implementing spec.md §6's Clear op for <clear>'s eDOM target
// (remove all children, keep h itself).
func (d *Document) ClearChildren(h Handle) error {
	d.mu.Lock()
	n, ok := d.nodes[h]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("edom: unknown element handle %d", h)
	}
	for _, c := range n.children {
		d.discard(c)
	}
	n.children = nil
	d.mu.Unlock()
	d.notify()
	return nil
}

// EraseElement removes h itself (and its subtree) from its parent's
// child list, implementing spec.md §6's Erase op for <erase>'s eDOM
// target.
func (d *Document) EraseElement(h Handle) error {
	d.mu.Lock()
	n, ok := d.nodes[h]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("edom: unknown element handle %d", h)
	}
	if p, ok := d.nodes[n.parent]; ok {
		kept := p.children[:0]
		for _, c := range p.children {
			if c != h {
				kept = append(kept, c)
			}
		}
		p.children = kept
	}
	d.discard(h)
	d.mu.Unlock()
	d.notify()
	return nil
}

// discard recursively deletes h and its descendants from the node
// table; callers hold d.mu.
func (d *Document) discard(h Handle) {
	n, ok := d.nodes[h]
	if !ok {
		return
	}
	for _, c := range n.children {
		d.discard(c)
	}
	delete(d.nodes, h)
}

// TagName, Attr, Text, Children are read accessors used by the
// renderer package to walk a Document for serialization to an HTTP
// response or websocket frame.
func (d *Document) TagName(h Handle) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nodes[h].tag
}

func (d *Document) Attr(h Handle, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.nodes[h].attrs[key]
	return v, ok
}

// Attrs returns a copy of every attribute on h, for callers (the
// renderer's JSON/websocket serialization) that need the full set
// rather than one known key at a time.
func (d *Document) Attrs(h Handle) map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.nodes[h].attrs))
	for k, v := range d.nodes[h].attrs {
		out[k] = v
	}
	return out
}

func (d *Document) Text(h Handle) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nodes[h].text
}

func (d *Document) Children(h Handle) []Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Handle(nil), d.nodes[h].children...)
}
