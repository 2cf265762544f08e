// Package update implements <update>'s operation quad from spec.md
// §4.4: mutates a target (a named variant or an eDOM element/CSS
// selector) according to `to` (the update verb), honoring `at` (a
// sub-path into the target, or the eDOM content/textContent/attr.<name>
// selector), `with` (the new value), and `individually` (apply the
// same update to every member of a container target).
package update

import (
	"strings"

	"github.com/hvml-run/hvmi/edom"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/archetype"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	f.Ctxt = opsutil.NoopCtxt{}

	target, hasOn := opsutil.Attr(f, "on")
	if !hasOn {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "update", nil)
	}
	to, _ := opsutil.AttrString(f, "to")
	if to == "" {
		to = "displace"
	}
	at, _ := opsutil.AttrString(f, "at")
	with, hasWith := opsutil.Attr(f, "with")
	if !hasWith {
		with = variant.NewUndefined()
	}
	_, individually := f.Pos.FindAttr("individually")

	if target.Kind() == variant.Native {
		if h, ok := target.AsNative().Entity.(edom.Handle); ok {
			co := opsutil.Co(f)
			if err := applyEDOM(co.EDOM, h, at, to, with); err != nil {
				return 0, runtime.NewError(runtime.ErrInvalidValue, "update", err)
			}
			return frame.OnPopping, nil
		}
	}

	if individually {
		for _, m := range target.Members() {
			if err := applyVariant(m, at, to, with); err != nil {
				return 0, runtime.NewError(runtime.ErrInvalidValue, "update", err)
			}
		}
		return frame.OnPopping, nil
	}

	if err := applyVariant(target, at, to, with); err != nil {
		return 0, runtime.NewError(runtime.ErrInvalidValue, "update", err)
	}
	return frame.OnPopping, nil
}

func applyEDOM(doc *edom.Document, h edom.Handle, at, to string, with *variant.Value) error {
	text := stringifyForEDOM(with)
	switch {
	case at == "" || at == "content" || at == "textContent":
		return doc.NewTextContent(h, edomOp(to), text)
	case strings.HasPrefix(at, "attr."):
		name := strings.TrimPrefix(at, "attr.")
		return doc.SetAttribute(h, edomOp(to), name, text)
	default:
		return doc.SetAttribute(h, edomOp(to), at, text)
	}
}

// stringifyForEDOM renders `with` as eDOM-bound text. A Native value
// wrapping an archetype.Template (bound by <archetype>/<archedata>) is
// serialized as markup rather than stringified as a scalar, so
// <update at="content" with="$tmplName"> splices the template's
// subtree instead of some opaque variant representation.
func stringifyForEDOM(with *variant.Value) string {
	if with.Kind() == variant.Native {
		if tmpl, ok := with.AsNative().Entity.(*archetype.Template); ok {
			return serializeSubtree(tmpl.Subtree)
		}
	}
	return variant.Stringify(with)
}

func serializeSubtree(e *vdom.Element) string {
	var b strings.Builder
	writeElement(&b, e)
	return b.String()
}

func writeElement(b *strings.Builder, e *vdom.Element) {
	b.WriteByte('<')
	b.WriteString(e.TagName)
	for _, a := range e.Attributes {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(a.Value)
		b.WriteByte('"')
	}
	if e.SelfClosing {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	if e.Content != "" {
		b.WriteString(e.Content)
	}
	for n := e.FirstChildNode(); n != nil; n = n.NextSibling() {
		switch n.Kind {
		case vdom.ElementNode:
			writeElement(b, n.Element)
		case vdom.ContentNode:
			b.WriteString(n.Text)
		}
	}
	b.WriteString("</")
	b.WriteString(e.TagName)
	b.WriteByte('>')
}

func edomOp(to string) edom.Op {
	switch strings.ToLower(to) {
	case "append":
		return edom.Append
	case "prepend":
		return edom.Prepend
	case "insertbefore":
		return edom.InsertBefore
	case "insertafter":
		return edom.InsertAfter
	case "remove", "erase":
		return edom.Erase
	default:
		return edom.Displace
	}
}

// applyVariant mutates a named-variable target. Object/Array/Set
// targets support the verbs spec.md §4.4 lists; which ones are
// meaningful depends on the container kind, matching the source
// implementation's own per-kind dispatch.
func applyVariant(target *variant.Value, at, to string, with *variant.Value) error {
	switch target.Kind() {
	case variant.Object:
		return applyObject(target, at, to, with)
	case variant.Array:
		return applyArray(target, at, to, with)
	case variant.Set:
		return applySet(target, to, with)
	default:
		return nil // scalar targets have nothing an <update> verb can mutate in place
	}
}

// objectKey resolves an `at` sub-path like ".name" (spec.md §4.4's
// dotted-path form, shared with variant/path) down to the bare key
// target.Set/Delete address; it does not walk nested paths, matching
// those methods' own single-level key addressing.
func objectKey(at string) string {
	return strings.TrimPrefix(at, ".")
}

func applyObject(target *variant.Value, at, to string, with *variant.Value) error {
	switch strings.ToLower(to) {
	case "remove":
		return target.Delete(objectKey(at))
	case "merge", "unite", "overwrite":
		if with.Kind() != variant.Object {
			return target.Set(objectKey(at), with)
		}
		for _, k := range with.Keys() {
			if err := target.Set(k, with.Get(k)); err != nil {
				return err
			}
		}
		return nil
	default: // displace
		if at == "" {
			return nil
		}
		return target.Set(objectKey(at), with)
	}
}

func applyArray(target *variant.Value, at, to string, with *variant.Value) error {
	idx := -1
	if at != "" {
		idx = parseIndex(at, target.Len())
	}
	switch strings.ToLower(to) {
	case "append":
		return spliceMembers(target, target.Len(), with)
	case "prepend":
		return spliceMembers(target, 0, with)
	case "insertbefore":
		return spliceMembers(target, idx, with)
	case "insertafter":
		return spliceMembers(target, idx+1, with)
	case "remove":
		return target.ArrayRemove(idx)
	default: // displace/overwrite at an index
		if idx < 0 {
			return target.ArrayAppend(with)
		}
		return target.ArraySet(idx, with)
	}
}

// spliceMembers inserts with at idx, per spec.md §4.4's append/prepend/
// insertBefore/insertAfter verbs: an array- or tuple-valued with splices
// its members in one by one rather than nesting the whole container as
// a single new element.
func spliceMembers(target *variant.Value, idx int, with *variant.Value) error {
	if with.Kind() != variant.Array && with.Kind() != variant.Tuple {
		return target.ArrayInsert(idx, with)
	}
	for i, m := range with.Items() {
		if err := target.ArrayInsert(idx+i, m); err != nil {
			return err
		}
	}
	return nil
}

func applySet(target *variant.Value, to string, with *variant.Value) error {
	switch strings.ToLower(to) {
	case "remove", "subtract":
		if with.Kind() != variant.Set {
			return target.SetRemove(with)
		}
		for _, m := range with.Members() {
			if err := target.SetRemove(m); err != nil {
				return err
			}
		}
		return nil
	case "unite", "merge", "append":
		if with.Kind() != variant.Set {
			return target.SetAdd(with)
		}
		for _, m := range with.Members() {
			if err := target.SetAdd(m); err != nil {
				return err
			}
		}
		return nil
	case "intersect":
		if with.Kind() != variant.Set {
			return nil
		}
		for _, m := range target.Members() {
			if !with.SetContains(m) {
				_ = target.SetRemove(m)
			}
		}
		return nil
	case "xor":
		if with.Kind() != variant.Set {
			return nil
		}
		for _, m := range with.Members() {
			if target.SetContains(m) {
				_ = target.SetRemove(m)
			} else {
				_ = target.SetAdd(m)
			}
		}
		return nil
	default: // displace
		return target.SetAdd(with)
	}
}

func parseIndex(at string, length int) int {
	n := 0
	neg := strings.HasPrefix(at, "-")
	s := strings.TrimPrefix(at, "-")
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return length - n
	}
	return n
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
