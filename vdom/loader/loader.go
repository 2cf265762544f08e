// Package loader builds a vdom.Document from a YAML source. It stands
// in for the out-of-scope HVML parser (spec.md §1): rather than
// tokenizing HVML tag soup, it reads an already-structured tree where
// each node is a YAML mapping naming its tag, attributes, and
// children. This gives the rest of the module a real, file-backed
// program to execute without requiring an HVML tokenizer/grammar,
// which spec.md explicitly excludes.
package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/vdom"
)

// rawNode mirrors the YAML shape:
//
//	tag: init
//	silently: false
//	attrs:
//	  as: x
//	  with: "[1,2,3]"
//	content: ""
//	children:
//	  - tag: bind
//	    ...
type rawNode struct {
	Tag      string    `yaml:"tag"`
	Silently bool      `yaml:"silently"`
	Attrs    yaml.Node `yaml:"attrs"`
	Content  string    `yaml:"content"`
	Children []rawNode `yaml:"children"`
}

// Load parses YAML bytes into a vdom.Document, interning every tag name
// into atoms via atoms.
func Load(data []byte, atoms *runtime.AtomTable) (*vdom.Document, error) {
	var root rawNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("loader: parse yaml: %w", err)
	}
	if root.Tag == "" {
		return nil, fmt.Errorf("loader: document root must name a tag (expected \"hvml\")")
	}
	nextID := 0
	elem, err := build(&root, nil, atoms, &nextID)
	if err != nil {
		return nil, err
	}
	return &vdom.Document{Root: elem}, nil
}

func build(raw *rawNode, parent *vdom.Element, atoms *runtime.AtomTable, nextID *int) (*vdom.Element, error) {
	*nextID++
	tagID := atoms.Intern(raw.Tag)
	elem := vdom.NewElement(*nextID, tagID, raw.Tag)
	elem.Silently = raw.Silently
	elem.Parent = parent
	elem.Content = raw.Content

	attrs, err := parseAttrs(&raw.Attrs)
	if err != nil {
		return nil, fmt.Errorf("loader: element %q: %w", raw.Tag, err)
	}
	elem.Attributes = attrs

	if len(raw.Children) == 0 {
		elem.SelfClosing = raw.Content == ""
	}
	for _, childRaw := range raw.Children {
		childRaw := childRaw
		child, err := build(&childRaw, elem, atoms, nextID)
		if err != nil {
			return nil, err
		}
		elem.AddChild(&vdom.Node{Kind: vdom.ElementNode, Element: child})
	}
	if raw.Content != "" {
		elem.AddChild(&vdom.Node{Kind: vdom.ContentNode, Text: raw.Content})
	}
	return elem, nil
}

// parseAttrs reads the YAML mapping under "attrs" into Attribute
// values, splitting a trailing compound operator ("+=", "-=", "||=",
// …) off the mapping key per spec.md §3's Attribute{key, op, value}.
func parseAttrs(node *yaml.Node) ([]vdom.Attribute, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("attrs must be a mapping")
	}
	var out []vdom.Attribute
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		key, op := splitOperator(keyNode.Value)
		out = append(out, vdom.Attribute{Key: key, Op: op, Value: valNode.Value})
	}
	return out, nil
}

func splitOperator(raw string) (string, vdom.AttrOp) {
	suffixes := []struct {
		suffix string
		op     vdom.AttrOp
	}{
		{"||=", vdom.OpOr},
		{"&&=", vdom.OpAnd},
		{"+=", vdom.OpAdd},
		{"-=", vdom.OpSub},
		{"*=", vdom.OpMul},
		{"/=", vdom.OpDiv},
		{"%=", vdom.OpMod},
	}
	for _, s := range suffixes {
		if len(raw) > len(s.suffix) && raw[len(raw)-len(s.suffix):] == s.suffix {
			return raw[:len(raw)-len(s.suffix)], s.op
		}
	}
	return raw, vdom.OpAssign
}
