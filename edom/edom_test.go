package edom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDocumentRoot(t *testing.T) {
	d := NewDocument()
	require.Equal(t, "html", d.TagName(d.Root()))
	require.Empty(t, d.Children(d.Root()))
}

func TestNewElementAppendAndPrepend(t *testing.T) {
	d := NewDocument()
	root := d.Root()

	first, err := d.NewElement(root, Append, "div", false)
	require.NoError(t, err)
	second, err := d.NewElement(root, Append, "span", false)
	require.NoError(t, err)
	require.Equal(t, []Handle{first, second}, d.Children(root))

	third, err := d.NewElement(root, Prepend, "p", false)
	require.NoError(t, err)
	require.Equal(t, []Handle{third, first, second}, d.Children(root))
}

func TestNewElementUnknownParent(t *testing.T) {
	d := NewDocument()
	_, err := d.NewElement(Handle(999), Append, "div", false)
	require.Error(t, err)
}

func TestNewElementDisplace(t *testing.T) {
	d := NewDocument()
	root := d.Root()
	_, err := d.NewElement(root, Append, "div", false)
	require.NoError(t, err)
	replacement, err := d.NewElement(root, Displace, "section", false)
	require.NoError(t, err)
	require.Equal(t, []Handle{replacement}, d.Children(root))
}

func TestNewTextContentOps(t *testing.T) {
	d := NewDocument()
	root := d.Root()
	el, err := d.NewElement(root, Append, "p", false)
	require.NoError(t, err)

	require.NoError(t, d.NewTextContent(el, Append, "hello"))
	require.NoError(t, d.NewTextContent(el, Append, " world"))
	require.Equal(t, "hello world", d.Text(el))

	require.NoError(t, d.NewTextContent(el, Update, "replaced"))
	require.Equal(t, "replaced", d.Text(el))

	require.NoError(t, d.NewTextContent(el, Clear, ""))
	require.Equal(t, "", d.Text(el))

	require.Error(t, d.NewTextContent(el, InsertBefore, "nope"))
}

func TestSetAttribute(t *testing.T) {
	d := NewDocument()
	root := d.Root()
	el, err := d.NewElement(root, Append, "div", false)
	require.NoError(t, err)

	require.NoError(t, d.SetAttribute(el, Update, "class", "box"))
	v, ok := d.Attr(el, "class")
	require.True(t, ok)
	require.Equal(t, "box", v)

	require.NoError(t, d.SetAttribute(el, Update, "id", "main"))
	require.Equal(t, map[string]string{"class": "box", "id": "main"}, d.Attrs(el))

	require.NoError(t, d.SetAttribute(el, Erase, "class", ""))
	_, ok = d.Attr(el, "class")
	require.False(t, ok)
}

func TestClearChildrenKeepsElement(t *testing.T) {
	d := NewDocument()
	root := d.Root()
	parent, err := d.NewElement(root, Append, "ul", false)
	require.NoError(t, err)
	_, err = d.NewElement(parent, Append, "li", false)
	require.NoError(t, err)
	_, err = d.NewElement(parent, Append, "li", false)
	require.NoError(t, err)
	require.Len(t, d.Children(parent), 2)

	require.NoError(t, d.ClearChildren(parent))
	require.Empty(t, d.Children(parent))
	require.Equal(t, "ul", d.TagName(parent))
}

func TestEraseElementRemovesFromParent(t *testing.T) {
	d := NewDocument()
	root := d.Root()
	a, err := d.NewElement(root, Append, "div", false)
	require.NoError(t, err)
	b, err := d.NewElement(root, Append, "div", false)
	require.NoError(t, err)

	require.NoError(t, d.EraseElement(a))
	require.Equal(t, []Handle{b}, d.Children(root))
}

func TestOnChangeFiresOnMutation(t *testing.T) {
	d := NewDocument()
	calls := 0
	d.OnChange(func() { calls++ })

	_, err := d.NewElement(d.Root(), Append, "div", false)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	require.NoError(t, d.SetAttribute(d.Root(), Update, "lang", "en"))
	require.Equal(t, 2, calls)

	d.OnChange(nil)
	_, err = d.NewElement(d.Root(), Append, "span", false)
	require.NoError(t, err)
	require.Equal(t, 2, calls, "no further notifications once the hook is cleared")
}
