package reqid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualRequiresAllComponents(t *testing.T) {
	a := New(Chan, "runner-1", "cid-1", "inbox")
	b := New(Chan, "runner-1", "cid-1", "inbox")
	require.True(t, a.Equal(b))

	c := New(Chan, "runner-1", "cid-1", "outbox")
	require.False(t, a.Equal(c))
}

func TestMatchWildcards(t *testing.T) {
	id := New(Elements, "runner-1", "cid-7", "btn")

	require.True(t, id.Match(New(Elements, "", "", "")))
	require.True(t, id.Match(New(Elements, "runner-1", "", "")))
	require.True(t, id.Match(New(Elements, "", "", "btn")))
	require.False(t, id.Match(New(Crtn, "", "", "")), "type must match exactly")
	require.False(t, id.Match(New(Elements, "runner-2", "", "")))
}

func TestIsZero(t *testing.T) {
	require.True(t, ID{}.IsZero())
	require.False(t, New(Rdr, "", "", "x").IsZero())
}

func TestString(t *testing.T) {
	id := New(Crtn, "r1", "c1", "res")
	require.Equal(t, "CRTN/r1/c1/res", id.String())
}

func TestTypeString(t *testing.T) {
	cases := map[Type]string{
		Elements: "ELEMENTS",
		Crtn:     "CRTN",
		Chan:     "CHAN",
		Rdr:      "RDR",
		Type(99):  "UNKNOWN",
	}
	for typ, want := range cases {
		require.Equal(t, want, typ.String())
	}
}
