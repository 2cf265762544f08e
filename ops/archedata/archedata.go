// Package archedata implements <archedata>'s operation quad from
// spec.md §4.4: like <archetype> but binds a data template rather than
// a content template.
package archedata

import (
	"github.com/hvml-run/hvmi/ops/archetype"
)

func New() *archetype.Ops { return archetype.NewTyped("data") }
