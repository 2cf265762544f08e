// Package ops builds the tag-atom -> operation-quad dispatch table
// scheduler.OpsTable needs, registering every verb package plus
// ops/render as the fallback for plain rendering tags, per spec.md
// §2's "every element has an operation quad" contract.
package ops

import (
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/archedata"
	"github.com/hvml-run/hvmi/ops/archetype"
	"github.com/hvml-run/hvmi/ops/back"
	"github.com/hvml-run/hvmi/ops/bind"
	"github.com/hvml-run/hvmi/ops/body"
	"github.com/hvml-run/hvmi/ops/call"
	"github.com/hvml-run/hvmi/ops/catch"
	"github.com/hvml-run/hvmi/ops/choose"
	"github.com/hvml-run/hvmi/ops/clear"
	"github.com/hvml-run/hvmi/ops/define"
	"github.com/hvml-run/hvmi/ops/differ"
	"github.com/hvml-run/hvmi/ops/erase"
	"github.com/hvml-run/hvmi/ops/except"
	"github.com/hvml-run/hvmi/ops/exit"
	"github.com/hvml-run/hvmi/ops/forget"
	"github.com/hvml-run/hvmi/ops/head"
	"github.com/hvml-run/hvmi/ops/hvml"
	"github.com/hvml-run/hvmi/ops/include"
	"github.com/hvml-run/hvmi/ops/inherit"
	"github.com/hvml-run/hvmi/ops/initverb"
	"github.com/hvml-run/hvmi/ops/iterate"
	"github.com/hvml-run/hvmi/ops/load"
	"github.com/hvml-run/hvmi/ops/match"
	"github.com/hvml-run/hvmi/ops/observe"
	"github.com/hvml-run/hvmi/ops/reduce"
	"github.com/hvml-run/hvmi/ops/render"
	"github.com/hvml-run/hvmi/ops/request"
	"github.com/hvml-run/hvmi/ops/sleep"
	"github.com/hvml-run/hvmi/ops/sort"
	"github.com/hvml-run/hvmi/ops/test"
	"github.com/hvml-run/hvmi/ops/update"
	"github.com/hvml-run/hvmi/runtime"
)

// Table implements scheduler.OpsTable (and the identically-shaped
// OpsTable interfaces ops/call, ops/include, ops/observe, and
// ops/request each declare locally to avoid importing this package,
// which would cycle back to them).
type Table struct {
	rt       *runtime.Runtime
	verbs    map[runtime.Atom]frame.Ops
	fallback frame.Ops
}

// New builds the full dispatch table, interning every verb's tag name
// against rt's atom table.
func New(rt *runtime.Runtime) *Table {
	t := &Table{rt: rt, verbs: make(map[runtime.Atom]frame.Ops), fallback: render.New()}

	// Verb packages needing the table itself (to push a callee/content
	// subtree with its own ops) take t, which is fully constructed by
	// the time any AfterPushed call actually runs.
	callOps := call.New(t)
	includeOps := include.New(t)
	observeOps := observe.New(t)
	requestOps := request.New(t)

	register := map[string]frame.Ops{
		"hvml":      hvml.New(),
		"head":      head.New(),
		"body":      body.New(),
		"init":      initverb.New(),
		"bind":      bind.New(),
		"define":    define.New(),
		"except":    except.New(),
		"catch":     catch.New(),
		"call":      callOps,
		"include":   includeOps,
		"observe":   observeOps,
		"forget":    forget.New(),
		"load":      load.New(),
		"update":    update.New(),
		"iterate":   iterate.New(),
		"archetype": archetype.New(),
		"archedata": archedata.New(),
		"exit":      exit.New(),
		"sleep":     sleep.New(),
		"inherit":   inherit.New(),
		"differ":    differ.New(),
		"test":      test.New(),
		"choose":    choose.New(),
		"match":     match.New(),
		"back":      back.New(),
		"clear":     clear.New(),
		"erase":     erase.New(),
		"reduce":    reduce.New(),
		"sort":      sort.New(),
		"request":   requestOps,
	}
	for tag, o := range register {
		t.verbs[rt.Atoms.Intern(tag)] = o
	}
	return t
}

// Lookup resolves tagID to its operation quad, falling back to
// ops/render for any tag not in the verb set (plain rendering
// elements: <p>, <div>, <span>, and the rest of the open-ended
// taxonomy spec.md §4.4 leaves undefined beyond "body dispatches
// rendering elements").
func (t *Table) Lookup(tagID runtime.Atom) (frame.Ops, error) {
	if o, ok := t.verbs[tagID]; ok {
		return o, nil
	}
	return t.fallback, nil
}
