// Package sysvars builds the $SYS document-level variable: a fixed
// object exposing the observed-environment snapshot from config.Config
// through a Dynamic getter/setter pair, per spec.md §6's environment
// variables and SPEC_FULL.md's "(added)" $SYS.env! section.
package sysvars

import (
	"fmt"

	"github.com/hvml-run/hvmi/config"
	"github.com/hvml-run/hvmi/scope"
	"github.com/hvml-run/hvmi/variant"
)

// New builds the $SYS object, backed by cfg: `env` is a Dynamic
// variant whose getter snapshots cfg.Env() into a plain object and
// whose setter writes a single key/value pair through cfg.SetEnv,
// matching config.Config's own documented $SYS.env! contract.
func New(cfg *config.Config) *variant.Value {
	env := variant.NewDynamic(
		func(args []*variant.Value) (*variant.Value, error) {
			obj := variant.NewObject()
			for k, v := range cfg.Env() {
				if err := obj.Set(k, variant.NewString(v)); err != nil {
					return nil, err
				}
			}
			return obj, nil
		},
		func(args []*variant.Value) (*variant.Value, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("sysvars: env! expects (key, value)")
			}
			key, val := args[0].AsString(), args[1].AsString()
			if err := cfg.SetEnv(key, val); err != nil {
				return nil, err
			}
			return variant.NewBool(true), nil
		},
	)

	sys := variant.NewObject()
	_ = sys.Set("env", env)
	return sys
}

// Bind registers $SYS at the document scope, so every coroutine
// sharing doc's vDOM can resolve it via the usual three-axis lookup.
func Bind(reg *scope.Registry, cfg *config.Config) {
	reg.Document().Bind("SYS", New(cfg))
}
