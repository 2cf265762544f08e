// Package sleep implements <sleep>'s operation quad from spec.md
// §4.4: registers a one-shot timer for `for` (a duration with unit
// suffix ns|us|ms|s|m|h|d) or `with` (seconds, as a bare integer), and
// yields until it fires; `?` is then set to 0.
package sleep

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hvml-run/hvmi/coroutine"
	"github.com/hvml-run/hvmi/frame"
	"github.com/hvml-run/hvmi/ops/opsutil"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/timer"
	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/vdom"
)

type Ops struct{}

func New() *Ops { return &Ops{} }

var unitSuffixes = []string{"ns", "us", "ms", "s", "m", "h", "d"}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(s, suf) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(s, suf), 64)
			if err != nil {
				return 0, err
			}
			switch suf {
			case "ns":
				return time.Duration(n), nil
			case "us":
				return time.Duration(n * float64(time.Microsecond)), nil
			case "ms":
				return time.Duration(n * float64(time.Millisecond)), nil
			case "s":
				return time.Duration(n * float64(time.Second)), nil
			case "m":
				return time.Duration(n * float64(time.Minute)), nil
			case "h":
				return time.Duration(n * float64(time.Hour)), nil
			case "d":
				return time.Duration(n * 24 * float64(time.Hour)), nil
			}
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(n * float64(time.Second)), nil
}

func (o *Ops) AfterPushed(f *frame.Frame) (frame.NextStep, error) {
	if err := opsutil.EvalAttrs(f); err != nil {
		return 0, err
	}
	f.Ctxt = opsutil.NoopCtxt{}
	co := opsutil.Co(f)

	var raw string
	if s, ok := opsutil.AttrString(f, "for"); ok {
		raw = s
	} else if s, ok := opsutil.AttrString(f, "with"); ok {
		raw = s + "s"
	} else {
		return 0, runtime.NewError(runtime.ErrArgumentMissed, "sleep", nil)
	}
	d, err := parseDuration(raw)
	if err != nil {
		return 0, runtime.NewError(runtime.ErrInvalidValue, "sleep", err)
	}

	id := fmt.Sprintf("sleep-%p", f)
	co.Timers.Create(id, d, timer.Oneshot, func(string) {
		co.NotifyReady(coroutine.Message{EventName: "sleep", SubName: "expired"})
	})
	co.Timers.Start(id)

	co.Yield(&coroutine.EventHandler{
		Type:    "sleep",
		SubType: "expired",
		Handle: func(msg coroutine.Message) (frame.NextStep, error) {
			f.Symbols.Question = variant.NewLongInt(0)
			co.Timers.Destroy(id)
			return frame.OnPopping, nil
		},
	})
	return frame.OnPopping, nil
}

func (o *Ops) SelectChild(f *frame.Frame) (*vdom.Node, error) { return nil, nil }

func (o *Ops) Rerun(f *frame.Frame) (frame.NextStep, error) { return frame.OnPopping, nil }

func (o *Ops) OnPopping(f *frame.Frame) error { return nil }
