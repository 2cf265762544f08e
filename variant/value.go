// Package variant implements the tagged, reference-counted dynamic value
// that flows through every stage of HVML evaluation: attribute VCM
// results, bound names, frame symbol variables, eDOM content, and event
// payloads are all *variant.Value.
//
// The source implementation is a refcounted graph with cycle risk baked
// in (manual PURC_VARIANT_SAFE_CLEAR guards on every failure path). Per
// the reimplementation note in spec.md §9, containers here form a DAG:
// object/array/set/tuple hold strong references to their members, and
// the only place a cycle can appear is through a native variant's opaque
// entity, which owns its own lifetime.
package variant

import (
	"fmt"
	"sync/atomic"
)

// Kind is the tag of a Value's sum type.
type Kind int

const (
	Null Kind = iota
	Undefined
	Boolean
	Exception // an atom naming an exception, used as a first-class value
	Number    // double
	LongInt
	ULongInt
	LongDouble
	AtomString
	String
	ByteSequence
	Dynamic // getter/setter pair
	Native  // opaque entity + method table
	Object  // ordered key -> Value
	Array   // ordered Value list
	Set     // keyed-or-anonymous unique collection
	Tuple   // fixed-size Value list
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Undefined:
		return "undefined"
	case Boolean:
		return "boolean"
	case Exception:
		return "exception"
	case Number:
		return "number"
	case LongInt:
		return "longint"
	case ULongInt:
		return "ulongint"
	case LongDouble:
		return "longdouble"
	case AtomString:
		return "atomstring"
	case String:
		return "string"
	case ByteSequence:
		return "byte-sequence"
	case Dynamic:
		return "dynamic"
	case Native:
		return "native"
	case Object:
		return "object"
	case Array:
		return "array"
	case Set:
		return "set"
	case Tuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// DynamicGetter/DynamicSetter back a Dynamic variant ($TIMERS, $SYS, ...).
type DynamicGetter func(args []*Value) (*Value, error)
type DynamicSetter func(args []*Value) (*Value, error)

// Value is the variant sum type. Exactly one group of fields is
// meaningful for a given Kind; which group is determined entirely by
// Kind, never by which fields happen to be non-zero.
type Value struct {
	kind Kind

	refcount int32

	b      bool
	num    float64
	i64    int64
	u64    uint64
	ld     float64 // long double stand-in (float64 has no wider stdlib type)
	str    string  // String, AtomString, Exception (atom name)
	bytes  []byte
	getter DynamicGetter
	setter DynamicSetter
	native *Native

	container *container // Object/Array/Set/Tuple
}

// Native carries an opaque entity and the method table describing how
// the interpreter may interact with it, per spec.md §3/§4.1.
type Native struct {
	Entity  any
	Methods NativeMethods
}

// NativeMethods is the method table a native variant exposes. All
// entries are optional; a nil entry means "not supported" for that
// operation.
type NativeMethods struct {
	PropertyGetter func(entity any, name string) (*Value, error)
	PropertySetter func(entity any, name string, val *Value) error
	PropertyEraser func(entity any, name string) error
	OnObserve      func(entity any, eventType, subType string) bool
	OnRelease      func(entity any)
	EqualTo        func(a, b any) bool
	Numerify       func(entity any) float64
}

func newValue(k Kind) *Value {
	return &Value{kind: k, refcount: 1}
}

// Kind reports v's type tag.
func (v *Value) Kind() Kind { return v.kind }

// NewNull, NewUndefined, NewBool construct the corresponding scalar variants.
func NewNull() *Value      { return newValue(Null) }
func NewUndefined() *Value { return newValue(Undefined) }

func NewBool(b bool) *Value {
	v := newValue(Boolean)
	v.b = b
	return v
}

// NewException constructs an exception-atom value; name is the bare
// exception identifier (no leading sigil).
func NewException(name string) *Value {
	v := newValue(Exception)
	v.str = name
	return v
}

func NewNumber(f float64) *Value {
	v := newValue(Number)
	v.num = f
	return v
}

func NewLongInt(i int64) *Value {
	v := newValue(LongInt)
	v.i64 = i
	return v
}

func NewULongInt(u uint64) *Value {
	v := newValue(ULongInt)
	v.u64 = u
	return v
}

func NewLongDouble(f float64) *Value {
	v := newValue(LongDouble)
	v.ld = f
	return v
}

func NewAtomString(s string) *Value {
	v := newValue(AtomString)
	v.str = s
	return v
}

func NewString(s string) *Value {
	v := newValue(String)
	v.str = s
	return v
}

func NewByteSequence(b []byte) *Value {
	v := newValue(ByteSequence)
	v.bytes = append([]byte(nil), b...)
	return v
}

func NewDynamic(get DynamicGetter, set DynamicSetter) *Value {
	v := newValue(Dynamic)
	v.getter = get
	v.setter = set
	return v
}

func NewNative(entity any, methods NativeMethods) *Value {
	v := newValue(Native)
	v.native = &Native{Entity: entity, Methods: methods}
	return v
}

// Ref increments v's reference count and returns v, so callers can write
// `bound := v.Ref()` at the point a new strong reference is taken.
func (v *Value) Ref() *Value {
	atomic.AddInt32(&v.refcount, 1)
	return v
}

// Unref decrements v's reference count, releasing container members and
// invoking the native on_release hook exactly once when it reaches zero.
func (v *Value) Unref() {
	if v == nil {
		return
	}
	if atomic.AddInt32(&v.refcount, -1) > 0 {
		return
	}
	switch v.kind {
	case Native:
		if v.native != nil && v.native.Methods.OnRelease != nil {
			v.native.Methods.OnRelease(v.native.Entity)
		}
	case Object, Array, Set, Tuple:
		v.container.release()
	}
}

// RefCount reports the current strong-reference count; intended for
// invariant checks in tests, not for production control flow.
func (v *Value) RefCount() int32 { return atomic.LoadInt32(&v.refcount) }

// AsBool/AsString/etc are narrow accessors used by operation quads once
// an attribute parser has already validated Kind; they panic on a kind
// mismatch since that indicates a parser bug, not bad user input.
func (v *Value) AsBool() bool {
	v.mustKind(Boolean)
	return v.b
}

func (v *Value) AsString() string {
	switch v.kind {
	case String, AtomString, Exception:
		return v.str
	default:
		panic(fmt.Sprintf("variant: AsString on kind %s", v.kind))
	}
}

func (v *Value) AsNumber() float64 {
	switch v.kind {
	case Number:
		return v.num
	case LongDouble:
		return v.ld
	case LongInt:
		return float64(v.i64)
	case ULongInt:
		return float64(v.u64)
	default:
		panic(fmt.Sprintf("variant: AsNumber on kind %s", v.kind))
	}
}

func (v *Value) AsLongInt() int64 {
	v.mustKind(LongInt)
	return v.i64
}

func (v *Value) AsULongInt() uint64 {
	v.mustKind(ULongInt)
	return v.u64
}

func (v *Value) AsBytes() []byte {
	v.mustKind(ByteSequence)
	return v.bytes
}

func (v *Value) AsNative() *Native {
	v.mustKind(Native)
	return v.native
}

func (v *Value) mustKind(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("variant: expected kind %s, got %s", k, v.kind))
	}
}

// CallGetter/CallSetter invoke a Dynamic variant's accessor pair.
func (v *Value) CallGetter(args ...*Value) (*Value, error) {
	v.mustKind(Dynamic)
	if v.getter == nil {
		return nil, fmt.Errorf("variant: dynamic value has no getter")
	}
	return v.getter(args)
}

func (v *Value) CallSetter(args ...*Value) (*Value, error) {
	v.mustKind(Dynamic)
	if v.setter == nil {
		return nil, fmt.Errorf("variant: dynamic value has no setter")
	}
	return v.setter(args)
}
