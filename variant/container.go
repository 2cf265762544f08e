package variant

import "fmt"

// MutationOp names the three mutation classes a container listener can
// react to, per spec.md §4.1.
type MutationOp int

const (
	Grow MutationOp = iota
	Shrink
	Change
)

func (op MutationOp) String() string {
	switch op {
	case Grow:
		return "grow"
	case Shrink:
		return "shrink"
	case Change:
		return "change"
	default:
		return "unknown"
	}
}

// PreListener runs before a mutation is applied and may veto it by
// returning false. PostListener runs after the mutation has taken
// effect; args carries the operation's argument vector (e.g. the
// key/value involved).
type PreListener func(op MutationOp, args []*Value) bool
type PostListener func(op MutationOp, args []*Value)

type containerKind int

const (
	ckObject containerKind = iota
	ckArray
	ckSet
	ckTuple
)

// container holds the shared machinery (ordering + listeners) behind
// Object, Array, Set, and Tuple. Object and Set are both "keyed": Object
// keys are arbitrary strings, Set keys are computed from a unique-key
// attribute (or the whole member, for an anonymous set).
type container struct {
	kind containerKind

	// Array/Tuple storage, in order.
	items []*Value

	// Object/Set storage: insertion-ordered keys plus a lookup index.
	keys  []string
	index map[string]int // key -> position in keys/items-by-key
	byKey map[string]*Value

	uniqueKey string // Set: attribute name used to derive a member's key ("" = whole-value identity)

	pre  []PreListener
	post []PostListener
}

func newContainer(kind containerKind) *container {
	return &container{
		kind:  kind,
		index: make(map[string]int),
		byKey: make(map[string]*Value),
	}
}

// NewObject creates an empty, ordered object.
func NewObject() *Value {
	v := newValue(Object)
	v.container = newContainer(ckObject)
	return v
}

// NewArray creates an array from initial members (each Ref'd).
func NewArray(items ...*Value) *Value {
	v := newValue(Array)
	v.container = newContainer(ckArray)
	for _, it := range items {
		v.container.items = append(v.container.items, it.Ref())
	}
	return v
}

// NewTuple creates a fixed-size tuple; its length never changes after
// construction (ArrayAppend, ArrayInsert and ArrayRemove reject a tuple,
// and <update> leaves a tuple target unchanged without an error).
func NewTuple(items ...*Value) *Value {
	v := newValue(Tuple)
	v.container = newContainer(ckTuple)
	for _, it := range items {
		v.container.items = append(v.container.items, it.Ref())
	}
	return v
}

// NewSet creates an empty set. uniqueKey, if non-empty, names the
// object-member attribute used to key members (a "keyed set"); if
// empty, members are keyed by their own serialized identity (an
// "anonymous set", de-duplicated by EJSON equality).
func NewSet(uniqueKey string) *Value {
	v := newValue(Set)
	v.container = newContainer(ckSet)
	v.container.uniqueKey = uniqueKey
	return v
}

func (c *container) release() {
	for _, it := range c.items {
		it.Unref()
	}
	for _, it := range c.byKey {
		it.Unref()
	}
}

// RegisterPreListener / RegisterPostListener attach mutation hooks, per
// spec.md §4.1.
func (v *Value) RegisterPreListener(l PreListener) {
	v.requireContainer()
	v.container.pre = append(v.container.pre, l)
}

func (v *Value) RegisterPostListener(l PostListener) {
	v.requireContainer()
	v.container.post = append(v.container.post, l)
}

func (v *Value) requireContainer() {
	switch v.kind {
	case Object, Array, Set, Tuple:
		return
	default:
		panic(fmt.Sprintf("variant: %s is not a container", v.kind))
	}
}

func (c *container) fire(op MutationOp, args []*Value) bool {
	for _, p := range c.pre {
		if !p(op, args) {
			return false
		}
	}
	return true
}

func (c *container) notify(op MutationOp, args []*Value) {
	for _, p := range c.post {
		p(op, args)
	}
}

// Len reports the number of members in a container.
func (v *Value) Len() int {
	v.requireContainer()
	switch v.kind {
	case Object, Set:
		return len(v.container.keys)
	default:
		return len(v.container.items)
	}
}

// --- Array/Tuple indexed access ---

// At returns the i-th array/tuple member (no bounds check beyond a
// nil-return; ops layer translates an out-of-range index to
// ErrInvalidValue).
func (v *Value) At(i int) *Value {
	v.requireContainer()
	if i < 0 || i >= len(v.container.items) {
		return nil
	}
	return v.container.items[i]
}

// ArrayAppend appends val to an array, firing Grow listeners.
func (v *Value) ArrayAppend(val *Value) error {
	if v.kind != Array {
		return fmt.Errorf("variant: ArrayAppend on %s", v.kind)
	}
	c := v.container
	if !c.fire(Grow, []*Value{val}) {
		return fmt.Errorf("variant: mutation vetoed")
	}
	c.items = append(c.items, val.Ref())
	c.notify(Grow, []*Value{val})
	return nil
}

// ArrayInsert inserts val at index i (0 <= i <= Len), shifting later
// members up. Used by <update to="insertBefore|insertAfter">.
func (v *Value) ArrayInsert(i int, val *Value) error {
	if v.kind != Array {
		return fmt.Errorf("variant: ArrayInsert on %s", v.kind)
	}
	c := v.container
	if i < 0 || i > len(c.items) {
		return fmt.Errorf("variant: index out of range")
	}
	if !c.fire(Grow, []*Value{val}) {
		return fmt.Errorf("variant: mutation vetoed")
	}
	c.items = append(c.items, nil)
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = val.Ref()
	c.notify(Grow, []*Value{val})
	return nil
}

// ArrayRemove removes the member at index i.
func (v *Value) ArrayRemove(i int) error {
	if v.kind != Array {
		return fmt.Errorf("variant: ArrayRemove on %s", v.kind)
	}
	c := v.container
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("variant: index out of range")
	}
	old := c.items[i]
	if !c.fire(Shrink, []*Value{old}) {
		return fmt.Errorf("variant: mutation vetoed")
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.notify(Shrink, []*Value{old})
	old.Unref()
	return nil
}

// ArraySet replaces the member at index i ("displace" semantics for a
// single array slot).
func (v *Value) ArraySet(i int, val *Value) error {
	if v.kind != Array && v.kind != Tuple {
		return fmt.Errorf("variant: ArraySet on %s", v.kind)
	}
	c := v.container
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("variant: index out of range")
	}
	old := c.items[i]
	if !c.fire(Change, []*Value{old, val}) {
		return fmt.Errorf("variant: mutation vetoed")
	}
	c.items[i] = val.Ref()
	c.notify(Change, []*Value{old, val})
	old.Unref()
	return nil
}

// Items returns the live member slice of an array/tuple. Callers must
// not mutate the returned slice.
func (v *Value) Items() []*Value {
	v.requireContainer()
	return v.container.items
}

// --- Object/Set keyed access ---

// Get returns the member bound to key in an object, or nil.
func (v *Value) Get(key string) *Value {
	if v.kind != Object && v.kind != Set {
		panic(fmt.Sprintf("variant: Get on %s", v.kind))
	}
	return v.container.byKey[key]
}

// Set binds key to val in an object, replacing (and unref'ing) any
// previous binding — "binding a name at a level already holding that
// name replaces the value", per spec.md §4.2, applies equally to object
// member assignment.
func (v *Value) Set(key string, val *Value) error {
	if v.kind != Object && v.kind != Set {
		return fmt.Errorf("variant: Set on %s", v.kind)
	}
	c := v.container
	old, existed := c.byKey[key]
	op := Grow
	var args []*Value
	if existed {
		op = Change
		args = []*Value{old, val}
	} else {
		args = []*Value{val}
	}
	if !c.fire(op, args) {
		return fmt.Errorf("variant: mutation vetoed")
	}
	if !existed {
		c.index[key] = len(c.keys)
		c.keys = append(c.keys, key)
	}
	c.byKey[key] = val.Ref()
	c.notify(op, args)
	if existed {
		old.Unref()
	}
	return nil
}

// Delete unbinds key from an object, firing Shrink listeners.
func (v *Value) Delete(key string) error {
	if v.kind != Object && v.kind != Set {
		return fmt.Errorf("variant: Delete on %s", v.kind)
	}
	c := v.container
	old, existed := c.byKey[key]
	if !existed {
		return nil
	}
	if !c.fire(Shrink, []*Value{old}) {
		return fmt.Errorf("variant: mutation vetoed")
	}
	pos := c.index[key]
	c.keys = append(c.keys[:pos], c.keys[pos+1:]...)
	delete(c.index, key)
	for k, p := range c.index {
		if p > pos {
			c.index[k] = p - 1
		}
	}
	delete(c.byKey, key)
	c.notify(Shrink, []*Value{old})
	old.Unref()
	return nil
}

// Keys returns the insertion-ordered key list of an object or keyed set.
func (v *Value) Keys() []string {
	if v.kind != Object && v.kind != Set {
		panic(fmt.Sprintf("variant: Keys on %s", v.kind))
	}
	return append([]string(nil), v.container.keys...)
}

// setMemberKey computes a set's de-duplication key for val, per
// NewSet's uniqueKey attribute (or whole-value EJSON identity when
// uniqueKey is empty, i.e. an anonymous set).
func setMemberKey(uniqueKey string, val *Value) (string, error) {
	if uniqueKey == "" {
		s, err := Serialize(val, "real-ejson")
		return s, err
	}
	if val.Kind() != Object {
		return "", fmt.Errorf("variant: keyed set member must be an object")
	}
	member := val.Get(uniqueKey)
	if member == nil {
		return "", fmt.Errorf("variant: set member missing unique key %q", uniqueKey)
	}
	return Stringify(member), nil
}

// SetAdd adds val to a set, replacing any existing member with the same
// unique key (spec.md §4.4's <update to="unite"> relies on this).
func (v *Value) SetAdd(val *Value) error {
	if v.kind != Set {
		return fmt.Errorf("variant: SetAdd on %s", v.kind)
	}
	key, err := setMemberKey(v.container.uniqueKey, val)
	if err != nil {
		return err
	}
	return v.Set(key, val)
}

// SetRemove removes the member keyed like val from a set.
func (v *Value) SetRemove(val *Value) error {
	if v.kind != Set {
		return fmt.Errorf("variant: SetRemove on %s", v.kind)
	}
	key, err := setMemberKey(v.container.uniqueKey, val)
	if err != nil {
		return err
	}
	return v.Delete(key)
}

// SetContains reports whether a member keyed like val is present.
func (v *Value) SetContains(val *Value) bool {
	if v.kind != Set {
		panic(fmt.Sprintf("variant: SetContains on %s", v.kind))
	}
	key, err := setMemberKey(v.container.uniqueKey, val)
	if err != nil {
		return false
	}
	_, ok := v.container.byKey[key]
	return ok
}

// Members returns a set's members in insertion order.
func (v *Value) Members() []*Value {
	if v.kind != Set {
		panic(fmt.Sprintf("variant: Members on %s", v.kind))
	}
	out := make([]*Value, 0, len(v.container.keys))
	for _, k := range v.container.keys {
		out = append(out, v.container.byKey[k])
	}
	return out
}
