package reactive

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Slot is one observable property: an owner, a key, the current value and
// the registry of listeners interested in it.
type Slot struct {
	id    uint64
	owner *Object
	key   string
	path  string
	value any
	dep   *Dep
}

// ID is the xxhash of the slot's dotted path from the store root.
func (s *Slot) ID() uint64 { return s.id }
func (s *Slot) Key() string { return s.key }
func (s *Slot) Path() string { return s.path }
func (s *Slot) Owner() *Object { return s.owner }
func (s *Slot) Listeners() int { return s.dep.Len() }

// Object is the observable wrapper of a map node. It exclusively owns
// the slots of its keys.
type Object struct {
	store *Store
	path  string
	keys  []string
	slots map[string]*Slot
}

func newObject(s *Store, path string, size int) *Object {
	return &Object{
		store: s,
		path:  path,
		keys:  make([]string, 0, size),
		slots: make(map[string]*Slot, size),
	}
}

func (o *Object) define(key string, value any) *Slot {
	path := joinPath(o.path, key)
	slot := &Slot{
		id:    xxhash.Sum64String(path),
		owner: o,
		key:   key,
		path:  path,
		value: value,
		dep:   &Dep{},
	}
	o.keys = append(o.keys, key)
	o.slots[key] = slot
	o.store.index[slot.id] = slot
	return slot
}

func (o *Object) Store() *Store { return o.store }
func (o *Object) Path() string { return o.path }
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the own keys in definition order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Has(key string) bool {
	_, ok := o.slots[key]
	return ok
}

// Slot exposes the slot of key for inspection. Reading through it does not
// register a dependency.
func (o *Object) Slot(key string) (*Slot, bool) {
	slot, ok := o.slots[key]
	return slot, ok
}

// Get returns the value of key, registering the active listener, if any.
func (o *Object) Get(key string) any {
	slot, ok := o.slots[key]
	if !ok {
		return nil
	}
	o.store.depend(slot)
	return slot.value
}

// Set stores value under key and synchronously notifies the slot's
// listeners. Writing a strictly equal value does nothing.
func (o *Object) Set(key string, value any) {
	slot, ok := o.slots[key]
	if !ok {
		o.define(key, o.store.wrap(value, joinPath(o.path, key)))
		return
	}
	if StrictEqual(slot.value, value) {
		return
	}
	slot.value = o.store.wrap(value, slot.path)
	o.store.notify(slot)
}

// Lookup reads a dotted path, registering every slot along the way.
func (o *Object) Lookup(path string) any {
	var cur any = o
	for _, part := range strings.Split(path, ".") {
		switch x := cur.(type) {
		case *Object:
			cur = x.Get(part)
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(x) {
				return nil
			}
			cur = x[i]
		default:
			return nil
		}
	}
	return cur
}

// Assign writes a dotted path. It reports false when the parent of the
// last segment is not an object.
func (o *Object) Assign(path string, value any) bool {
	parent := o
	parts := strings.Split(path, ".")
	if len(parts) > 1 {
		p, ok := o.Lookup(strings.Join(parts[:len(parts)-1], ".")).(*Object)
		if !ok {
			return false
		}
		parent = p
	}
	parent.Set(parts[len(parts)-1], value)
	return true
}

// Raw returns a plain deep copy of the tree below o. Nothing is tracked.
func (o *Object) Raw() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = unwrap(o.slots[k].value)
	}
	return out
}

func unwrap(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.Raw()
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = unwrap(el)
		}
		return out
	default:
		return v
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
