package reactive

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

const DefaultMaxNotifyDepth = 1024

var (
	ErrInvalidData = errors.New("data must be a non-nil map")
	ErrNotifyDepth = errors.New("notification depth exceeded")
)

// frame is one tracking evaluation. A nil listener means reads are untracked.
type frame struct {
	listener Listener
	touched  mapset.Set[*Slot]
}

// Store owns a wrapped data tree and the tracking state used while
// listeners evaluate. It is not safe for concurrent use.
type Store struct {
	root           *Object
	index          map[uint64]*Slot
	frames         []*frame
	depth          int
	maxNotifyDepth int
}

type Option func(*Store)

// WithMaxNotifyDepth limits how deep a chain of writes triggered from
// inside listeners may nest. Zero disables the limit, so a cyclic chain
// recurses until the goroutine stack is exhausted.
func WithMaxNotifyDepth(n int) Option {
	return func(s *Store) {
		s.maxNotifyDepth = n
	}
}

// NewStore wraps data recursively. The store owns data afterwards and the
// caller must go through the returned store to read or write it.
func NewStore(data map[string]any, opts ...Option) (*Store, error) {
	if data == nil {
		return nil, ErrInvalidData
	}
	s := &Store{
		index:          make(map[uint64]*Slot),
		maxNotifyDepth: DefaultMaxNotifyDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.root = s.wrapMap(data, "")
	return s, nil
}

func (s *Store) Root() *Object {
	return s.root
}

// Track runs fn with l as the active listener. Every slot read inside fn
// registers l once, and the set of slots read is returned alongside fn's
// result. Nested calls attribute reads to the innermost listener.
func (s *Store) Track(l Listener, fn func() any) (any, mapset.Set[*Slot]) {
	f := &frame{listener: l, touched: mapset.NewThreadUnsafeSet[*Slot]()}
	s.frames = append(s.frames, f)
	defer s.pop()

	v := fn()
	return v, f.touched
}

// Untracked runs fn with no active listener, even inside a Track call.
func (s *Store) Untracked(fn func() any) any {
	s.frames = append(s.frames, &frame{})
	defer s.pop()
	return fn()
}

// SlotByID finds the live slot whose path hashes to id. A composite
// written over an old one replaces the slots below it, so ids always
// resolve to the slots currently reachable from the root.
func (s *Store) SlotByID(id uint64) (*Slot, bool) {
	slot, ok := s.index[id]
	return slot, ok
}

// Active returns the listener reads are currently attributed to, if any.
func (s *Store) Active() Listener {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1].listener
}

func (s *Store) pop() {
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *Store) depend(slot *Slot) {
	if len(s.frames) == 0 {
		return
	}
	f := s.frames[len(s.frames)-1]
	if f.listener == nil {
		return
	}
	if f.touched.Add(slot) {
		slot.dep.Add(f.listener)
	}
}

func (s *Store) notify(slot *Slot) {
	s.depth++
	defer func() { s.depth-- }()
	if s.maxNotifyDepth > 0 && s.depth > s.maxNotifyDepth {
		panic(fmt.Errorf("%w: %d nested writes at %q", ErrNotifyDepth, s.depth, slot.path))
	}
	slot.dep.Notify()
}

// wrap converts composites into their observable form. Values that are
// already objects of this store are kept as they are.
func (s *Store) wrap(v any, path string) any {
	switch x := v.(type) {
	case map[string]any:
		return s.wrapMap(x, path)
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = s.wrap(el, joinPath(path, fmt.Sprint(i)))
		}
		return out
	case *Object:
		if x.store == s {
			return x
		}
		return s.wrapMap(x.Raw(), path)
	default:
		return v
	}
}

func (s *Store) wrapMap(m map[string]any, path string) *Object {
	o := newObject(s, path, len(m))
	for _, k := range sortedKeys(m) {
		o.define(k, s.wrap(m[k], joinPath(path, k)))
	}
	return o
}
