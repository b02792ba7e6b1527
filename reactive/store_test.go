package reactive_test

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/minivue/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingListener struct {
	calls int
}

func (c *countingListener) Notify() { c.calls++ }

func newStore(t *testing.T, data map[string]any, opts ...reactive.Option) *reactive.Store {
	t.Helper()
	s, err := reactive.NewStore(data, opts...)
	require.NoError(t, err)
	return s
}

func TestNewStoreRejectsNil(t *testing.T) {
	_, err := reactive.NewStore(nil)
	assert.ErrorIs(t, err, reactive.ErrInvalidData)
}

func TestWrapIsRecursive(t *testing.T) {
	s := newStore(t, map[string]any{
		"name": "Alice",
		"user": map[string]any{
			"address": map[string]any{"city": "Oslo"},
		},
		"items": []any{map[string]any{"label": "first"}, "second"},
	})
	root := s.Root()

	assert.Equal(t, []string{"items", "name", "user"}, root.Keys())

	user, ok := root.Get("user").(*reactive.Object)
	require.True(t, ok)
	addr, ok := user.Get("address").(*reactive.Object)
	require.True(t, ok)
	assert.Equal(t, "Oslo", addr.Get("city"))

	items, ok := root.Get("items").([]any)
	require.True(t, ok)
	_, ok = items[0].(*reactive.Object)
	assert.True(t, ok)
	assert.Equal(t, "second", items[1])

	assert.Equal(t, "Oslo", root.Lookup("user.address.city"))
	assert.Equal(t, "first", root.Lookup("items.0.label"))
	assert.Nil(t, root.Lookup("items.7.label"))
	assert.Nil(t, root.Lookup("name.length"))
	assert.Nil(t, root.Lookup("missing"))

	slot, ok := addr.Slot("city")
	require.True(t, ok)
	assert.Equal(t, "user.address.city", slot.Path())
	assert.Equal(t, xxhash.Sum64String("user.address.city"), slot.ID())
}

func TestRawSnapshot(t *testing.T) {
	data := map[string]any{
		"count": 1,
		"user":  map[string]any{"name": "Bob"},
		"tags":  []any{"a", map[string]any{"b": true}},
	}
	s := newStore(t, data)
	assert.Equal(t, data, s.Root().Raw())
}

func TestReadOutsideTrackingRegistersNothing(t *testing.T) {
	s := newStore(t, map[string]any{"message": "x"})
	root := s.Root()

	assert.Equal(t, "x", root.Get("message"))
	slot, _ := root.Slot("message")
	assert.Equal(t, 0, slot.Listeners())
	assert.Nil(t, s.Active())
}

func TestTrackRegistersOncePerEvaluation(t *testing.T) {
	s := newStore(t, map[string]any{"a": 1, "b": 2})
	root := s.Root()
	l := &countingListener{}

	v, touched := s.Track(l, func() any {
		assert.Equal(t, l, s.Active())
		return root.Get("a").(int) + root.Get("a").(int) + root.Get("b").(int)
	})
	assert.Equal(t, 4, v)
	assert.Equal(t, 2, touched.Cardinality())
	assert.Nil(t, s.Active())

	a, _ := root.Slot("a")
	assert.Equal(t, 1, a.Listeners())

	root.Set("a", 5)
	assert.Equal(t, 1, l.calls)
	root.Set("b", 5)
	assert.Equal(t, 2, l.calls)

	// a second evaluation registers again
	s.Track(l, func() any { return root.Get("a") })
	assert.Equal(t, 2, a.Listeners())
	root.Set("a", 6)
	assert.Equal(t, 4, l.calls)
}

func TestNestedTrackRestoresOuterListener(t *testing.T) {
	s := newStore(t, map[string]any{"outer": 1, "inner": 2, "after": 3})
	root := s.Root()
	outer, inner := &countingListener{}, &countingListener{}

	_, touched := s.Track(outer, func() any {
		root.Get("outer")
		_, innerTouched := s.Track(inner, func() any {
			return root.Get("inner")
		})
		assert.Equal(t, 1, innerTouched.Cardinality())
		assert.Equal(t, outer, s.Active())
		return root.Get("after")
	})
	assert.Equal(t, 2, touched.Cardinality())

	root.Set("inner", 20)
	assert.Equal(t, 0, outer.calls)
	assert.Equal(t, 1, inner.calls)

	root.Set("after", 30)
	assert.Equal(t, 1, outer.calls)
}

func TestUntrackedInsideTrack(t *testing.T) {
	s := newStore(t, map[string]any{"a": 1, "b": 2})
	root := s.Root()
	l := &countingListener{}

	_, touched := s.Track(l, func() any {
		s.Untracked(func() any {
			assert.Nil(t, s.Active())
			return root.Get("b")
		})
		return root.Get("a")
	})
	assert.Equal(t, 1, touched.Cardinality())

	root.Set("b", 3)
	assert.Equal(t, 0, l.calls)
}

func TestTrackPopsFrameOnPanic(t *testing.T) {
	s := newStore(t, map[string]any{"a": 1})
	l := &countingListener{}

	assert.Panics(t, func() {
		s.Track(l, func() any { panic("boom") })
	})
	assert.Nil(t, s.Active())
}

func TestSetStrictEqualityShortCircuit(t *testing.T) {
	s := newStore(t, map[string]any{"n": 1, "s": "1"})
	root := s.Root()
	l := &countingListener{}
	s.Track(l, func() any {
		root.Get("n")
		return root.Get("s")
	})

	root.Set("n", 1)
	root.Set("n", 1.0)
	root.Set("s", "1")
	assert.Equal(t, 0, l.calls)

	root.Set("n", "1")
	assert.Equal(t, 1, l.calls)
	root.Set("s", 1)
	assert.Equal(t, 2, l.calls)
}

func TestNotificationOrderIsRegistrationOrder(t *testing.T) {
	s := newStore(t, map[string]any{"a": 1})
	root := s.Root()

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		s.Track(reactive.ListenerFunc(func() {
			order = append(order, name)
		}), func() any { return root.Get("a") })
	}

	root.Set("a", 2)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestLaterCompositeAssignmentIsWrapped(t *testing.T) {
	s := newStore(t, map[string]any{"user": nil})
	root := s.Root()

	var seen []any
	reactive.NewBinding(root, "user.name", func(v, _ any) {
		seen = append(seen, v)
	})

	root.Set("user", map[string]any{"name": "Ann"})
	user, ok := root.Get("user").(*reactive.Object)
	require.True(t, ok)
	assert.Equal(t, "user.name", mustSlot(t, user, "name").Path())

	// the binding only subscribed to "user"; a fresh binding picks up the
	// nested slot of the newly wrapped object
	var nested []any
	reactive.NewBinding(root, "user.name", func(v, _ any) {
		nested = append(nested, v)
	})
	user.Set("name", "Bea")

	assert.Equal(t, []any{"Ann"}, seen)
	assert.Equal(t, []any{"Bea"}, nested)
}

func TestNewKeyIsObservableAfterFirstWrite(t *testing.T) {
	s := newStore(t, map[string]any{})
	root := s.Root()

	root.Set("late", 1)
	assert.True(t, root.Has("late"))

	var got []any
	reactive.NewBinding(root, "late", func(v, _ any) { got = append(got, v) })
	root.Set("late", 2)
	assert.Equal(t, []any{2}, got)
}

func TestAssign(t *testing.T) {
	s := newStore(t, map[string]any{"user": map[string]any{"name": "a"}, "flat": 1})
	root := s.Root()

	assert.True(t, root.Assign("user.name", "b"))
	assert.Equal(t, "b", root.Lookup("user.name"))
	assert.True(t, root.Assign("flat", 2))
	assert.Equal(t, 2, root.Get("flat"))
	assert.False(t, root.Assign("flat.deeper", 3))
}

func TestNotifyDepthGuard(t *testing.T) {
	s := newStore(t, map[string]any{"n": 0}, reactive.WithMaxNotifyDepth(5))
	root := s.Root()

	reactive.NewBinding(root, "n", func(v, _ any) {
		root.Set("n", v.(int)+1)
	})

	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok, "expected an error panic, got %v", r)
		assert.ErrorIs(t, err, reactive.ErrNotifyDepth)
		assert.Nil(t, s.Active())
	}()
	root.Set("n", 1)
	t.Fatal("cyclic update chain should not return")
}

func mustSlot(t *testing.T, o *reactive.Object, key string) *reactive.Slot {
	t.Helper()
	slot, ok := o.Slot(key)
	require.True(t, ok)
	return slot
}

func TestSlotByID(t *testing.T) {
	s := newStore(t, map[string]any{
		"user": map[string]any{"name": "Ann"},
	})
	root := s.Root()

	old, ok := s.SlotByID(xxhash.Sum64String("user.name"))
	require.True(t, ok)
	assert.Equal(t, "user.name", old.Path())

	root.Set("user", map[string]any{"name": "Bea"})
	cur, ok := s.SlotByID(xxhash.Sum64String("user.name"))
	require.True(t, ok)
	assert.NotSame(t, old, cur)
	live, _ := root.Lookup("user").(*reactive.Object).Slot("name")
	assert.Same(t, live, cur)

	root.Set("late", 1)
	late, ok := s.SlotByID(xxhash.Sum64String("late"))
	require.True(t, ok)
	assert.Equal(t, "late", late.Key())

	_, ok = s.SlotByID(xxhash.Sum64String("missing"))
	assert.False(t, ok)
}
