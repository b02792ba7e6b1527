package reactive

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// UpdateFunc receives the freshly read value and the one it replaces.
type UpdateFunc func(newValue, oldValue any)

// Binding couples a property path of a data root with an update action.
// It subscribes itself to every slot read while resolving the path once,
// at construction, and lives as long as whatever holds it.
type Binding struct {
	root   *Object
	path   string
	last   any
	update UpdateFunc
	deps   mapset.Set[*Slot]
}

func NewBinding(root *Object, path string, fn UpdateFunc) *Binding {
	b := &Binding{
		root:   root,
		path:   path,
		update: fn,
	}
	b.last, b.deps = root.store.Track(b, func() any {
		return root.Lookup(path)
	})
	return b
}

// Notify re-reads the path without tracking and runs the update action
// when the value changed under loose equality.
func (b *Binding) Notify() {
	v := b.root.store.Untracked(func() any {
		return b.root.Lookup(b.path)
	})
	if LooseEqual(v, b.last) {
		return
	}
	old := b.last
	b.last = v
	if b.update != nil {
		b.update(v, old)
	}
}

func (b *Binding) Path() string { return b.path }
func (b *Binding) Last() any { return b.last }

// Deps returns the slots read by the initial evaluation, ordered by id.
func (b *Binding) Deps() []*Slot {
	deps := b.deps.ToSlice()
	sort.Slice(deps, func(i, j int) bool { return deps[i].id < deps[j].id })
	return deps
}
