// Package vm is the user-facing view-model: it proxies top-level data keys,
// owns the observable store and mounts the template compiler on a surface.
package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/delaneyj/minivue/compile"
	"github.com/delaneyj/minivue/internal/logging"
	"github.com/delaneyj/minivue/reactive"
	"github.com/delaneyj/minivue/surface"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidData   = reactive.ErrInvalidData
	ErrNoDocument    = errors.New("no document to mount on")
	ErrMountNotFound = errors.New("mount element not found")
)

// Method is a named callback reachable from event directives. It runs with
// the view-model it was declared on.
type Method func(vm *VM, ev *surface.Event)

type Options struct {
	// El selects the mount element in Document.
	El       string
	Document surface.Document
	Data     map[string]any
	Methods  map[string]Method
	// Mounted runs once, after compilation.
	Mounted func(vm *VM)

	Logger *logrus.Entry
	// MaxNotifyDepth overrides reactive.DefaultMaxNotifyDepth when set.
	// Zero disables the guard.
	MaxNotifyDepth *int
}

type VM struct {
	log      *logrus.Entry
	proxied  map[string]struct{}
	data     *reactive.Object
	store    *reactive.Store
	methods  map[string]Method
	el       surface.Node
	compiled *compile.Result
}

var _ compile.ViewModel = (*VM)(nil)

// New builds and mounts a view-model. The order is fixed: proxies for the
// own keys of Data first, then the store wraps Data, then the mount
// element is compiled, then Mounted runs.
func New(opts Options) (*VM, error) {
	if opts.Data == nil {
		return nil, fmt.Errorf("creating view-model: %w", ErrInvalidData)
	}
	vm := &VM{
		log:     opts.Logger,
		proxied: make(map[string]struct{}, len(opts.Data)),
		methods: opts.Methods,
	}
	if vm.log == nil {
		vm.log = logging.NewLogger("vm")
	}

	for key := range opts.Data {
		vm.proxied[key] = struct{}{}
	}

	var storeOpts []reactive.Option
	if opts.MaxNotifyDepth != nil {
		storeOpts = append(storeOpts, reactive.WithMaxNotifyDepth(*opts.MaxNotifyDepth))
	}
	store, err := reactive.NewStore(opts.Data, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating view-model: %w", err)
	}
	vm.store = store
	vm.data = store.Root()

	if opts.Document == nil {
		return nil, fmt.Errorf("mounting %q: %w", opts.El, ErrNoDocument)
	}
	el, ok := opts.Document.Query(opts.El)
	if !ok {
		return nil, fmt.Errorf("mounting %q: %w", opts.El, ErrMountNotFound)
	}
	vm.el = el
	vm.compiled = compile.Compile(opts.Document, el, vm, compile.WithLogger(vm.log.WithField("el", opts.El)))

	vm.log.WithFields(logrus.Fields{
		"el":       opts.El,
		"keys":     len(vm.proxied),
		"bindings": len(vm.compiled.Bindings()),
		"events":   vm.compiled.Events(),
	}).Debug("mounted")

	if opts.Mounted != nil {
		opts.Mounted(vm)
	}
	return vm, nil
}

// Get reads path through the facade. The first segment must be one of the
// keys Data had at construction; other keys read as nil.
func (vm *VM) Get(path string) any {
	if !vm.isProxied(path) {
		return nil
	}
	return vm.data.Lookup(path)
}

// Set writes path through the facade into the store. Writes to keys that
// were not proxied are dropped.
func (vm *VM) Set(path string, value any) {
	if !vm.isProxied(path) {
		vm.log.WithField("path", path).Debug("dropping write to unknown key")
		return
	}
	vm.data.Assign(path, value)
}

func (vm *VM) isProxied(path string) bool {
	head, _, _ := strings.Cut(path, ".")
	_, ok := vm.proxied[head]
	return ok
}

// Keys lists the proxied top-level keys.
func (vm *VM) Keys() []string {
	keys := make([]string, 0, len(vm.proxied))
	for _, k := range vm.data.Keys() {
		if _, ok := vm.proxied[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Data is the observable data root. Reads through it register dependencies
// like any other store read.
func (vm *VM) Data() *reactive.Object { return vm.data }

func (vm *VM) Root() *reactive.Object { return vm.data }

func (vm *VM) Store() *reactive.Store { return vm.store }

// El is the mount element.
func (vm *VM) El() surface.Node { return vm.el }

func (vm *VM) Compiled() *compile.Result { return vm.compiled }

func (vm *VM) Method(name string) (Method, bool) {
	m, ok := vm.methods[name]
	return m, ok && m != nil
}

// Handler returns the named method bound to vm.
func (vm *VM) Handler(name string) (surface.Handler, bool) {
	m, ok := vm.Method(name)
	if !ok {
		return nil, false
	}
	return func(ev *surface.Event) {
		m(vm, ev)
	}, true
}

// Call invokes a method directly. It reports false if there is none.
func (vm *VM) Call(name string, ev *surface.Event) bool {
	m, ok := vm.Method(name)
	if !ok {
		return false
	}
	if ev == nil {
		ev = surface.NewEvent("call")
	}
	m(vm, ev)
	return true
}
