// Package compile scans a surface subtree once, wiring interpolation
// markers and directive attributes to the reactive store.
package compile

import (
	"regexp"
	"strings"

	"github.com/delaneyj/minivue/internal/logging"
	"github.com/delaneyj/minivue/reactive"
	"github.com/delaneyj/minivue/surface"
	"github.com/sirupsen/logrus"
)

const (
	DirectivePrefix = "v-"
	EventPrefix     = "on:"
)

var interpolation = regexp.MustCompile(`\{\{\s*(.+?)\s*\}\}`)

// ViewModel is what the compiler binds against.
type ViewModel interface {
	// Root is the observable data root bindings subscribe to.
	Root() *reactive.Object
	Get(path string) any
	Set(path string, value any)
	// Handler returns the named method bound to the view-model.
	Handler(name string) (surface.Handler, bool)
}

type SiteKind string

const (
	SiteText  SiteKind = "text"
	SiteModel SiteKind = "model"
	SiteEvent SiteKind = "event"
)

// Site is one discovered binding location.
type Site struct {
	Kind    SiteKind
	Node    surface.Node
	Key     string
	Binding *reactive.Binding
}

// Result lists what a compile pass wired up.
type Result struct {
	Sites   []Site
	Skipped int
}

// Bindings returns the reactive bindings in discovery order.
func (r *Result) Bindings() []*reactive.Binding {
	var out []*reactive.Binding
	for _, s := range r.Sites {
		if s.Binding != nil {
			out = append(out, s.Binding)
		}
	}
	return out
}

// Events counts the event directives that were wired.
func (r *Result) Events() int {
	n := 0
	for _, s := range r.Sites {
		if s.Kind == SiteEvent {
			n++
		}
	}
	return n
}

type Option func(*compiler)

func WithLogger(log *logrus.Entry) Option {
	return func(c *compiler) {
		c.log = log
	}
}

type compiler struct {
	doc    surface.Document
	vm     ViewModel
	log    *logrus.Entry
	result *Result
}

// Compile moves the children of root into a fragment, binds every site
// found in it depth-first, and moves the children back.
func Compile(doc surface.Document, root surface.Node, vm ViewModel, opts ...Option) *Result {
	c := &compiler{
		doc:    doc,
		vm:     vm,
		result: &Result{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.NewLogger("compile")
	}

	frag := c.fragment(root)
	c.walk(frag)
	root.AppendChild(frag)

	c.log.WithFields(logrus.Fields{
		"sites":   len(c.result.Sites),
		"skipped": c.result.Skipped,
	}).Debug("compiled")
	return c.result
}

func (c *compiler) fragment(root surface.Node) surface.Node {
	frag := c.doc.CreateFragment()
	for child := root.FirstChild(); child != nil; child = root.FirstChild() {
		frag.AppendChild(child)
	}
	return frag
}

func (c *compiler) walk(parent surface.Node) {
	for _, node := range parent.Children() {
		switch node.Kind() {
		case surface.KindElement:
			c.element(node)
		case surface.KindText:
			if m := interpolation.FindStringSubmatch(node.Text()); m != nil {
				c.text(node, m[1])
			}
		}
		if len(node.Children()) > 0 {
			c.walk(node)
		}
	}
}

func (c *compiler) text(node surface.Node, key string) {
	node.SetText(reactive.Format(c.vm.Get(key)))
	b := reactive.NewBinding(c.vm.Root(), key, func(v, _ any) {
		node.SetText(reactive.Format(v))
	})
	c.result.Sites = append(c.result.Sites, Site{Kind: SiteText, Node: node, Key: key, Binding: b})
}

func (c *compiler) element(node surface.Node) {
	for _, attr := range node.Attrs() {
		if !strings.HasPrefix(attr.Name, DirectivePrefix) {
			continue
		}
		key := strings.TrimPrefix(attr.Name, DirectivePrefix)
		if strings.HasPrefix(key, EventPrefix) {
			c.event(node, key, attr.Value)
		} else {
			c.model(node, key)
		}
		node.RemoveAttr(attr.Name)
	}
}

func (c *compiler) event(node surface.Node, key, method string) {
	event := strings.TrimPrefix(key, EventPrefix)
	h, ok := c.vm.Handler(method)
	if event == "" || !ok {
		c.result.Skipped++
		c.log.WithFields(logrus.Fields{
			"event":  event,
			"method": method,
		}).Debug("skipping event directive")
		return
	}
	node.AddListener(event, h, true)
	c.result.Sites = append(c.result.Sites, Site{Kind: SiteEvent, Node: node, Key: event})
}

func (c *compiler) model(node surface.Node, key string) {
	val := c.vm.Get(key)
	node.SetValue(reactive.Format(val))
	b := reactive.NewBinding(c.vm.Root(), key, func(v, _ any) {
		node.SetValue(reactive.Format(v))
	})

	event := "change"
	if node.Tag() == "input" {
		event = "input"
	}
	node.AddListener(event, func(ev *surface.Event) {
		newValue := ev.Target.Value()
		if reactive.StrictEqual(val, newValue) {
			return
		}
		val = newValue
		c.vm.Set(key, newValue)
	}, false)
	c.result.Sites = append(c.result.Sites, Site{Kind: SiteModel, Node: node, Key: key, Binding: b})
}
