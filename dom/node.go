package dom

import (
	"strings"

	"github.com/delaneyj/minivue/surface"
)

type listener struct {
	event   string
	handler surface.Handler
	capture bool
}

// Node is an in-memory surface node.
type Node struct {
	kind  surface.NodeKind
	tag   string
	text  string
	attrs []surface.Attr

	value    string
	hasValue bool

	parent    *Node
	children  []*Node
	listeners []listener
}

var _ surface.Node = (*Node)(nil)

func NewElement(tag string, attrs ...surface.Attr) *Node {
	return &Node{
		kind:  surface.KindElement,
		tag:   strings.ToLower(tag),
		attrs: attrs,
	}
}

func NewText(text string) *Node {
	return &Node{kind: surface.KindText, text: text}
}

func NewFragment() *Node {
	return &Node{kind: surface.KindFragment}
}

func (n *Node) Kind() surface.NodeKind { return n.kind }
func (n *Node) Tag() string { return n.tag }

// Text is the node's own text for text and comment nodes, and the
// concatenated text of all descendants otherwise.
func (n *Node) Text() string {
	switch n.kind {
	case surface.KindText, surface.KindComment:
		return n.text
	}
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	for _, c := range n.children {
		switch c.kind {
		case surface.KindText:
			sb.WriteString(c.text)
		case surface.KindElement, surface.KindFragment:
			c.collectText(sb)
		}
	}
}

// SetText replaces the text of text nodes. On elements and fragments it
// replaces every child with a single text node.
func (n *Node) SetText(text string) {
	switch n.kind {
	case surface.KindText, surface.KindComment:
		n.text = text
		return
	}
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = n.children[:0]
	if text != "" {
		n.AppendChild(NewText(text))
	}
}

func (n *Node) Attrs() []surface.Attr {
	out := make([]surface.Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) SetAttr(name, value string) {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, surface.Attr{Name: name, Value: value})
}

func (n *Node) RemoveAttr(name string) {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Value is the live value of a form control. Until it is set it falls
// back to the value attribute, or the text of a textarea.
func (n *Node) Value() string {
	if n.hasValue {
		return n.value
	}
	if n.tag == "textarea" {
		return n.Text()
	}
	v, _ := n.Attr("value")
	return v
}

func (n *Node) SetValue(value string) {
	n.value = value
	n.hasValue = true
}

// Parent returns nil, not a typed nil, for detached nodes.
func (n *Node) Parent() surface.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) FirstChild() surface.Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *Node) Children() []surface.Node {
	out := make([]surface.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// AppendChild moves child under n. Appending a fragment moves the
// fragment's children instead and leaves it empty.
func (n *Node) AppendChild(child surface.Node) {
	c, ok := child.(*Node)
	if !ok || c == nil {
		return
	}
	if c.kind == surface.KindFragment {
		moved := c.children
		c.children = nil
		for _, m := range moved {
			m.parent = nil
			n.AppendChild(m)
		}
		return
	}
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) RemoveChild(child surface.Node) {
	c, ok := child.(*Node)
	if !ok {
		return
	}
	for i, x := range n.children {
		if x == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

func (n *Node) AddListener(event string, h surface.Handler, capture bool) {
	n.listeners = append(n.listeners, listener{event: event, handler: h, capture: capture})
}

// ListenerCount reports how many listeners for event are registered.
func (n *Node) ListenerCount(event string) int {
	count := 0
	for _, l := range n.listeners {
		if l.event == event {
			count++
		}
	}
	return count
}

func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
