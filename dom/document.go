package dom

import (
	"strings"

	"github.com/delaneyj/minivue/surface"
)

// Document is the root of an in-memory surface tree.
type Document struct {
	root    *Node
	doctype string
}

var _ surface.Document = (*Document)(nil)

func NewDocument() *Document {
	return &Document{root: &Node{kind: surface.KindDocument}}
}

func (d *Document) Root() *Node { return d.root }

func (d *Document) CreateFragment() surface.Node { return NewFragment() }

func (d *Document) CreateElement(tag string) *Node { return NewElement(tag) }

func (d *Document) CreateText(text string) *Node { return NewText(text) }

// Query returns the first element in document order matching selector.
func (d *Document) Query(selector string) (surface.Node, bool) {
	n := d.QueryNode(selector)
	if n == nil {
		return nil, false
	}
	return n, true
}

// QueryNode is Query returning the concrete node, or nil.
func (d *Document) QueryNode(selector string) *Node {
	return queryFrom(d.root, selector)
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(selector string) []*Node {
	sel, ok := parseSelector(selector)
	if !ok {
		return nil
	}
	var out []*Node
	d.root.walk(func(n *Node) bool {
		if sel.matches(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Query searches the subtree below n, n excluded.
func (n *Node) Query(selector string) *Node {
	return queryFrom(n, selector)
}

func queryFrom(root *Node, selector string) *Node {
	sel, ok := parseSelector(selector)
	if !ok {
		return nil
	}
	var found *Node
	for _, c := range root.children {
		c.walk(func(n *Node) bool {
			if sel.matches(n) {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}

// selector is a single compound selector: tag, #id and .class parts.
type selector struct {
	tag     string
	id      string
	classes []string
}

func parseSelector(s string) (selector, bool) {
	var sel selector
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " >+~[:,") {
		return sel, false
	}

	i := strings.IndexAny(s, "#.")
	if i < 0 {
		sel.tag = strings.ToLower(s)
		return sel, true
	}
	sel.tag = strings.ToLower(s[:i])
	s = s[i:]
	for s != "" {
		marker := s[0]
		s = s[1:]
		end := strings.IndexAny(s, "#.")
		if end < 0 {
			end = len(s)
		}
		part := s[:end]
		s = s[end:]
		if part == "" {
			return sel, false
		}
		if marker == '#' {
			sel.id = part
		} else {
			sel.classes = append(sel.classes, part)
		}
	}
	return sel, true
}

func (sel selector) matches(n *Node) bool {
	if n.kind != surface.KindElement {
		return false
	}
	if sel.tag != "" && sel.tag != "*" && sel.tag != n.tag {
		return false
	}
	if sel.id != "" {
		if id, _ := n.Attr("id"); id != sel.id {
			return false
		}
	}
	if len(sel.classes) > 0 {
		class, _ := n.Attr("class")
		have := strings.Fields(class)
		for _, want := range sel.classes {
			found := false
			for _, c := range have {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}
