package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/delaneyj/minivue/surface"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads a full HTML document. Missing html, head and body elements
// are synthesized the way a browser would.
func Parse(r io.Reader) (*Document, error) {
	hn, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	d := NewDocument()
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			d.doctype = c.Data
			continue
		}
		if n := convert(c); n != nil {
			d.root.AppendChild(n)
		}
	}
	return d, nil
}

// ParseMarkup builds a document whose root holds the parsed fragment,
// without the html, head and body wrappers Parse adds.
func ParseMarkup(r io.Reader) (*Document, error) {
	frag, err := ParseFragment(r)
	if err != nil {
		return nil, err
	}
	d := NewDocument()
	d.root.AppendChild(frag)
	return d, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses markup as the content of a body element and
// returns it as a detached fragment.
func ParseFragment(r io.Reader) (*Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("parsing html fragment: %w", err)
	}
	frag := NewFragment()
	for _, hn := range nodes {
		if n := convert(hn); n != nil {
			frag.children = append(frag.children, n)
			n.parent = frag
		}
	}
	return frag, nil
}

func convert(hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.ElementNode:
		attrs := make([]surface.Attr, 0, len(hn.Attr))
		for _, a := range hn.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, surface.Attr{Name: name, Value: a.Val})
		}
		n = NewElement(hn.Data, attrs...)
	case html.TextNode:
		return NewText(hn.Data)
	case html.CommentNode:
		return &Node{kind: surface.KindComment, text: hn.Data}
	default:
		return nil
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if child := convert(c); child != nil {
			n.AppendChild(child)
		}
	}
	return n
}
