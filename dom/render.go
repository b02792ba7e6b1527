package dom

import (
	"io"

	"github.com/delaneyj/minivue/surface"
	"github.com/valyala/quicktemplate"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

var rawTextElements = map[string]bool{
	"script": true, "style": true,
}

// Render writes n as HTML. Form controls are serialized with their live
// value: inputs through the value attribute, textareas as their content.
func Render(w io.Writer, n surface.Node) {
	qw := quicktemplate.AcquireWriter(w)
	streamNode(qw, n, false)
	quicktemplate.ReleaseWriter(qw)
}

// RenderDocument writes the whole document including its doctype.
func RenderDocument(w io.Writer, d *Document) {
	qw := quicktemplate.AcquireWriter(w)
	if d.doctype != "" {
		qw.N().S("<!DOCTYPE ")
		qw.N().S(d.doctype)
		qw.N().S(">")
	}
	streamChildren(qw, d.root, false)
	quicktemplate.ReleaseWriter(qw)
}

func (n *Node) OuterHTML() string {
	bb := quicktemplate.AcquireByteBuffer()
	Render(bb, n)
	s := string(bb.B)
	quicktemplate.ReleaseByteBuffer(bb)
	return s
}

func (n *Node) InnerHTML() string {
	bb := quicktemplate.AcquireByteBuffer()
	qw := quicktemplate.AcquireWriter(bb)
	streamChildren(qw, n, rawTextElements[n.tag])
	quicktemplate.ReleaseWriter(qw)
	s := string(bb.B)
	quicktemplate.ReleaseByteBuffer(bb)
	return s
}

func streamNode(qw *quicktemplate.Writer, n surface.Node, raw bool) {
	switch n.Kind() {
	case surface.KindText:
		if raw {
			qw.N().S(n.Text())
		} else {
			qw.E().S(n.Text())
		}
	case surface.KindComment:
		qw.N().S("<!--")
		qw.N().S(n.Text())
		qw.N().S("-->")
	case surface.KindElement:
		streamElement(qw, n)
	default:
		streamChildren(qw, n, raw)
	}
}

func streamChildren(qw *quicktemplate.Writer, n surface.Node, raw bool) {
	for _, c := range n.Children() {
		streamNode(qw, c, raw)
	}
}

func streamElement(qw *quicktemplate.Writer, n surface.Node) {
	tag := n.Tag()
	liveValue := tag == "input"

	qw.N().S("<")
	qw.N().S(tag)
	for _, a := range n.Attrs() {
		if liveValue && a.Name == "value" {
			continue
		}
		streamAttr(qw, a.Name, a.Value)
	}
	if liveValue {
		if v := n.Value(); v != "" {
			streamAttr(qw, "value", v)
		}
	}
	qw.N().S(">")

	if voidElements[tag] {
		return
	}
	if tag == "textarea" {
		qw.E().S(n.Value())
	} else {
		streamChildren(qw, n, rawTextElements[tag])
	}
	qw.N().S("</")
	qw.N().S(tag)
	qw.N().S(">")
}

func streamAttr(qw *quicktemplate.Writer, name, value string) {
	qw.N().S(" ")
	qw.N().S(name)
	qw.N().S(`="`)
	qw.E().S(value)
	qw.N().S(`"`)
}
