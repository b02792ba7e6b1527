// Package surface describes the rendering surface the template compiler
// binds to. The compiler only ever talks to these interfaces; package dom
// provides an in-memory implementation.
package surface

type NodeKind uint8

const (
	KindElement NodeKind = iota + 1
	KindText
	KindFragment
	KindDocument
	KindComment
)

func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindFragment:
		return "fragment"
	case KindDocument:
		return "document"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

type Attr struct {
	Name  string
	Value string
}

// Handler is a listener for a named signal on a node.
type Handler func(ev *Event)

// Event is a named signal travelling through the surface tree.
type Event struct {
	Type          string
	Target        Node
	CurrentTarget Node
	Capturing     bool

	stopped bool
}

func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

func (e *Event) StopPropagation() { e.stopped = true }
func (e *Event) Stopped() bool { return e.stopped }

// Node is a single node of the surface tree.
type Node interface {
	Kind() NodeKind
	// Tag is the lower-cased element name, empty for non-elements.
	Tag() string

	Text() string
	SetText(text string)

	Attrs() []Attr
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	// Value is the current value of an input-like element.
	Value() string
	SetValue(value string)

	Parent() Node
	FirstChild() Node
	Children() []Node
	AppendChild(child Node)
	RemoveChild(child Node)

	AddListener(event string, h Handler, capture bool)
}

// Document selects nodes and creates detached ones.
type Document interface {
	Query(selector string) (Node, bool)
	CreateFragment() Node
	Dispatch(target Node, ev *Event)
}
